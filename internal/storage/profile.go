package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/coursemix/internal/common"
	"github.com/Veraticus/coursemix/internal/model"
)

// ErrProfileNotFound is returned before a profile has been saved.
var ErrProfileNotFound = fmt.Errorf("profile %w", common.ErrNotFound)

// GetProfile returns the student profile.
func (s *SQLiteStorage) GetProfile(ctx context.Context) (*model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var profile model.Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT name, student_id, program_name, updated_at
		FROM profile
		WHERE id = 1
	`).Scan(&profile.Name, &profile.StudentID, &profile.ProgramName, &profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// SaveProfile creates or replaces the student profile.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProfile(profile); err != nil {
		return err
	}
	profile.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile (id, name, student_id, program_name, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			student_id = excluded.student_id,
			program_name = excluded.program_name,
			updated_at = excluded.updated_at
	`, profile.Name, profile.StudentID, profile.ProgramName, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
