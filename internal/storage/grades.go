package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/coursemix/internal/common"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/service"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// ErrGradeNotFound is returned when no grade matches the given ID.
var ErrGradeNotFound = fmt.Errorf("grade %w", common.ErrNotFound)

const termOrderSQL = `CASE term WHEN 'Winter' THEN 1 WHEN 'Spring' THEN 2 WHEN 'Summer' THEN 3 WHEN 'Fall' THEN 4 ELSE 0 END`

// SaveGrade inserts a new grade. An empty ID is replaced with a fresh UUID.
func (s *SQLiteStorage) SaveGrade(ctx context.Context, grade *model.SealedGrade) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if grade != nil && grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if err := validateGrade(grade); err != nil {
		return err
	}

	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO grades (id, course_code, term, year, status, encrypted_grade, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, grade.ID, grade.CourseCode, string(grade.Term), grade.Year, string(grade.Status),
		grade.EncryptedGrade, grade.CreatedAt, grade.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save grade: %w", mapConstraintError(err))
	}

	slog.Debug("Saved grade", "id", grade.ID, "course", grade.CourseCode, "term", grade.Key().String())
	return nil
}

// GetGrade retrieves a grade by ID.
func (s *SQLiteStorage) GetGrade(ctx context.Context, id string) (*model.SealedGrade, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getGradeTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getGradeTx(ctx context.Context, q queryable, id string) (*model.SealedGrade, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, course_code, term, year, status, encrypted_grade, created_at, updated_at
		FROM grades
		WHERE id = ?
	`, id)

	grade, err := scanGrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrGradeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get grade: %w", err)
	}
	return grade, nil
}

// ListGrades returns grades matching filter, newest term first.
func (s *SQLiteStorage) ListGrades(ctx context.Context, filter service.GradeFilter) ([]model.SealedGrade, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Term != "" {
		where = append(where, "term = ?")
		args = append(args, string(filter.Term))
	}
	if filter.Year != 0 {
		where = append(where, "year = ?")
		args = append(args, filter.Year)
	}

	query := `SELECT id, course_code, term, year, status, encrypted_grade, created_at, updated_at FROM grades`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY year DESC, " + termOrderSQL + " DESC, course_code ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grades: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var grades []model.SealedGrade
	for rows.Next() {
		grade, err := scanGrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grade: %w", err)
		}
		grades = append(grades, *grade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grades: %w", err)
	}

	slog.Debug("Listed grades", "count", len(grades))
	return grades, nil
}

// UpdateGrade overwrites an existing grade and records its previous value in grade_history.
func (s *SQLiteStorage) UpdateGrade(ctx context.Context, grade *model.SealedGrade) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGrade(grade); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		previous, err := s.getGradeTx(ctx, tx, grade.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO grade_history (grade_id, encrypted_grade, status, changed_at)
			VALUES (?, ?, ?, ?)
		`, previous.ID, previous.EncryptedGrade, string(previous.Status), now); err != nil {
			return fmt.Errorf("failed to record grade history: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE grades
			SET course_code = ?, term = ?, year = ?, status = ?, encrypted_grade = ?, updated_at = ?
			WHERE id = ?
		`, grade.CourseCode, string(grade.Term), grade.Year, string(grade.Status),
			grade.EncryptedGrade, now, grade.ID); err != nil {
			return fmt.Errorf("failed to update grade: %w", err)
		}

		grade.CreatedAt = previous.CreatedAt
		grade.UpdatedAt = now
		return nil
	})
}

// DeleteGrade removes a grade. It fails with common.ErrHasDependents when the grade has history.
func (s *SQLiteStorage) DeleteGrade(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM grades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete grade: %w", mapConstraintError(err))
	}
	return requireAffected(result, id)
}

// ForceDeleteGrade removes a grade and its history in one transaction.
func (s *SQLiteStorage) ForceDeleteGrade(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		history, err := tx.ExecContext(ctx, `DELETE FROM grade_history WHERE grade_id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete grade history: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM grades WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete grade: %w", err)
		}
		if err := requireAffected(result, id); err != nil {
			return err
		}

		purged, _ := history.RowsAffected()
		slog.Debug("Force deleted grade", "id", id, "history_rows", purged)
		return nil
	})
}

// GetGradeHistory returns the audit trail of a grade, oldest change first.
func (s *SQLiteStorage) GetGradeHistory(ctx context.Context, gradeID string) ([]model.GradeHistoryEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(gradeID, "gradeID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, grade_id, encrypted_grade, status, changed_at
		FROM grade_history
		WHERE grade_id = ?
		ORDER BY changed_at ASC, id ASC
	`, gradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grade history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.GradeHistoryEntry
	for rows.Next() {
		var (
			entry  model.GradeHistoryEntry
			status string
		)
		if err := rows.Scan(&entry.ID, &entry.GradeID, &entry.EncryptedGrade, &status, &entry.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan grade history: %w", err)
		}
		entry.Status = model.GradeStatus(status)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGrade(row scanner) (*model.SealedGrade, error) {
	var (
		grade  model.SealedGrade
		term   string
		status string
	)
	if err := row.Scan(
		&grade.ID,
		&grade.CourseCode,
		&term,
		&grade.Year,
		&status,
		&grade.EncryptedGrade,
		&grade.CreatedAt,
		&grade.UpdatedAt,
	); err != nil {
		return nil, err
	}
	grade.Term = model.Term(term)
	grade.Status = model.GradeStatus(status)
	return &grade, nil
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrGradeNotFound, id)
	}
	return nil
}

// mapConstraintError translates SQLite constraint failures into common sentinels.
func mapConstraintError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %w", common.ErrHasDependents, err)
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return fmt.Errorf("%w: %w", common.ErrDuplicateEntry, err)
	default:
		return err
	}
}
