package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/coursemix/internal/model"
	"github.com/google/uuid"
)

// SaveRequirement inserts or replaces the requirement for a course code.
func (s *SQLiteStorage) SaveRequirement(ctx context.Context, req *model.CourseRequirement) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if req != nil && req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err := validateRequirement(req); err != nil {
		return err
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO program_requirements (id, year, course_code, credit_weight, requirement_type, min_grade, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(course_code) DO UPDATE SET
			year = excluded.year,
			credit_weight = excluded.credit_weight,
			requirement_type = excluded.requirement_type,
			min_grade = excluded.min_grade
	`, req.ID, req.Year, req.CourseCode, req.CreditWeight, req.RequirementType, nullFloat(req.MinGrade), req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save requirement: %w", mapConstraintError(err))
	}
	return nil
}

// ListRequirements returns all program requirements ordered by year then course code.
func (s *SQLiteStorage) ListRequirements(ctx context.Context) ([]model.CourseRequirement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, year, course_code, credit_weight, requirement_type, min_grade, created_at
		FROM program_requirements
		ORDER BY year ASC, course_code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query requirements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reqs []model.CourseRequirement
	for rows.Next() {
		var (
			req      model.CourseRequirement
			minGrade sql.NullFloat64
		)
		if err := rows.Scan(&req.ID, &req.Year, &req.CourseCode, &req.CreditWeight,
			&req.RequirementType, &minGrade, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		req.MinGrade = floatPtr(minGrade)
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// SavePrerequisite inserts or updates a prerequisite edge.
func (s *SQLiteStorage) SavePrerequisite(ctx context.Context, prereq *model.Prerequisite) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePrerequisite(prereq); err != nil {
		return err
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO course_prerequisites (course_code, prerequisite_code, min_grade)
		VALUES (?, ?, ?)
		ON CONFLICT(course_code, prerequisite_code) DO UPDATE SET
			min_grade = excluded.min_grade
		RETURNING id
	`, prereq.CourseCode, prereq.PrerequisiteCode, nullFloat(prereq.MinGrade)).Scan(&prereq.ID)
	if err != nil {
		return fmt.Errorf("failed to save prerequisite: %w", err)
	}
	return nil
}

// ListPrerequisites returns every prerequisite edge.
func (s *SQLiteStorage) ListPrerequisites(ctx context.Context) ([]model.Prerequisite, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, course_code, prerequisite_code, min_grade
		FROM course_prerequisites
		ORDER BY course_code ASC, prerequisite_code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query prerequisites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var prereqs []model.Prerequisite
	for rows.Next() {
		var (
			p        model.Prerequisite
			minGrade sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &p.CourseCode, &p.PrerequisiteCode, &minGrade); err != nil {
			return nil, fmt.Errorf("failed to scan prerequisite: %w", err)
		}
		p.MinGrade = floatPtr(minGrade)
		prereqs = append(prereqs, p)
	}
	return prereqs, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
