package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/service"
	"github.com/google/uuid"
)

// SaveReview stores a new course review, assigning its ID and timestamp when unset.
func (s *SQLiteStorage) SaveReview(ctx context.Context, review *model.Review) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if review != nil {
		if review.ID == "" {
			review.ID = uuid.NewString()
		}
		review.CourseCode = strings.TrimSpace(review.CourseCode)
		review.Comment = strings.TrimSpace(review.Comment)
	}
	if err := validateReview(review); err != nil {
		return err
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	var rating sql.NullInt64
	if review.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*review.Rating), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, course_code, rating, difficulty, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, review.ID, review.CourseCode, rating, string(review.Difficulty), review.Comment, review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save review: %w", mapConstraintError(err))
	}
	return nil
}

// ListReviews returns the reviews matching filter.
func (s *SQLiteStorage) ListReviews(ctx context.Context, filter service.ReviewFilter) ([]model.Review, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if code := strings.TrimSpace(filter.CourseCode); code != "" {
		where = append(where, "course_code = ? COLLATE NOCASE")
		args = append(args, code)
	}
	if filter.Difficulty != "" {
		where = append(where, "difficulty = ?")
		args = append(args, string(filter.Difficulty))
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		where = append(where, "instr(lower(comment), lower(?)) > 0")
		args = append(args, keyword)
	}

	query := `SELECT id, course_code, rating, difficulty, comment, created_at FROM reviews`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch filter.Order {
	case service.ReviewOrderLatest:
		query += " ORDER BY created_at DESC, rowid DESC"
	case service.ReviewOrderOldest:
		query += " ORDER BY created_at ASC, rowid ASC"
	case service.ReviewOrderNone:
		query += " ORDER BY rowid ASC"
	default:
		return nil, fmt.Errorf("%w: unknown review order %q", ErrInvalidReview, filter.Order)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reviews []model.Review
	for rows.Next() {
		var (
			r      model.Review
			rating sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.CourseCode, &rating, &r.Difficulty, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		if rating.Valid {
			v := int(rating.Int64)
			r.Rating = &v
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
