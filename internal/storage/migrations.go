package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Grades and grade history",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS grades (
					id TEXT PRIMARY KEY,
					course_code TEXT NOT NULL,
					term TEXT NOT NULL,
					year INTEGER NOT NULL,
					status TEXT NOT NULL CHECK (status IN ('completed', 'in-progress')),
					encrypted_grade TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_grades_term ON grades(year, term)`,
				`CREATE INDEX idx_grades_course ON grades(course_code)`,

				`CREATE TABLE IF NOT EXISTS grade_history (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					grade_id TEXT NOT NULL,
					encrypted_grade TEXT NOT NULL DEFAULT '',
					status TEXT NOT NULL,
					changed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (grade_id) REFERENCES grades(id)
				)`,
				`CREATE INDEX idx_grade_history_grade ON grade_history(grade_id)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Program requirements and prerequisites",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS program_requirements (
					id TEXT PRIMARY KEY,
					year INTEGER NOT NULL,
					course_code TEXT NOT NULL UNIQUE,
					credit_weight REAL NOT NULL DEFAULT 0.5,
					requirement_type TEXT NOT NULL DEFAULT '',
					min_grade REAL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_program_requirements_year ON program_requirements(year)`,

				`CREATE TABLE IF NOT EXISTS course_prerequisites (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					course_code TEXT NOT NULL,
					prerequisite_code TEXT NOT NULL,
					min_grade REAL,
					UNIQUE(course_code, prerequisite_code)
				)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Student profile",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS profile (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					name TEXT NOT NULL,
					student_id TEXT NOT NULL,
					program_name TEXT NOT NULL DEFAULT '',
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			)
		},
	},
	{
		Version:     4,
		Description: "Course reviews",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS reviews (
					id TEXT PRIMARY KEY,
					course_code TEXT NOT NULL,
					rating INTEGER CHECK (rating IS NULL OR rating BETWEEN 1 AND 5),
					difficulty TEXT NOT NULL CHECK (difficulty IN ('Easy', 'Medium', 'Hard')),
					comment TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_reviews_course ON reviews(course_code)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate runs all pending migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if currentVersion > ExpectedSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, ExpectedSchemaVersion)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the current PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
