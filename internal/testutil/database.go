// Package testutil provides shared test helpers for coursemix packages.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/service"
	"github.com/Veraticus/coursemix/internal/storage"
	"github.com/Veraticus/coursemix/internal/vault"
)

// TestVaultKey is the secret used by test vaults.
const TestVaultKey = "coursemix-test-key"

// TestDB is a migrated in-memory database plus a vault for sealing grades.
type TestDB struct {
	Storage service.Storage
	Vault   *vault.Vault
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	v, err := vault.New(TestVaultKey)
	if err != nil {
		t.Fatalf("failed to create test vault: %v", err)
	}

	return &TestDB{
		Storage: store,
		Vault:   v,
		t:       t,
	}
}

// AddGrade seals value and stores a grade, returning its ID.
func (db *TestDB) AddGrade(course string, year int, term model.Term, status model.GradeStatus, value string) string {
	db.t.Helper()

	sealed, err := db.Vault.Encrypt(value)
	if err != nil {
		db.t.Fatalf("failed to seal grade for %s: %v", course, err)
	}

	grade := &model.SealedGrade{
		GradeRecord: model.GradeRecord{
			CourseCode: course,
			Term:       term,
			Year:       year,
			Status:     status,
		},
		EncryptedGrade: sealed,
	}
	if err := db.Storage.SaveGrade(context.Background(), grade); err != nil {
		db.t.Fatalf("failed to seed grade %s: %v", course, err)
	}
	return grade.ID
}

// AddRequirement stores a program requirement.
func (db *TestDB) AddRequirement(course string, year int, prereqs ...string) {
	db.t.Helper()
	ctx := context.Background()

	req := &model.CourseRequirement{CourseCode: course, Year: year, CreditWeight: 0.5}
	if err := db.Storage.SaveRequirement(ctx, req); err != nil {
		db.t.Fatalf("failed to seed requirement %s: %v", course, err)
	}
	for _, p := range prereqs {
		if err := db.Storage.SavePrerequisite(ctx, &model.Prerequisite{CourseCode: course, PrerequisiteCode: p}); err != nil {
			db.t.Fatalf("failed to seed prerequisite %s -> %s: %v", p, course, err)
		}
	}
}

// MustSaveProfile stores the student profile.
func (db *TestDB) MustSaveProfile(name, studentID, program string) {
	db.t.Helper()
	profile := &model.Profile{Name: name, StudentID: studentID, ProgramName: program}
	if err := db.Storage.SaveProfile(context.Background(), profile); err != nil {
		db.t.Fatalf("failed to seed profile: %v", err)
	}
}
