// Package service defines the interfaces shared between application layers.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/coursemix/internal/model"
)

// GradeFilter narrows grade queries. Zero values match everything.
type GradeFilter struct {
	Status model.GradeStatus
	Term   model.Term
	Year   int
}

// ReviewOrder sorts review listings.
type ReviewOrder string

// Review orderings. ReviewOrderNone keeps the order reviews were written in.
const (
	ReviewOrderNone   ReviewOrder = ""
	ReviewOrderLatest ReviewOrder = "latest"
	ReviewOrderOldest ReviewOrder = "oldest"
)

// ReviewFilter narrows review queries. Zero values match everything.
type ReviewFilter struct {
	CourseCode string
	Difficulty model.Difficulty
	// Keyword matches the comment case-insensitively.
	Keyword string
	Order   ReviewOrder
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Grade operations
	SaveGrade(ctx context.Context, grade *model.SealedGrade) error
	GetGrade(ctx context.Context, id string) (*model.SealedGrade, error)
	ListGrades(ctx context.Context, filter GradeFilter) ([]model.SealedGrade, error)
	UpdateGrade(ctx context.Context, grade *model.SealedGrade) error
	DeleteGrade(ctx context.Context, id string) error
	ForceDeleteGrade(ctx context.Context, id string) error
	GetGradeHistory(ctx context.Context, gradeID string) ([]model.GradeHistoryEntry, error)

	// Program operations
	SaveRequirement(ctx context.Context, req *model.CourseRequirement) error
	ListRequirements(ctx context.Context) ([]model.CourseRequirement, error)
	SavePrerequisite(ctx context.Context, prereq *model.Prerequisite) error
	ListPrerequisites(ctx context.Context) ([]model.Prerequisite, error)

	// Review operations
	SaveReview(ctx context.Context, review *model.Review) error
	ListReviews(ctx context.Context, filter ReviewFilter) ([]model.Review, error)

	// Profile operations
	GetProfile(ctx context.Context) (*model.Profile, error)
	SaveProfile(ctx context.Context, profile *model.Profile) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
