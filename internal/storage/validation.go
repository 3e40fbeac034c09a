// Package storage provides the data persistence layer for coursemix.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/coursemix/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidGrade       = errors.New("invalid grade")
	ErrInvalidRequirement = errors.New("invalid requirement")
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrInvalidReview      = errors.New("invalid review")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateGrade(grade *model.SealedGrade) error {
	if grade == nil {
		return fmt.Errorf("%w: grade", ErrNilParameter)
	}
	if err := grade.GradeRecord.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGrade, err)
	}
	return nil
}

func validateRequirement(req *model.CourseRequirement) error {
	if req == nil {
		return fmt.Errorf("%w: requirement", ErrNilParameter)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequirement, err)
	}
	return nil
}

func validatePrerequisite(prereq *model.Prerequisite) error {
	if prereq == nil {
		return fmt.Errorf("%w: prerequisite", ErrNilParameter)
	}
	if err := prereq.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequirement, err)
	}
	return nil
}

func validateProfile(profile *model.Profile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	return nil
}

func validateReview(review *model.Review) error {
	if review == nil {
		return fmt.Errorf("%w: review", ErrNilParameter)
	}
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReview, err)
	}
	return nil
}
