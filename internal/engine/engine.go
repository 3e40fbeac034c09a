// Package engine ties storage, grade encryption and the progress calculators together.
package engine

import (
	"fmt"
	"time"

	"github.com/Veraticus/coursemix/internal/config"
	"github.com/Veraticus/coursemix/internal/grade"
	"github.com/Veraticus/coursemix/internal/progress"
	"github.com/Veraticus/coursemix/internal/service"
	"github.com/Veraticus/coursemix/internal/vault"
)

// Engine is the gradebook: every command and API handler goes through it.
type Engine struct {
	storage    service.Storage
	vault      *vault.Vault
	aggregator *progress.Aggregator
	now        func() time.Time
	settings   config.Settings
}

// New creates an engine. The settings are validated up front.
func New(storage service.Storage, v *vault.Vault, settings config.Settings) (*Engine, error) {
	if storage == nil {
		return nil, fmt.Errorf("engine requires storage")
	}
	if v == nil {
		return nil, fmt.Errorf("engine requires a vault")
	}

	aggregator, err := progress.NewAggregator(settings.Progress)
	if err != nil {
		return nil, err
	}
	if settings.CoursesPerTerm <= 0 {
		settings.CoursesPerTerm = progress.DefaultCoursesPerTerm
	}
	if len(settings.StudyTerms) == 0 {
		settings.StudyTerms = progress.DefaultStudyTerms
	}

	return &Engine{
		storage:    storage,
		vault:      v,
		aggregator: aggregator,
		settings:   settings,
		now:        time.Now,
	}, nil
}

// Scale returns the grading scale in use.
func (e *Engine) Scale() grade.Scale {
	return e.settings.Progress.Scale
}

// SetClock overrides the time source. Used by tests to pin report dates.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}
