package config

import (
	"fmt"

	"github.com/Veraticus/coursemix/internal/common"
	"github.com/Veraticus/coursemix/internal/grade"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/progress"
	"github.com/Veraticus/coursemix/internal/suggest"
	"github.com/spf13/viper"
)

// Settings are the grading and planning knobs read from configuration.
type Settings struct {
	StudyTerms      []model.Term
	Progress        progress.Config
	CoursesPerTerm  int
	SuggestionLimit int
}

// SetDefaults registers default values for every coursemix key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("grading.degree_total_courses", progress.DefaultDegreeTotalCourses)
	v.SetDefault("graduation.courses_per_term", progress.DefaultCoursesPerTerm)
	v.SetDefault("graduation.study_terms", []string{string(model.TermFall), string(model.TermWinter)})
	v.SetDefault("suggestions.limit", suggest.DefaultLimit)
	v.SetDefault("serve.address", ":8080")
}

// LoadSettings reads grading, graduation and suggestion settings from v.
func LoadSettings(v *viper.Viper) (Settings, error) {
	var breakpoints []grade.Breakpoint
	if err := v.UnmarshalKey("grading.breakpoints", &breakpoints); err != nil {
		return Settings{}, fmt.Errorf("%w: grading.breakpoints: %w", common.ErrInvalidConfig, err)
	}
	var points, midpoints map[string]float64
	if err := v.UnmarshalKey("grading.gpa_scale", &points); err != nil {
		return Settings{}, fmt.Errorf("%w: grading.gpa_scale: %w", common.ErrInvalidConfig, err)
	}
	if err := v.UnmarshalKey("grading.midpoints", &midpoints); err != nil {
		return Settings{}, fmt.Errorf("%w: grading.midpoints: %w", common.ErrInvalidConfig, err)
	}

	cfg := progress.Config{
		Scale:              grade.DefaultScale().WithOverrides(breakpoints, points, midpoints),
		DegreeTotalCourses: v.GetInt("grading.degree_total_courses"),
	}
	if err := cfg.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	names := v.GetStringSlice("graduation.study_terms")
	terms := make([]model.Term, 0, len(names))
	for _, name := range names {
		term, err := model.ParseTerm(name)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: graduation.study_terms: %w", common.ErrInvalidConfig, err)
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return Settings{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, progress.ErrNoStudyTerms)
	}

	perTerm := v.GetInt("graduation.courses_per_term")
	if perTerm <= 0 {
		return Settings{}, fmt.Errorf("%w: graduation.courses_per_term must be positive, got %d", common.ErrInvalidConfig, perTerm)
	}

	return Settings{
		Progress:        cfg,
		StudyTerms:      terms,
		CoursesPerTerm:  perTerm,
		SuggestionLimit: v.GetInt("suggestions.limit"),
	}, nil
}
