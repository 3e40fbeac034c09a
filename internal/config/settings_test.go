package config

import (
	"strings"
	"testing"

	"github.com/Veraticus/coursemix/internal/common"
	"github.com/Veraticus/coursemix/internal/grade"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return v
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 40, s.Progress.DegreeTotalCourses)
	assert.Equal(t, grade.DefaultScale(), s.Progress.Scale)
	assert.Equal(t, 5, s.CoursesPerTerm)
	assert.Equal(t, []model.Term{model.TermFall, model.TermWinter}, s.StudyTerms)
	assert.Equal(t, 5, s.SuggestionLimit)
}

func TestLoadSettings_Overrides(t *testing.T) {
	v := newViper(t, `
grading:
  degree_total_courses: 20
  breakpoints:
    - letter: a
      min: 80
    - letter: B
      min: 65
    - letter: C
      min: 50
graduation:
  courses_per_term: 3
  study_terms: [fall, winter, summer]
suggestions:
  limit: 2
`)

	s, err := LoadSettings(v)
	require.NoError(t, err)

	assert.Equal(t, 20, s.Progress.DegreeTotalCourses)
	assert.Equal(t, "A", s.Progress.Scale.LetterFor(81))
	assert.Equal(t, "C", s.Progress.Scale.LetterFor(55))
	assert.Equal(t, "F", s.Progress.Scale.LetterFor(40))
	assert.Equal(t, 3, s.CoursesPerTerm)
	assert.Equal(t, []model.Term{model.TermFall, model.TermWinter, model.TermSummer}, s.StudyTerms)
	assert.Equal(t, 2, s.SuggestionLimit)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := map[string]string{
		"zero degree total": "grading:\n  degree_total_courses: 0\n",
		"unknown term":      "graduation:\n  study_terms: [autumn]\n",
		"zero per term":     "graduation:\n  courses_per_term: 0\n",
		"points above four": "grading:\n  gpa_scale:\n    A+: 4.3\n",
		"ascending scale":   "grading:\n  breakpoints:\n    - {letter: B, min: 70}\n    - {letter: A, min: 85}\n",
	}

	for name, yaml := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSettings(newViper(t, yaml))
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/student")
	t.Setenv("COURSEMIX_DATA", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/home/student", ExpandPath("~"))
	assert.Equal(t, "/home/student/grades.db", ExpandPath("~/grades.db"))
	assert.Equal(t, "/data/grades.db", ExpandPath("$COURSEMIX_DATA/grades.db"))
	assert.Equal(t, "relative/path", ExpandPath("relative/path"))
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", "/home/student")

	viper.Set("sheets.service_account_path", "~/sa.json")
	viper.Set("sheets.spreadsheet_id", "abc")
	viper.Set("sheets.formatting", false)

	cfg, err := LoadSheetsConfig()
	require.NoError(t, err)
	assert.Equal(t, "/home/student/sa.json", cfg.ServiceAccountPath)
	assert.Equal(t, "abc", cfg.SpreadsheetID)
	assert.False(t, cfg.EnableFormatting)
}
