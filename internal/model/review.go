package model

import (
	"strings"
	"time"
)

// Difficulty is how hard the student found a course.
type Difficulty string

// Recognized difficulties.
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists every difficulty from easiest to hardest.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty parses s case-insensitively.
func ParseDifficulty(s string) (Difficulty, bool) {
	for _, d := range Difficulties {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, true
		}
	}
	return "", false
}

// Review is the student's own note on a course they took.
type Review struct {
	CreatedAt  time.Time  `json:"created_at"`
	Rating     *int       `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	ID         string     `json:"id" validate:"required"`
	CourseCode string     `json:"course_code" validate:"required"`
	Difficulty Difficulty `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	Comment    string     `json:"comment"`
}

// Validate checks the review fields.
func (r Review) Validate() error {
	return validateStruct(r)
}
