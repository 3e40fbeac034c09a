// Package suggest picks the next program requirements a student is ready to take.
package suggest

import (
	"sort"

	"github.com/Veraticus/coursemix/internal/grade"
	"github.com/Veraticus/coursemix/internal/model"
)

// DefaultLimit is how many suggestions are returned when no limit is configured.
const DefaultLimit = 5

// Suggestion is a requirement the student has not started and is eligible for.
type Suggestion struct {
	Prerequisites []string `json:"prerequisites,omitempty"`
	model.CourseRequirement
}

// Suggest returns up to limit requirements that are neither completed nor in progress
// and whose prerequisites are all completed, lowest program year first.
// A prerequisite with a MinGrade also needs a resolvable grade of at least that value.
// A limit of zero or less uses DefaultLimit.
func Suggest(
	requirements []model.CourseRequirement,
	prerequisites []model.Prerequisite,
	records []model.GradeRecord,
	decrypted map[string]string,
	scale grade.Scale,
	limit int,
) []Suggestion {
	if limit <= 0 {
		limit = DefaultLimit
	}

	completed := make(map[string]bool)
	inProgress := make(map[string]bool)
	best := make(map[string]float64)
	for _, rec := range records {
		switch rec.Status {
		case model.StatusCompleted:
			completed[rec.CourseCode] = true
			if canonical, ok := scale.Normalize(decrypted[rec.ID]); ok {
				if prev, seen := best[rec.CourseCode]; !seen || canonical.Numeric > prev {
					best[rec.CourseCode] = canonical.Numeric
				}
			}
		case model.StatusInProgress:
			inProgress[rec.CourseCode] = true
		}
	}

	prereqsFor := make(map[string][]model.Prerequisite)
	for _, p := range prerequisites {
		prereqsFor[p.CourseCode] = append(prereqsFor[p.CourseCode], p)
	}

	candidates := make([]model.CourseRequirement, 0, len(requirements))
	for _, req := range requirements {
		if completed[req.CourseCode] || inProgress[req.CourseCode] {
			continue
		}
		candidates = append(candidates, req)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Year < candidates[j].Year
	})

	suggestions := make([]Suggestion, 0, limit)
	for _, req := range candidates {
		if len(suggestions) == limit {
			break
		}

		prereqs := prereqsFor[req.CourseCode]
		if !satisfied(prereqs, completed, best) {
			continue
		}

		s := Suggestion{CourseRequirement: req}
		for _, p := range prereqs {
			s.Prerequisites = append(s.Prerequisites, p.PrerequisiteCode)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions
}

func satisfied(prereqs []model.Prerequisite, completed map[string]bool, best map[string]float64) bool {
	for _, p := range prereqs {
		if !completed[p.PrerequisiteCode] {
			return false
		}
		if p.MinGrade == nil {
			continue
		}
		numeric, ok := best[p.PrerequisiteCode]
		if !ok || numeric < *p.MinGrade {
			return false
		}
	}
	return true
}
