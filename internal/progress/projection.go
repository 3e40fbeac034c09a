package progress

import (
	"errors"
	"fmt"

	"github.com/Veraticus/coursemix/internal/model"
)

// DefaultCoursesPerTerm is a full-time course load.
const DefaultCoursesPerTerm = 5

// DefaultStudyTerms are the sessions a full-time student normally enrols in.
var DefaultStudyTerms = []model.Term{model.TermFall, model.TermWinter}

// ErrNoStudyTerms is returned when no valid study term is configured.
var ErrNoStudyTerms = errors.New("no study terms configured")

// ProjectGraduation returns the term in which the last remaining course would be taken,
// scheduling coursesPerTerm courses in each study term after from.
// With nothing remaining the projection is from itself.
func ProjectGraduation(remaining, coursesPerTerm int, from model.TermKey, studyTerms []model.Term) (model.TermKey, error) {
	if coursesPerTerm <= 0 {
		return model.TermKey{}, fmt.Errorf("courses per term must be positive, got %d", coursesPerTerm)
	}
	if !from.Term.IsValid() {
		return model.TermKey{}, fmt.Errorf("invalid starting term %q", from.Term)
	}

	if remaining <= 0 {
		return from, nil
	}

	study := make(map[model.Term]bool, len(studyTerms))
	for _, t := range studyTerms {
		if t.IsValid() {
			study[t] = true
		}
	}
	if len(study) == 0 {
		return model.TermKey{}, ErrNoStudyTerms
	}

	termsNeeded := (remaining + coursesPerTerm - 1) / coursesPerTerm
	current := from
	for termsNeeded > 0 {
		current = current.Next()
		if study[current.Term] {
			termsNeeded--
		}
	}
	return current, nil
}

// LatestTerm returns the most recent (year, term) among records.
func LatestTerm(records []model.GradeRecord) (model.TermKey, bool) {
	var (
		latest model.TermKey
		found  bool
	)
	for _, rec := range records {
		if !rec.Term.IsValid() {
			continue
		}
		key := rec.Key()
		if !found || latest.Before(key) {
			latest = key
			found = true
		}
	}
	return latest, found
}
