// Package progress aggregates grade records into GPA and degree-progress summaries.
//
// Aggregation is pure: it never mutates its inputs, holds no state between calls and
// performs no I/O, so an Aggregator may be shared freely.
package progress

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Veraticus/coursemix/internal/grade"
	"github.com/Veraticus/coursemix/internal/model"
)

// DefaultDegreeTotalCourses is the number of courses required for the degree.
const DefaultDegreeTotalCourses = 40

// ErrMalformedRecord is returned when a record lacks a field needed for grouping.
var ErrMalformedRecord = errors.New("malformed grade record")

// Config controls aggregation.
type Config struct {
	Scale              grade.Scale
	DegreeTotalCourses int
}

// DefaultConfig returns the registrar defaults.
func DefaultConfig() Config {
	return Config{
		DegreeTotalCourses: DefaultDegreeTotalCourses,
		Scale:              grade.DefaultScale(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.DegreeTotalCourses <= 0 {
		return fmt.Errorf("degree total courses must be positive, got %d", c.DegreeTotalCourses)
	}
	if err := c.Scale.Validate(); err != nil {
		return err
	}
	return nil
}

// Summary is the derived view of a student's grades.
type Summary struct {
	TermGPAs          map[model.TermKey]float64 `json:"term_gpas"`
	YearGPAs          map[int]float64           `json:"year_gpas"`
	OverallGPA        float64                   `json:"overall_gpa"`
	NumericalAverage  float64                   `json:"numerical_average"`
	CompletedCourses  int                       `json:"completed_courses"`
	InProgressCourses int                       `json:"in_progress_courses"`
	TotalCourses      int                       `json:"total_courses"`
	RemainingCourses  int                       `json:"remaining_courses"`
	PercentComplete   int                       `json:"percent_complete"`
	PercentInProgress int                       `json:"percent_in_progress"`
}

// Terms returns the term buckets newest first.
func (s *Summary) Terms() []model.TermKey {
	keys := make([]model.TermKey, 0, len(s.TermGPAs))
	for k := range s.TermGPAs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[j].Before(keys[i]) })
	return keys
}

// Years returns the year buckets newest first.
func (s *Summary) Years() []int {
	years := make([]int, 0, len(s.YearGPAs))
	for y := range s.YearGPAs {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Aggregator computes Summaries with a fixed Config.
type Aggregator struct {
	cfg Config
}

// NewAggregator creates an Aggregator after validating cfg.
func NewAggregator(cfg Config) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid progress config: %w", err)
	}
	return &Aggregator{cfg: cfg}, nil
}

// Config returns the aggregator configuration.
func (a *Aggregator) Config() Config {
	return a.cfg
}

// Aggregate summarizes records. decrypted maps record IDs to raw grade values.
//
// Counts are driven by status alone while GPA and average only see completed records
// whose value resolves, so a completed course with an unreadable grade still counts
// as completed.
func (a *Aggregator) Aggregate(records []model.GradeRecord, decrypted map[string]string) (*Summary, error) {
	var (
		allLetters  []string
		numerics    []float64
		termLetters = make(map[model.TermKey][]string)
		yearLetters = make(map[int][]string)
		completed   int
		inProgress  int
	)

	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%w at index %d: %w", ErrMalformedRecord, i, err)
		}

		key := rec.Key()
		if _, ok := termLetters[key]; !ok {
			termLetters[key] = nil
		}
		if _, ok := yearLetters[rec.Year]; !ok {
			yearLetters[rec.Year] = nil
		}

		switch rec.Status {
		case model.StatusCompleted:
			completed++
		case model.StatusInProgress:
			inProgress++
			continue
		}

		canonical, ok := a.cfg.Scale.Normalize(decrypted[rec.ID])
		if !ok {
			continue
		}

		allLetters = append(allLetters, canonical.Letter)
		termLetters[key] = append(termLetters[key], canonical.Letter)
		yearLetters[rec.Year] = append(yearLetters[rec.Year], canonical.Letter)
		numerics = append(numerics, canonical.Numeric)
	}

	summary := &Summary{
		OverallGPA:        a.cfg.Scale.CalculateGPA(allLetters),
		TermGPAs:          make(map[model.TermKey]float64, len(termLetters)),
		YearGPAs:          make(map[int]float64, len(yearLetters)),
		CompletedCourses:  completed,
		InProgressCourses: inProgress,
		TotalCourses:      completed + inProgress,
		NumericalAverage:  mean(numerics),
	}
	for key, letters := range termLetters {
		summary.TermGPAs[key] = a.cfg.Scale.CalculateGPA(letters)
	}
	for year, letters := range yearLetters {
		summary.YearGPAs[year] = a.cfg.Scale.CalculateGPA(letters)
	}

	total := a.cfg.DegreeTotalCourses
	summary.RemainingCourses = max(0, total-summary.TotalCourses)
	summary.PercentComplete = min(100, roundHalfUp(float64(completed)/float64(total)*100))
	summary.PercentInProgress = min(100-summary.PercentComplete, roundHalfUp(float64(inProgress)/float64(total)*100))

	return summary, nil
}

// Aggregate summarizes records with the default configuration.
func Aggregate(records []model.GradeRecord, decrypted map[string]string) (*Summary, error) {
	a := &Aggregator{cfg: DefaultConfig()}
	return a.Aggregate(records, decrypted)
}

// MissingGrades returns the course codes of completed records that have no grade
// value: absent from decrypted or holding a sentinel such as N/A. Records that
// failed to decrypt are left out; callers report those separately.
func MissingGrades(records []model.GradeRecord, decrypted map[string]string) []string {
	var missing []string
	for _, rec := range records {
		if rec.Status != model.StatusCompleted {
			continue
		}
		value, ok := decrypted[rec.ID]
		if ok && value == model.GradeDecryptionError {
			continue
		}
		if !ok || grade.IsSentinel(value) {
			missing = append(missing, rec.CourseCode)
		}
	}
	return missing
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
