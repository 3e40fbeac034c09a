// Package grade normalizes raw grade values and computes 4.0-scale grade point averages.
package grade

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidScale is returned when a grading scale is inconsistent.
var ErrInvalidScale = errors.New("invalid grading scale")

// MaxPercentage is the ceiling applied to numeric grades.
const MaxPercentage = 100.0

// Breakpoint maps every percentage at or above Min to Letter.
type Breakpoint struct {
	Letter string  `mapstructure:"letter" json:"letter"`
	Min    float64 `mapstructure:"min" json:"min"`
}

// Scale holds the tables used to normalize grades and compute GPA.
// Breakpoints must be ordered from highest Min to lowest; percentages below the
// last breakpoint map to Floor.
type Scale struct {
	Points      map[string]float64
	Midpoints   map[string]float64
	Floor       string
	Breakpoints []Breakpoint
}

// Letters in descending order.
var Letters = []string{"A+", "A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "D-", "F"}

// DefaultScale returns the percentage breakpoints, 4.0 points and letter midpoints
// used by the registrar.
func DefaultScale() Scale {
	return Scale{
		Breakpoints: []Breakpoint{
			{Letter: "A+", Min: 90},
			{Letter: "A", Min: 85},
			{Letter: "A-", Min: 80},
			{Letter: "B+", Min: 77},
			{Letter: "B", Min: 73},
			{Letter: "B-", Min: 70},
			{Letter: "C+", Min: 67},
			{Letter: "C", Min: 63},
			{Letter: "C-", Min: 60},
			{Letter: "D+", Min: 57},
			{Letter: "D", Min: 53},
			{Letter: "D-", Min: 50},
		},
		Floor: "F",
		Points: map[string]float64{
			"A+": 4.0, "A": 4.0, "A-": 3.7,
			"B+": 3.3, "B": 3.0, "B-": 2.7,
			"C+": 2.3, "C": 2.0, "C-": 1.7,
			"D+": 1.3, "D": 1.0, "D-": 0.7,
			"F": 0.0,
		},
		Midpoints: map[string]float64{
			"A+": 95, "A": 87.5, "A-": 82.5,
			"B+": 77.5, "B": 75, "B-": 72.5,
			"C+": 67.5, "C": 65, "C-": 62.5,
			"D+": 57.5, "D": 55, "D-": 52.5,
			"F": 45,
		},
	}
}

// Validate checks that the scale is internally consistent.
func (s Scale) Validate() error {
	if len(s.Breakpoints) == 0 {
		return fmt.Errorf("%w: no breakpoints", ErrInvalidScale)
	}
	if s.Floor == "" {
		return fmt.Errorf("%w: floor letter is required", ErrInvalidScale)
	}
	if _, ok := s.Points[s.Floor]; !ok {
		return fmt.Errorf("%w: floor letter %q has no point value", ErrInvalidScale, s.Floor)
	}

	for i, bp := range s.Breakpoints {
		if _, ok := s.Points[bp.Letter]; !ok {
			return fmt.Errorf("%w: letter %q has no point value", ErrInvalidScale, bp.Letter)
		}
		if i > 0 && bp.Min >= s.Breakpoints[i-1].Min {
			return fmt.Errorf("%w: breakpoint %q (%.2f) must be below %q (%.2f)",
				ErrInvalidScale, bp.Letter, bp.Min, s.Breakpoints[i-1].Letter, s.Breakpoints[i-1].Min)
		}
	}

	for letter, pts := range s.Points {
		if pts < 0 || pts > 4.0 {
			return fmt.Errorf("%w: points for %q must be within [0, 4], got %.2f", ErrInvalidScale, letter, pts)
		}
		if _, ok := s.Midpoints[letter]; !ok {
			return fmt.Errorf("%w: letter %q has no midpoint", ErrInvalidScale, letter)
		}
	}

	return nil
}

// WithOverrides returns a copy of s with non-empty tables replaced.
// Letter keys are upper-cased so config loaders that fold case still match.
func (s Scale) WithOverrides(breakpoints []Breakpoint, points, midpoints map[string]float64) Scale {
	out := s
	if len(breakpoints) > 0 {
		out.Breakpoints = make([]Breakpoint, len(breakpoints))
		for i, bp := range breakpoints {
			out.Breakpoints[i] = Breakpoint{Letter: strings.ToUpper(bp.Letter), Min: bp.Min}
		}
	}
	if len(points) > 0 {
		out.Points = upperKeys(points)
	}
	if len(midpoints) > 0 {
		out.Midpoints = upperKeys(midpoints)
	}
	return out
}

func upperKeys(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = v
	}
	return out
}
