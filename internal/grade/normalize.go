package grade

import (
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/coursemix/internal/model"
)

// CanonicalGrade is a raw grade resolved to a letter and a numeric estimate.
type CanonicalGrade struct {
	Letter string
	// Numeric is the clamped percentage for numeric input, or the letter midpoint.
	Numeric     float64
	FromNumeric bool
}

// IsSentinel reports whether raw is one of the upstream "no value" markers.
func IsSentinel(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "", model.GradeUnavailable, model.GradeError, model.GradeDecryptionError:
		return true
	}
	return false
}

// ParseNumeric parses raw as a finite decimal number. Hexadecimal forms are
// not grades and are rejected.
func ParseNumeric(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	digits := strings.TrimLeft(raw, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Normalize resolves raw against s. The boolean is false when raw is unresolvable.
func (s Scale) Normalize(raw string) (CanonicalGrade, bool) {
	if IsSentinel(raw) {
		return CanonicalGrade{}, false
	}

	if v, ok := ParseNumeric(raw); ok {
		v = math.Min(v, MaxPercentage)
		return CanonicalGrade{
			Letter:      s.LetterFor(v),
			Numeric:     v,
			FromNumeric: true,
		}, true
	}

	letter := strings.ToUpper(strings.TrimSpace(raw))
	mid, ok := s.Midpoints[letter]
	if !ok {
		return CanonicalGrade{}, false
	}
	return CanonicalGrade{Letter: letter, Numeric: mid}, true
}

// LetterFor maps a percentage to its letter grade.
func (s Scale) LetterFor(pct float64) string {
	for _, bp := range s.Breakpoints {
		if pct >= bp.Min {
			return bp.Letter
		}
	}
	return s.Floor
}

// IsLetter reports whether raw is a letter grade known to s, ignoring case.
func (s Scale) IsLetter(raw string) bool {
	_, ok := s.Midpoints[strings.ToUpper(strings.TrimSpace(raw))]
	return ok
}

// Normalize resolves raw against the default scale.
func Normalize(raw string) (CanonicalGrade, bool) {
	return DefaultScale().Normalize(raw)
}
