// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Term is an academic session within a year.
type Term string

// Term constants.
const (
	TermWinter Term = "Winter"
	TermSpring Term = "Spring"
	TermSummer Term = "Summer"
	TermFall   Term = "Fall"
)

// CalendarTerms lists the terms in the order they occur within a calendar year.
var CalendarTerms = []Term{TermWinter, TermSpring, TermSummer, TermFall}

// IsValid reports whether t is one of the known terms.
func (t Term) IsValid() bool {
	return t.calendarIndex() >= 0
}

func (t Term) calendarIndex() int {
	for i, term := range CalendarTerms {
		if term == t {
			return i
		}
	}
	return -1
}

// ParseTerm parses a term name case-insensitively.
func ParseTerm(s string) (Term, error) {
	for _, term := range CalendarTerms {
		if strings.EqualFold(strings.TrimSpace(s), string(term)) {
			return term, nil
		}
	}
	return "", fmt.Errorf("unknown term %q (expected Fall, Winter, Spring or Summer)", s)
}

// TermForDate returns the term a calendar date falls in.
// Winter runs January-April, Spring May-June, Summer July-August and Fall September-December.
func TermForDate(t time.Time) TermKey {
	var term Term
	switch m := t.Month(); {
	case m <= time.April:
		term = TermWinter
	case m <= time.June:
		term = TermSpring
	case m <= time.August:
		term = TermSummer
	default:
		term = TermFall
	}
	return TermKey{Year: t.Year(), Term: term}
}

// TermKey identifies a single (year, term) bucket.
type TermKey struct {
	Term Term
	Year int
}

// String returns the canonical "YEAR-TERM" form, e.g. "2024-Fall".
func (k TermKey) String() string {
	return fmt.Sprintf("%d-%s", k.Year, k.Term)
}

// Display returns the human form used in reports, e.g. "Fall 2024".
func (k TermKey) Display() string {
	return fmt.Sprintf("%s %d", k.Term, k.Year)
}

// Before reports whether k occurs strictly before other in calendar order.
func (k TermKey) Before(other TermKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Term.calendarIndex() < other.Term.calendarIndex()
}

// Next returns the term that follows k in calendar order.
func (k TermKey) Next() TermKey {
	idx := k.Term.calendarIndex()
	if idx < 0 || idx == len(CalendarTerms)-1 {
		return TermKey{Year: k.Year + 1, Term: CalendarTerms[0]}
	}
	return TermKey{Year: k.Year, Term: CalendarTerms[idx+1]}
}

// MarshalText implements encoding.TextMarshaler so TermKey can key JSON maps.
func (k TermKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *TermKey) UnmarshalText(text []byte) error {
	parsed, err := ParseTermKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseTermKey parses the "YEAR-TERM" form produced by String.
func ParseTermKey(s string) (TermKey, error) {
	yearPart, termPart, ok := strings.Cut(s, "-")
	if !ok {
		return TermKey{}, fmt.Errorf("invalid term key %q", s)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return TermKey{}, fmt.Errorf("invalid year in term key %q: %w", s, err)
	}
	term, err := ParseTerm(termPart)
	if err != nil {
		return TermKey{}, err
	}
	return TermKey{Year: year, Term: term}, nil
}
