package model

import (
	"strings"
	"time"
)

// GradeStatus indicates where a course stands for the student.
type GradeStatus string

// Grade status constants.
const (
	StatusCompleted  GradeStatus = "completed"
	StatusInProgress GradeStatus = "in-progress"
)

// ParseGradeStatus parses a status, accepting "in_progress" and "inprogress" spellings.
func ParseGradeStatus(s string) (GradeStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "complete", "done":
		return StatusCompleted, true
	case "in-progress", "in_progress", "inprogress":
		return StatusInProgress, true
	}
	return "", false
}

// Display capitalizes the first letter of the status, e.g. "Completed".
func (s GradeStatus) Display() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Unresolvable grade sentinels produced upstream by decryption and fetch code.
const (
	GradeUnavailable     = "N/A"
	GradeError           = "Error"
	GradeDecryptionError = "Decryption Error"
)

// GradeRecord is a student's enrolment in one course offering.
// The grade value itself is kept encrypted and supplied separately, keyed by ID.
type GradeRecord struct {
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	ID         string      `json:"id" validate:"required"`
	CourseCode string      `json:"course_code" validate:"required"`
	Term       Term        `json:"term" validate:"required,term"`
	Status     GradeStatus `json:"status" validate:"required,oneof=completed in-progress"`
	Year       int         `json:"year" validate:"required,gt=0"`
}

// Key returns the (year, term) bucket of the record.
func (r GradeRecord) Key() TermKey {
	return TermKey{Year: r.Year, Term: r.Term}
}

// Validate checks that every field needed for aggregation is present.
func (r GradeRecord) Validate() error {
	return validateStruct(r)
}

// GradeHistoryEntry is one audited change to a grade.
type GradeHistoryEntry struct {
	ChangedAt      time.Time
	GradeID        string
	EncryptedGrade string
	Status         GradeStatus
	ID             int64
}

// SealedGrade is a record together with its encrypted grade value as persisted.
// An empty EncryptedGrade means no grade has been entered yet.
type SealedGrade struct {
	EncryptedGrade string `json:"-"`
	GradeRecord
}
