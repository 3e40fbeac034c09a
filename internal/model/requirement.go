package model

import "time"

// CourseRequirement is a course the student's program expects them to take.
type CourseRequirement struct {
	CreatedAt       time.Time `json:"created_at"`
	MinGrade        *float64  `json:"min_grade,omitempty" validate:"omitempty,gte=0,lte=100"`
	ID              string    `json:"id" validate:"required"`
	CourseCode      string    `json:"course_code" validate:"required"`
	RequirementType string    `json:"requirement_type"`
	Year            int       `json:"year" validate:"gte=1,lte=8"`
	CreditWeight    float64   `json:"credit_weight" validate:"gte=0"`
}

// Validate checks the requirement fields.
func (r CourseRequirement) Validate() error {
	return validateStruct(r)
}

// Prerequisite states that CourseCode needs PrerequisiteCode completed first.
type Prerequisite struct {
	MinGrade         *float64 `json:"min_grade,omitempty" validate:"omitempty,gte=0,lte=100"`
	CourseCode       string   `json:"course_code" validate:"required"`
	PrerequisiteCode string   `json:"prerequisite_code" validate:"required,nefield=CourseCode"`
	ID               int64    `json:"id"`
}

// Validate checks the prerequisite fields.
func (p Prerequisite) Validate() error {
	return validateStruct(p)
}

// Profile holds the student details printed on transcripts.
type Profile struct {
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name" validate:"required"`
	StudentID   string    `json:"student_id" validate:"required"`
	ProgramName string    `json:"program_name"`
}

// Validate checks the profile fields.
func (p Profile) Validate() error {
	return validateStruct(p)
}
