// Package transcript builds the academic progress report and renders it for export.
package transcript

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/Veraticus/coursemix/internal/grade"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/progress"
)

// Report strings.
const (
	Title              = "Academic Progress Report"
	ConfidentialNotice = "This report is confidential and intended for the student's personal use only."
	NotSpecified       = "Not specified"
	NotDetermined      = "Not determined"
	DateLayout         = "January 2, 2006"
)

// Column headings of every year table.
var Columns = []string{"Course Code", "Grade", "Status"}

// Input gathers everything needed to build a report.
type Input struct {
	Now       time.Time
	Profile   *model.Profile
	Summary   *progress.Summary
	Projected *model.TermKey
	Decrypted map[string]string
	Records   []model.GradeRecord
	Scale     grade.Scale
}

// Report is a presentation-ready transcript.
type Report struct {
	Title             string        `json:"title"`
	ProgressLine      string        `json:"progress_line"`
	Footer            string        `json:"footer"`
	Student           StudentInfo   `json:"student"`
	Summary           SummaryInfo   `json:"summary"`
	Years             []YearSection `json:"years"`
	PercentComplete   int           `json:"percent_complete"`
	PercentInProgress int           `json:"percent_in_progress"`
}

// StudentInfo is the student block of the report.
type StudentInfo struct {
	Name                string `json:"name"`
	StudentID           string `json:"student_id"`
	Program             string `json:"program"`
	ProjectedGraduation string `json:"projected_graduation"`
	ReportDate          string `json:"report_date"`
}

// SummaryInfo is the academic summary block.
type SummaryInfo struct {
	OverallGPA string `json:"overall_gpa"`
	Completed  string `json:"completed"`
	InProgress string `json:"in_progress"`
}

// YearSection lists the courses of one academic year.
type YearSection struct {
	Rows []Row `json:"rows"`
	Year int   `json:"year"`
}

// Row is one course line.
type Row struct {
	CourseCode string `json:"course_code"`
	Grade      string `json:"grade"`
	Status     string `json:"status"`
}

// Cells returns the row in column order.
func (r Row) Cells() []string {
	return []string{r.CourseCode, r.Grade, r.Status}
}

// Build assembles a report. A nil Summary is treated as an empty one and a zero
// Scale as the default scale.
func Build(in Input) Report {
	summary := in.Summary
	if summary == nil {
		summary = &progress.Summary{}
	}
	if len(in.Scale.Breakpoints) == 0 {
		in.Scale = grade.DefaultScale()
	}
	date := in.Now.Format(DateLayout)

	report := Report{
		Title:             Title,
		ProgressLine:      ProgressLine(summary.PercentComplete, summary.PercentInProgress),
		PercentComplete:   summary.PercentComplete,
		PercentInProgress: summary.PercentInProgress,
		Student: StudentInfo{
			Program:             NotSpecified,
			ProjectedGraduation: NotDetermined,
			ReportDate:          date,
		},
		Summary: SummaryInfo{
			OverallGPA: fmt.Sprintf("%.2f / 4.0", summary.OverallGPA),
			Completed:  fmt.Sprintf("%d courses", summary.CompletedCourses),
			InProgress: fmt.Sprintf("%d courses", summary.InProgressCourses),
		},
		Footer: fmt.Sprintf("Generated on %s by CourseMix", date),
	}

	if p := in.Profile; p != nil {
		report.Student.Name = p.Name
		report.Student.StudentID = p.StudentID
		if p.ProgramName != "" {
			report.Student.Program = p.ProgramName
		}
	}
	if in.Projected != nil {
		report.Student.ProjectedGraduation = in.Projected.Display()
	}

	byYear := make(map[int][]Row)
	for _, rec := range in.Records {
		byYear[rec.Year] = append(byYear[rec.Year], Row{
			CourseCode: rec.CourseCode,
			Grade:      gradeCell(rec, in.Decrypted[rec.ID], in.Scale),
			Status:     rec.Status.Display(),
		})
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	for _, y := range years {
		report.Years = append(report.Years, YearSection{Year: y, Rows: byYear[y]})
	}
	return report
}

// ProgressLine formats the completion percentages, e.g. "5% Complete (+3% In Progress)".
func ProgressLine(complete, inProgress int) string {
	line := fmt.Sprintf("%d%% Complete", complete)
	if inProgress > 0 {
		line += fmt.Sprintf(" (+%d%% In Progress)", inProgress)
	}
	return line
}

func gradeCell(rec model.GradeRecord, value string, scale grade.Scale) string {
	switch rec.Status {
	case model.StatusCompleted:
	case model.StatusInProgress:
		return "In Progress"
	default:
		return "Not Started"
	}

	if value == "" {
		return model.GradeUnavailable
	}
	if numeric, ok := grade.ParseNumeric(value); ok {
		return fmt.Sprintf("%s (%s)", strconv.FormatFloat(numeric, 'f', -1, 64), scale.LetterFor(numeric))
	}
	return value
}
