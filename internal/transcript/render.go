package transcript

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#27374D")).MarginBottom(1)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#526D82"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	footerStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#9DB2BF")).Padding(0, 1)
	barDone      = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	barActive    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	barEmpty     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

const barWidth = 40

// RenderText writes the report as styled terminal text.
func RenderText(w io.Writer, r Report) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render(r.Title))
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Degree Progress"))
	b.WriteString("\n")
	b.WriteString(progressBar(r.PercentComplete, r.PercentInProgress))
	b.WriteString("\n")
	b.WriteString(r.ProgressLine)
	b.WriteString("\n\n")

	student := strings.Join([]string{
		headingStyle.Render("Student Information"),
		field("Name", r.Student.Name),
		field("Student ID", r.Student.StudentID),
		field("Program", r.Student.Program),
		field("Projected Graduation", r.Student.ProjectedGraduation),
		field("Report Date", r.Student.ReportDate),
	}, "\n")
	summary := strings.Join([]string{
		headingStyle.Render("Academic Summary"),
		field("Overall GPA", r.Summary.OverallGPA),
		field("Completed", r.Summary.Completed),
		field("In Progress", r.Summary.InProgress),
	}, "\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxStyle.Render(student), " ", boxStyle.Render(summary)))
	b.WriteString("\n\n")

	b.WriteString(headingStyle.Render("Grades"))
	b.WriteString("\n")
	for _, section := range r.Years {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#9DB2BF"))).
			Headers(Columns...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headingStyle.Padding(0, 1)
				}
				return lipgloss.NewStyle().Padding(0, 1)
			})
		for _, row := range section.Rows {
			t.Row(row.Cells()...)
		}
		b.WriteString(labelStyle.Render(strconv.Itoa(section.Year)))
		b.WriteString("\n")
		b.WriteString(t.Render())
		b.WriteString("\n")
	}
	if len(r.Years) == 0 {
		b.WriteString(labelStyle.Render("No grades recorded."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render(ConfidentialNotice))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(r.Footer))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

func progressBar(complete, inProgress int) string {
	done := barWidth * clampPercent(complete) / 100
	active := barWidth * clampPercent(inProgress) / 100
	if done+active > barWidth {
		active = barWidth - done
	}
	rest := barWidth - done - active
	return barDone.Render(strings.Repeat("█", done)) +
		barActive.Render(strings.Repeat("▓", active)) +
		barEmpty.Render(strings.Repeat("░", rest))
}

func clampPercent(p int) int {
	return max(0, min(p, 100))
}

// WriteCSV writes the report as CSV: a header block of label/value pairs, a blank
// line, then one row per course with the year prepended.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)

	header := [][]string{
		{"Report", r.Title},
		{"Name", r.Student.Name},
		{"Student ID", r.Student.StudentID},
		{"Program", r.Student.Program},
		{"Projected Graduation", r.Student.ProjectedGraduation},
		{"Report Date", r.Student.ReportDate},
		{"Progress", r.ProgressLine},
		{"Overall GPA", r.Summary.OverallGPA},
		{"Completed", r.Summary.Completed},
		{"In Progress", r.Summary.InProgress},
		{},
		append([]string{"Year"}, Columns...),
	}
	if err := cw.WriteAll(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, section := range r.Years {
		year := strconv.Itoa(section.Year)
		for _, row := range section.Rows {
			if err := cw.Write(append([]string{year}, row.Cells()...)); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
