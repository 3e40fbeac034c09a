package components

import (
	"fmt"

	"github.com/Veraticus/coursemix/internal/progress"
	"github.com/Veraticus/coursemix/internal/tui/themes"
	bprogress "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxBarWidth = 50

// ProgressPanelModel shows degree completion bars and the GPA summary.
type ProgressPanelModel struct {
	theme      themes.Theme
	summary    *progress.Summary
	projected  string
	completed  bprogress.Model
	inProgress bprogress.Model
	width      int
}

// NewProgressPanelModel creates a new progress panel.
func NewProgressPanelModel(theme themes.Theme) ProgressPanelModel {
	completed := bprogress.New(bprogress.WithSolidFill(string(theme.Primary)))
	completed.ShowPercentage = false
	inProgress := bprogress.New(bprogress.WithSolidFill(string(theme.InProgress)))
	inProgress.ShowPercentage = false

	return ProgressPanelModel{
		theme:      theme,
		completed:  completed,
		inProgress: inProgress,
		summary:    &progress.Summary{},
	}
}

// SetSummary replaces the displayed summary and projected graduation label.
func (m *ProgressPanelModel) SetSummary(summary *progress.Summary, projected string) {
	if summary == nil {
		summary = &progress.Summary{}
	}
	m.summary = summary
	m.projected = projected
}

// Update handles messages.
func (m ProgressPanelModel) Update(msg tea.Msg) (ProgressPanelModel, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		barWidth := min(max(m.width-8, 10), maxBarWidth)
		m.completed.Width = barWidth
		m.inProgress.Width = barWidth
	}
	return m, nil
}

// View renders the panel.
func (m ProgressPanelModel) View() string {
	s := m.summary

	bars := lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Subtitle.Render("Degree Progress"),
		m.completed.ViewAs(float64(s.PercentComplete)/100),
		m.theme.Normal.Render(fmt.Sprintf("%d%% complete (%d courses)", s.PercentComplete, s.CompletedCourses)),
		m.inProgress.ViewAs(float64(s.PercentInProgress)/100),
		m.theme.Normal.Render(fmt.Sprintf("%d%% in progress (%d courses)", s.PercentInProgress, s.InProgressCourses)),
	)

	projected := m.projected
	if projected == "" {
		projected = "Not determined"
	}

	stats := lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Subtitle.Render("Grades"),
		fmt.Sprintf("Overall GPA:   %s", m.theme.GPAStyle(s.OverallGPA).Render(fmt.Sprintf("%.2f / 4.0", s.OverallGPA))),
		fmt.Sprintf("Average:       %.1f%%", s.NumericalAverage),
		fmt.Sprintf("Remaining:     %d courses", s.RemainingCourses),
		fmt.Sprintf("Graduation:    %s", projected),
	)

	return lipgloss.JoinVertical(lipgloss.Left, bars, "", stats)
}
