package components

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/coursemix/internal/progress"
	"github.com/Veraticus/coursemix/internal/tui/themes"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// GPAMode selects the bucket the table lists.
type GPAMode int

// GPA table modes.
const (
	ModeTerms GPAMode = iota
	ModeYears
)

// String returns the heading for the mode.
func (m GPAMode) String() string {
	if m == ModeYears {
		return "Year"
	}
	return "Term"
}

// GPATableModel lists GPAs per term or per year, newest first.
type GPATableModel struct {
	summary *progress.Summary
	table   table.Model
	mode    GPAMode
}

// NewGPATableModel creates a new GPA table.
func NewGPATableModel(theme themes.Theme) GPATableModel {
	styles := table.DefaultStyles()
	styles.Header = theme.TableHeader
	styles.Selected = theme.TableSelected

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(styles),
	)

	m := GPATableModel{table: t, summary: &progress.Summary{}}
	m.refresh()
	return m
}

// Mode returns the current mode.
func (m GPATableModel) Mode() GPAMode {
	return m.mode
}

// SetSummary replaces the data shown.
func (m *GPATableModel) SetSummary(summary *progress.Summary) {
	if summary == nil {
		summary = &progress.Summary{}
	}
	m.summary = summary
	m.refresh()
}

// Toggle switches between term and year buckets.
func (m *GPATableModel) Toggle() {
	if m.mode == ModeTerms {
		m.mode = ModeYears
	} else {
		m.mode = ModeTerms
	}
	m.table.SetCursor(0)
	m.refresh()
}

// Rows returns the rendered rows. Used by tests.
func (m GPATableModel) Rows() []table.Row {
	return m.table.Rows()
}

func (m *GPATableModel) refresh() {
	var rows []table.Row
	switch m.mode {
	case ModeYears:
		for _, year := range m.summary.Years() {
			rows = append(rows, table.Row{strconv.Itoa(year), fmt.Sprintf("%.2f", m.summary.YearGPAs[year])})
		}
	default:
		for _, key := range m.summary.Terms() {
			rows = append(rows, table.Row{key.Display(), fmt.Sprintf("%.2f", m.summary.TermGPAs[key])})
		}
	}

	// Columns first so the new rows are rendered against matching headers.
	m.table.SetRows(nil)
	m.table.SetColumns([]table.Column{
		{Title: m.mode.String(), Width: 14},
		{Title: "GPA", Width: 6},
	})
	m.table.SetRows(rows)
}

// Update handles messages.
func (m GPATableModel) Update(msg tea.Msg) (GPATableModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table.
func (m GPATableModel) View() string {
	if len(m.table.Rows()) == 0 {
		return "No grades recorded yet."
	}
	return m.table.View()
}
