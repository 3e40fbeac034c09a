package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/coursemix/internal/engine"
	"github.com/Veraticus/coursemix/internal/tui/components"
	"github.com/Veraticus/coursemix/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the progress dashboard.
type Model struct {
	ctx       context.Context
	lastError error
	snapshot  *engine.Snapshot
	theme     themes.Theme
	config    Config
	keymap    KeyMap
	help      help.Model
	progress  components.ProgressPanelModel
	gpaTable  components.GPATableModel
	width     int
	height    int
	quitting  bool
	ready     bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	h := help.New()
	h.ShowAll = cfg.ShowHelp

	return Model{
		ctx:      ctx,
		config:   cfg,
		keymap:   DefaultKeyMap(),
		theme:    cfg.Theme,
		help:     h,
		progress: components.NewProgressPanelModel(cfg.Theme),
		gpaTable: components.NewGPATableModel(cfg.Theme),
		width:    cfg.Width,
		height:   cfg.Height,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	loader := m.config.Loader
	ctx := m.ctx
	return func() tea.Msg {
		if loader == nil {
			return snapshotLoadedMsg{err: fmt.Errorf("no snapshot loader configured")}
		}
		snap, err := loader(ctx)
		return snapshotLoadedMsg{snapshot: snap, err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.ToggleView):
			m.gpaTable.Toggle()
			return m, nil
		case key.Matches(msg, m.keymap.ToggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keymap.Refresh):
			return m, m.load()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd

	case snapshotLoadedMsg:
		m.ready = true
		m.lastError = msg.err
		if msg.err == nil && msg.snapshot != nil {
			m.snapshot = msg.snapshot
			projected := ""
			if msg.snapshot.Projected != nil {
				projected = msg.snapshot.Projected.Display()
			}
			m.progress.SetSummary(msg.snapshot.Summary, projected)
			m.gpaTable.SetSummary(msg.snapshot.Summary)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.gpaTable, cmd = m.gpaTable.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.theme.Muted.Render("Loading grades...")
	}

	sections := []string{m.theme.Title.Render("🎓 CourseMix Progress")}

	if m.lastError != nil {
		sections = append(sections, m.theme.StatusError.Render("Error: "+m.lastError.Error()))
	}

	table := lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Subtitle.Render(m.gpaTable.Mode().String()+" GPAs"),
		m.gpaTable.View(),
	)
	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.theme.RoundedBox.Render(m.progress.View()),
		m.theme.RoundedBox.Render(table),
	)
	sections = append(sections, body)

	if m.snapshot != nil && len(m.snapshot.Undecryptable) > 0 {
		sections = append(sections, m.theme.StatusWarning.Render(
			"Could not decrypt: "+strings.Join(m.snapshot.Undecryptable, ", ")))
	}
	if m.snapshot != nil && len(m.snapshot.Missing) > 0 {
		sections = append(sections, m.theme.StatusWarning.Render(
			"No grade recorded: "+strings.Join(m.snapshot.Missing, ", ")))
	}

	sections = append(sections, m.theme.Help.Render(m.help.View(m.keymap)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
