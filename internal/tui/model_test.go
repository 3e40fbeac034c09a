package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/coursemix/internal/engine"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/progress"
	"github.com/Veraticus/coursemix/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *engine.Snapshot {
	projected := model.TermKey{Year: 2027, Term: model.TermWinter}
	fall := model.TermKey{Year: 2023, Term: model.TermFall}
	winter := model.TermKey{Year: 2024, Term: model.TermWinter}

	return &engine.Snapshot{
		Summary: &progress.Summary{
			TermGPAs:          map[model.TermKey]float64{fall: 3.5, winter: 2.7},
			YearGPAs:          map[int]float64{2023: 3.5, 2024: 2.7},
			OverallGPA:        3.1,
			NumericalAverage:  78.4,
			CompletedCourses:  6,
			InProgressCourses: 2,
			TotalCourses:      8,
			RemainingCourses:  32,
			PercentComplete:   15,
			PercentInProgress: 5,
		},
		Projected:     &projected,
		Undecryptable: []string{"ECON 1P91"},
		Missing:       []string{"COSC 1P02"},
	}
}

func loadedModel(t *testing.T) Model {
	t.Helper()
	snap := sampleSnapshot()
	cfg := defaultConfig()
	cfg.Loader = func(context.Context) (*engine.Snapshot, error) { return snap, nil }

	m := newModel(context.Background(), cfg)
	msg := m.Init()()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestModel_LoadingView(t *testing.T) {
	m := newModel(context.Background(), defaultConfig())
	assert.Contains(t, m.View(), "Loading grades")
}

func TestModel_InitWithoutLoader(t *testing.T) {
	m := newModel(context.Background(), defaultConfig())
	msg := m.Init()()

	loaded, ok := msg.(snapshotLoadedMsg)
	require.True(t, ok)
	assert.Error(t, loaded.err)
}

func TestModel_RendersSnapshot(t *testing.T) {
	m := loadedModel(t)
	view := m.View()

	assert.Contains(t, view, "CourseMix Progress")
	assert.Contains(t, view, "15% complete (6 courses)")
	assert.Contains(t, view, "5% in progress (2 courses)")
	assert.Contains(t, view, "3.10 / 4.0")
	assert.Contains(t, view, "Winter 2027")
	assert.Contains(t, view, "Fall 2023")
	assert.Contains(t, view, "Could not decrypt: ECON 1P91")
	assert.Contains(t, view, "No grade recorded: COSC 1P02")
}

func TestModel_LoadError(t *testing.T) {
	m := newModel(context.Background(), defaultConfig())
	updated, _ := m.Update(snapshotLoadedMsg{err: errors.New("database locked")})

	assert.Contains(t, updated.View(), "Error: database locked")
}

func TestModel_TabTogglesTermsAndYears(t *testing.T) {
	m := loadedModel(t)
	assert.Equal(t, components.ModeTerms, m.gpaTable.Mode())
	require.Len(t, m.gpaTable.Rows(), 2)
	assert.Equal(t, "Winter 2024", m.gpaTable.Rows()[0][0])

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	assert.Equal(t, components.ModeYears, m.gpaTable.Mode())
	assert.Equal(t, "2024", m.gpaTable.Rows()[0][0])
	assert.Equal(t, "2.70", m.gpaTable.Rows()[0][1])

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, components.ModeTerms, updated.(Model).gpaTable.Mode())
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		name string
	}{
		{name: "q", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}},
		{name: "ctrl+c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadedModel(t)
			updated, cmd := m.Update(tt.msg)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.Quit(), cmd())
			assert.Empty(t, updated.View())
		})
	}
}

func TestModel_RefreshReloads(t *testing.T) {
	calls := 0
	cfg := defaultConfig()
	cfg.Loader = func(context.Context) (*engine.Snapshot, error) {
		calls++
		return sampleSnapshot(), nil
	}
	m := newModel(context.Background(), cfg)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	_ = cmd()
	assert.Equal(t, 1, calls)
}

func TestModel_HelpToggle(t *testing.T) {
	m := loadedModel(t)
	assert.False(t, m.help.ShowAll)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	assert.True(t, updated.(Model).help.ShowAll)
	assert.Contains(t, updated.View(), "force quit")
}

func TestRun_RequiresLoader(t *testing.T) {
	err := Run(context.Background())
	assert.Error(t, err)
}
