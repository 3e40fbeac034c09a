package tui

import (
	"context"

	"github.com/Veraticus/coursemix/internal/engine"
	"github.com/Veraticus/coursemix/internal/tui/themes"
)

// Loader fetches a fresh snapshot of the student's grades.
type Loader func(ctx context.Context) (*engine.Snapshot, error)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Loader   Loader
	Width    int
	Height   int
	ShowHelp bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Width:  80,
		Height: 24,
	}
}

// WithLoader sets the snapshot loader.
func WithLoader(loader Loader) Option {
	return func(c *Config) {
		c.Loader = loader
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithHelp starts the dashboard with the full key help expanded.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
