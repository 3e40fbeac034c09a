package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		c := DefaultConfig()
		c.ServiceAccountPath = "/path/to/key.json"
		return c
	}

	tests := []struct {
		name   string
		errMsg string
		config func() Config
	}{
		{
			name:   "valid service account config",
			config: base,
		},
		{
			name: "valid oauth config",
			config: func() Config {
				c := DefaultConfig()
				c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "token"
				return c
			},
		},
		{
			name:   "missing auth",
			config: DefaultConfig,
			errMsg: "no authentication method configured",
		},
		{
			name: "partial oauth credentials",
			config: func() Config {
				c := DefaultConfig()
				c.ClientID, c.RefreshToken = "id", "token"
				return c
			},
			errMsg: "no authentication method configured",
		},
		{
			name: "multiple auth methods",
			config: func() Config {
				c := base()
				c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "token"
				return c
			},
			errMsg: "multiple authentication methods configured",
		},
		{
			name: "empty sheet title",
			config: func() Config {
				c := base()
				c.SheetTitle = ""
				return c
			},
			errMsg: "sheet title cannot be empty",
		},
		{
			name: "invalid batch size",
			config: func() Config {
				c := base()
				c.BatchSize = 0
				return c
			},
			errMsg: "batch size must be positive",
		},
		{
			name: "negative retry delay",
			config: func() Config {
				c := base()
				c.RetryDelay = -time.Second
				return c
			},
			errMsg: "retry delay cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config()
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "env-id")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "env-sheet")

	c := DefaultConfig()
	c.SpreadsheetID = "configured"
	c.LoadFromEnv()

	assert.Equal(t, "env-id", c.ClientID)
	assert.Equal(t, "configured", c.SpreadsheetID)
	assert.Equal(t, DefaultSpreadsheetName, c.SpreadsheetName)
}
