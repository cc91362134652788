package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mhmot.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:3001", cfg.GetServerAddress())
	assert.Equal(t, "dist", cfg.Server.AssetsDir)
	assert.Equal(t, []string{"Player 1", "Player 2", "Player 3"}, cfg.Game.Players)
	assert.Equal(t, 750, cfg.Game.StartingBalance)
	require.NotNil(t, cfg.Game.FoldDeactivates)
	assert.True(t, *cfg.Game.FoldDeactivates)
	assert.Equal(t, 9600, cfg.Display.BaudRate)

	interval, err := cfg.UpdateInterval()
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, interval)
}

func TestLoadConfigPartialFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server {
  port         = 8080
  log_level    = "debug"
  history_file = "history.json"
}

game {
  players          = ["Anna", "Bram", "Cor"]
  fold_deactivates = false
}

display {
  port        = "/dev/ttyUSB0"
  enabled     = true
  auto_update = true
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddress())
	assert.Equal(t, "history.json", cfg.Server.HistoryFile)
	assert.Equal(t, []string{"Anna", "Bram", "Cor"}, cfg.Game.Players)
	assert.Equal(t, 750, cfg.Game.StartingBalance)
	assert.False(t, *cfg.Game.FoldDeactivates)

	dc := cfg.DisplayConfig()
	assert.Equal(t, "/dev/ttyUSB0", dc.PortName)
	assert.Equal(t, 9600, dc.BaudRate)
	assert.True(t, dc.Enabled)
	assert.True(t, dc.AutoUpdate)
}

func TestLoadConfigSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(writeConfig(t, `server { port = `))
	assert.ErrorContains(t, err, "failed to parse HCL file")

	_, err = LoadConfig(writeConfig(t, `server { colour = "blue" }`))
	assert.ErrorContains(t, err, "failed to decode HCL")
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "invalid port"},
		{"log level", func(c *Config) { c.Server.LogLevel = "chatty" }, "invalid log level"},
		{"empty player", func(c *Config) { c.Game.Players = []string{"A", " "} }, "player 2 has an empty name"},
		{"negative balance", func(c *Config) { c.Game.StartingBalance = -5 }, "must not be negative"},
		{"display without port", func(c *Config) { c.Display.Enabled = true }, "enabled without a port"},
		{"bad interval", func(c *Config) { c.Updater.Interval = "often" }, "invalid interval"},
		{"negative interval", func(c *Config) { c.Updater.Interval = "-1h" }, "negative interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestUpdateIntervalZeroDisables(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Updater.Interval = "0"
	interval, err := cfg.UpdateInterval()
	require.NoError(t, err)
	assert.Zero(t, interval)
}
