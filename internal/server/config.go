package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/mduijf/mhmot/internal/display"
	"github.com/mduijf/mhmot/internal/game"
	"github.com/mduijf/mhmot/internal/updater"
)

// Config represents the complete configuration file
type Config struct {
	Server  ServerSettings  `hcl:"server,block"`
	Game    GameSettings    `hcl:"game,block"`
	Display DisplaySettings `hcl:"display,block"`
	Updater UpdaterSettings `hcl:"updater,block"`
}

// ServerSettings contains HTTP server configuration
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	AssetsDir   string `hcl:"assets_dir,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	PublicURL   string `hcl:"public_url,optional"`   // base URL printed in join codes
	HistoryFile string `hcl:"history_file,optional"` // empty disables the export
}

// GameSettings configures new games
type GameSettings struct {
	Players         []string `hcl:"players,optional"`
	StartingBalance int      `hcl:"starting_balance,optional"`
	FoldDeactivates *bool    `hcl:"fold_deactivates,optional"`
}

// DisplaySettings configures the serial displays
type DisplaySettings struct {
	Port       string `hcl:"port,optional"`
	BaudRate   int    `hcl:"baud_rate,optional"`
	Enabled    bool   `hcl:"enabled,optional"`
	AutoUpdate bool   `hcl:"auto_update,optional"`
}

// UpdaterSettings configures the periodic update check
type UpdaterSettings struct {
	FeedURL  string `hcl:"feed_url,optional"`
	Interval string `hcl:"interval,optional"` // Go duration, "0" disables periodic checks
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	// every block is optional in the file
	var raw struct {
		Server  *ServerSettings  `hcl:"server,block"`
		Game    *GameSettings    `hcl:"game,block"`
		Display *DisplaySettings `hcl:"display,block"`
		Updater *UpdaterSettings `hcl:"updater,block"`
	}
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	var config Config
	if raw.Server != nil {
		config.Server = *raw.Server
	}
	if raw.Game != nil {
		config.Game = *raw.Game
	}
	if raw.Display != nil {
		config.Display = *raw.Display
	}
	if raw.Updater != nil {
		config.Updater = *raw.Updater
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if c.Server.AssetsDir == "" {
		c.Server.AssetsDir = "dist"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if len(c.Game.Players) == 0 {
		c.Game.Players = []string{"Player 1", "Player 2", "Player 3"}
	}
	if c.Game.StartingBalance == 0 {
		c.Game.StartingBalance = game.StartingBalance
	}
	if c.Game.FoldDeactivates == nil {
		deactivate := true
		c.Game.FoldDeactivates = &deactivate
	}

	if c.Display.BaudRate == 0 {
		c.Display.BaudRate = display.DefaultBaudRate
	}

	if c.Updater.FeedURL == "" {
		c.Updater.FeedURL = updater.DefaultFeedURL
	}
	if c.Updater.Interval == "" {
		c.Updater.Interval = "6h"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch strings.ToLower(c.Server.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	for i, name := range c.Game.Players {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("game: player %d has an empty name", i+1)
		}
	}
	if c.Game.StartingBalance < 0 {
		return fmt.Errorf("game: starting balance must not be negative")
	}

	if c.Display.Enabled && c.Display.Port == "" {
		return fmt.Errorf("display: enabled without a port")
	}
	if c.Display.BaudRate < 0 {
		return fmt.Errorf("display: invalid baud rate %d", c.Display.BaudRate)
	}

	if _, err := c.UpdateInterval(); err != nil {
		return err
	}

	return nil
}

// GetServerAddress returns the listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// UpdateInterval parses the update check interval. Zero disables periodic
// checks.
func (c *Config) UpdateInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Updater.Interval)
	if err != nil {
		return 0, fmt.Errorf("updater: invalid interval %q: %w", c.Updater.Interval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("updater: negative interval %s", d)
	}
	return d, nil
}

// DisplayConfig converts the display block for the controller
func (c *Config) DisplayConfig() display.Config {
	return display.Config{
		PortName:   c.Display.Port,
		BaudRate:   c.Display.BaudRate,
		Enabled:    c.Display.Enabled,
		AutoUpdate: c.Display.AutoUpdate,
	}
}
