// Package display drives the four-digit serial displays that show the three
// player balances and the pot.
package display

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mduijf/mhmot/internal/game"
)

// DefaultBaudRate is used when no baud rate is configured
const DefaultBaudRate = 9600

// ErrNotConnected is returned when the display is enabled but no port is open
var ErrNotConnected = errors.New("serial port not connected")

// Config selects and enables the serial port
type Config struct {
	PortName   string `json:"port_name"`
	BaudRate   int    `json:"baud_rate"`
	Enabled    bool   `json:"enabled"`
	AutoUpdate bool   `json:"auto_update"` // refresh after every game change
}

// DefaultConfig returns a disabled configuration
func DefaultConfig() Config {
	return Config{BaudRate: DefaultBaudRate}
}

// Controller owns the serial connection. It has its own lock and never
// touches game state beyond the snapshots it is handed.
type Controller struct {
	mu     sync.Mutex
	opener Opener
	logger *log.Logger
	config Config
	port   Port
}

// NewController creates a disabled controller
func NewController(opener Opener, logger *log.Logger) *Controller {
	return &Controller{
		opener: opener,
		logger: logger.WithPrefix("display"),
		config: DefaultConfig(),
	}
}

// ListPorts returns the available serial ports
func (c *Controller) ListPorts() ([]string, error) {
	return c.opener.List()
}

// Configure closes any open port and, when enabled, opens the configured one.
// If opening fails the previous configuration is kept, without a port.
func (c *Controller) Configure(cfg Config) error {
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()

	if cfg.Enabled && cfg.PortName != "" {
		port, err := c.opener.Open(cfg.PortName, cfg.BaudRate)
		if err != nil {
			c.logger.Error("Failed to open display port", "port", cfg.PortName, "error", err)
			return err
		}
		c.port = port
		c.logger.Info("Display connected", "port", cfg.PortName, "baud", cfg.BaudRate)
	}

	c.config = cfg
	return nil
}

// Config returns the current configuration
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// Update shows three balances and the pot
func (c *Controller) Update(p1, p2, p3, pot int) error {
	return c.send(Message(p1, p2, p3, pot))
}

// UpdateFromSnapshot shows the first three players' balances and the pot.
// Missing players and a missing round show as zero.
func (c *Controller) UpdateFromSnapshot(snap *game.Snapshot) error {
	b := snap.Balances(3)
	return c.Update(b[0], b[1], b[2], snap.Pot())
}

// Test lights every display with a distinct pattern
func (c *Controller) Test() error {
	return c.Update(8888, 7777, 6666, 5555)
}

// Clear blanks every display
func (c *Controller) Clear() error {
	return c.send(blankMessage)
}

// send writes one framed message. A disabled display silently accepts it.
func (c *Controller) send(message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.config.Enabled {
		return nil
	}
	if c.port == nil {
		return ErrNotConnected
	}
	if _, err := c.port.Write(Frame(message)); err != nil {
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	c.logger.Debug("Display updated", "message", message)
	return nil
}

// Close releases the serial port
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Controller) closeLocked() error {
	if c.port == nil {
		return nil
	}
	err := c.port.Close()
	c.port = nil
	return err
}

// OnEvent refreshes the displays after game changes when auto update is on
func (c *Controller) OnEvent(event game.GameEvent) {
	changed, ok := event.(game.StateChangedEvent)
	if !ok || changed.Snapshot == nil {
		return
	}
	if !c.Config().AutoUpdate {
		return
	}
	if err := c.UpdateFromSnapshot(changed.Snapshot); err != nil {
		c.logger.Warn("Display refresh failed", "command", changed.Command, "error", err)
	}
}
