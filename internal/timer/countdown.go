// Package timer provides the question countdown shown on the player views.
package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// ErrInvalidDuration is returned for negative countdown lengths
var ErrInvalidDuration = errors.New("invalid timer duration")

var errExpired = errors.New("countdown expired")

// State is a point-in-time view of the countdown
type State struct {
	Duration  int  `json:"duration_seconds"`
	Remaining int  `json:"remaining_seconds"`
	Running   bool `json:"running"`
}

// Countdown counts whole seconds down to zero. It is safe for concurrent use.
type Countdown struct {
	mu        sync.Mutex
	clock     quartz.Clock
	logger    *log.Logger
	duration  int
	remaining int
	running   bool
	gen       int // identifies the ticker of the current run
	cancel    context.CancelFunc
	onChange  func(State)
}

// Option configures a Countdown
type Option func(*Countdown)

// WithOnChange registers a callback invoked after every automatic tick. It
// runs outside the countdown's lock.
func WithOnChange(fn func(State)) Option {
	return func(c *Countdown) { c.onChange = fn }
}

// New creates a stopped countdown at zero
func New(clock quartz.Clock, logger *log.Logger, opts ...Option) *Countdown {
	c := &Countdown{
		clock:  clock,
		logger: logger.WithPrefix("timer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current countdown state
func (c *Countdown) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Countdown) stateLocked() State {
	return State{Duration: c.duration, Remaining: c.remaining, Running: c.running}
}

// Set stops the countdown and loads a new length
func (c *Countdown) Set(seconds int) (State, error) {
	if seconds < 0 {
		return c.State(), fmt.Errorf("%w: %d", ErrInvalidDuration, seconds)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.duration = seconds
	c.remaining = seconds
	c.logger.Debug("Timer set", "seconds", seconds)
	return c.stateLocked(), nil
}

// Start begins ticking once per second. Starting an expired or running
// countdown does nothing.
func (c *Countdown) Start() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running || c.remaining == 0 {
		return c.stateLocked()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.running = true
	c.gen++
	gen := c.gen
	c.clock.TickerFunc(ctx, time.Second, func() error { return c.onTick(gen) }, "timer")
	c.logger.Debug("Timer started", "remaining", c.remaining)
	return c.stateLocked()
}

// Stop pauses the countdown, keeping the remaining time
func (c *Countdown) Stop() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	return c.stateLocked()
}

// Reset stops the countdown and restores the configured length
func (c *Countdown) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.remaining = c.duration
	return c.stateLocked()
}

// Tick takes one second off the countdown, never going below zero. Reaching
// zero stops it.
func (c *Countdown) Tick() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickLocked()
	return c.stateLocked()
}

func (c *Countdown) tickLocked() {
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 && c.running {
		c.stopLocked()
		c.logger.Info("Timer expired")
	}
}

func (c *Countdown) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.running = false
}

func (c *Countdown) onTick(gen int) error {
	c.mu.Lock()
	if !c.running || gen != c.gen {
		c.mu.Unlock()
		return errExpired
	}
	c.tickLocked()
	state := c.stateLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(state)
	}
	if !state.Running {
		return errExpired
	}
	return nil
}
