package console

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// Run starts the console against a server and blocks until the operator
// quits or ctx is cancelled.
func Run(ctx context.Context, client *Client, logger *log.Logger) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, err := client.Watch(watchCtx)
	if err != nil {
		// The command API still works without live updates.
		logger.Warn("Live updates unavailable", "error", err)
		updates = nil
	}

	model := NewModel(client, updates, logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("console failed: %w", err)
	}
	return nil
}
