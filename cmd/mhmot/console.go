package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mduijf/mhmot/internal/console"
)

// ConsoleCmd opens the operator console against a running server
type ConsoleCmd struct {
	Server   string `short:"s" default:"http://localhost:3001" env:"MHMOT_SERVER" help:"Server URL"`
	LogLevel string `short:"l" default:"warn" env:"MHMOT_LOG_LEVEL" help:"Log level"`
}

func (c *ConsoleCmd) Run() error {
	logger := newLogger(c.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := console.NewClient(c.Server, logger)
	return console.Run(ctx, client, logger)
}
