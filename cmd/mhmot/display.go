package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/mduijf/mhmot/internal/display"
)

// PortsCmd lists the serial ports the displays can be attached to
type PortsCmd struct{}

func (c *PortsCmd) Run() error {
	ports, err := display.SerialOpener{}.List()
	if err != nil {
		return fmt.Errorf("failed to list serial ports: %w", err)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}
	for _, port := range ports {
		fmt.Println(port)
	}
	return nil
}

// DisplayCmd talks to the displays without a running server
type DisplayCmd struct {
	Port     string `short:"p" required:"" env:"MHMOT_DISPLAY_PORT" help:"Serial port of the displays"`
	BaudRate int    `short:"b" env:"MHMOT_DISPLAY_BAUD" help:"Baud rate"`
	LogLevel string `short:"l" default:"info" env:"MHMOT_LOG_LEVEL" help:"Log level"`

	Test  DisplayTestCmd  `cmd:"" help:"Show the test pattern"`
	Clear DisplayClearCmd `cmd:"" help:"Blank all displays"`
	Show  DisplayShowCmd  `cmd:"" help:"Show four values (player 1-3 and pot)"`
}

// AfterApply makes the parent flags available to the subcommands
func (c *DisplayCmd) AfterApply(ctx *kong.Context) error {
	ctx.Bind(c)
	return nil
}

func (c *DisplayCmd) open() (*display.Controller, error) {
	controller := display.NewController(display.SerialOpener{}, newLogger(c.LogLevel))
	err := controller.Configure(display.Config{
		PortName: c.Port,
		BaudRate: c.BaudRate,
		Enabled:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", c.Port, err)
	}
	return controller, nil
}

type DisplayTestCmd struct{}

func (c *DisplayTestCmd) Run(parent *DisplayCmd) error {
	controller, err := parent.open()
	if err != nil {
		return err
	}
	defer func() { _ = controller.Close() }()
	return controller.Test()
}

type DisplayClearCmd struct{}

func (c *DisplayClearCmd) Run(parent *DisplayCmd) error {
	controller, err := parent.open()
	if err != nil {
		return err
	}
	defer func() { _ = controller.Close() }()
	return controller.Clear()
}

type DisplayShowCmd struct {
	Values []int `arg:"" help:"Player 1, player 2, player 3 and pot"`
}

func (c *DisplayShowCmd) Run(parent *DisplayCmd) error {
	if len(c.Values) != 4 {
		return fmt.Errorf("expected 4 values, got %d", len(c.Values))
	}
	controller, err := parent.open()
	if err != nil {
		return err
	}
	defer func() { _ = controller.Close() }()
	return controller.Update(c.Values[0], c.Values[1], c.Values[2], c.Values[3])
}
