package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/mduijf/mhmot/internal/updater"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Serve       ServeCmd         `cmd:"" default:"withargs" help:"Run the quiz server"`
	Console     ConsoleCmd       `cmd:"" help:"Operate a running server from the terminal"`
	Ports       PortsCmd         `cmd:"" help:"List serial ports"`
	Display     DisplayCmd       `cmd:"" help:"Drive the serial displays directly"`
	CheckUpdate CheckUpdateCmd   `cmd:"check-update" help:"Check for a newer release"`
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("mhmot"),
		kong.Description("Quiz engine with betting rounds, live views and score displays"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":  version,
			"feed_url": updater.DefaultFeedURL,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
