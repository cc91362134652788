package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mduijf/mhmot/internal/updater"
)

// CheckUpdateCmd checks the release feed once
type CheckUpdateCmd struct {
	FeedURL string        `env:"MHMOT_UPDATE_FEED" default:"${feed_url}" help:"Release feed URL"`
	Timeout time.Duration `default:"15s" help:"Request timeout"`
}

func (c *CheckUpdateCmd) Run() error {
	logger := newLogger("warn")
	checker := updater.NewChecker(version, logger, updater.WithFeedURL(c.FeedURL))

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	info, err := checker.Check(ctx)
	if err != nil {
		return err
	}
	if !info.Available {
		fmt.Printf("Up to date (%s)\n", info.CurrentVersion)
		return nil
	}
	fmt.Printf("Version %s is available (current %s)\n%s\n", info.LatestVersion, info.CurrentVersion, info.DownloadURL)
	if info.ReleaseNotes != "" {
		fmt.Printf("\n%s\n", info.ReleaseNotes)
	}
	return nil
}
