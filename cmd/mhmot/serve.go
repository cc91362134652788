package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/mduijf/mhmot/internal/display"
	"github.com/mduijf/mhmot/internal/game"
	"github.com/mduijf/mhmot/internal/server"
	"github.com/mduijf/mhmot/internal/timer"
	"github.com/mduijf/mhmot/internal/updater"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// ServeCmd runs the HTTP server, the views' websocket and the displays
type ServeCmd struct {
	Config   string `short:"c" default:"mhmot.hcl" env:"MHMOT_CONFIG" help:"Path to HCL configuration file"`
	Addr     string `short:"a" env:"MHMOT_ADDR" help:"Address to bind to (overrides config)"`
	Port     int    `short:"p" env:"MHMOT_PORT" help:"Port to listen on (overrides config)"`
	LogLevel string `short:"l" env:"MHMOT_LOG_LEVEL" help:"Log level (overrides config)"`
	Assets   string `env:"MHMOT_ASSETS" help:"Directory with the built views (overrides config)"`
	NoStart  bool   `help:"Do not start a game on boot"`
	NoQR     bool   `name:"no-qr" help:"Do not print join codes for the views"`
}

func (c *ServeCmd) loadConfig() (*server.Config, error) {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return nil, err
	}

	// Apply command line overrides
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Assets != "" {
		cfg.Server.AssetsDir = c.Assets
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *ServeCmd) Run() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Server.LogLevel)
	interval, _ := cfg.UpdateInterval()

	logger.Info("Starting MHMOT server",
		"version", version,
		"addr", cfg.GetServerAddress(),
		"players", len(cfg.Game.Players),
		"assets", cfg.Server.AssetsDir,
		"display", cfg.Display.Port)

	bus := game.NewEventBus()
	service := server.NewGameService(cfg.Game, bus, logger)

	var hub *server.Hub
	countdown := timer.New(quartz.NewReal(), logger, timer.WithOnChange(func(state timer.State) {
		hub.BroadcastTimer(state)
	}))
	hub = server.NewHub(service, countdown, logger)
	bus.Subscribe(hub)

	controller := display.NewController(display.SerialOpener{}, logger)
	if err := controller.Configure(cfg.DisplayConfig()); err != nil {
		logger.Warn("Displays unavailable, continuing without them", "error", err)
	}
	defer func() { _ = controller.Close() }()
	bus.Subscribe(controller)

	if cfg.Server.HistoryFile != "" {
		bus.Subscribe(server.NewHistoryExporter(cfg.Server.HistoryFile, logger))
		logger.Info("Exporting round history", "file", cfg.Server.HistoryFile)
	}

	checker := updater.NewChecker(version, logger, updater.WithFeedURL(cfg.Updater.FeedURL))
	apiOpts := []server.APIOption{
		server.WithHub(hub),
		server.WithTimer(countdown),
		server.WithDisplay(controller),
		server.WithUpdateChecker(checker),
	}

	var scheduler *updater.Scheduler
	if interval > 0 && version != "dev" {
		scheduler, err = updater.NewScheduler(checker, "@every "+interval.String(), hub.BroadcastUpdate)
		if err != nil {
			return err
		}
		apiOpts = append(apiOpts, server.WithUpdateStatus(scheduler))
	}

	api := server.NewAPI(service, cfg.Server, logger, apiOpts...)

	if !c.NoStart {
		if _, err := service.StartGame(nil); err != nil {
			return fmt.Errorf("failed to start game: %w", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if scheduler != nil {
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	printJoinCodes(cfg.Server, !c.NoQR, logger)

	return g.Wait()
}

// printJoinCodes prints the address of every view, with a QR code to scan
// from the player tablets
func printJoinCodes(settings server.ServerSettings, withQR bool, logger *log.Logger) {
	base := server.BaseURL(settings)
	for _, view := range server.Views {
		url := server.ViewURL(base, view)
		fmt.Printf("%-8s %s\n", view, url)
		if !withQR || view == "fill" || view == "key" {
			continue
		}
		code, err := server.QRCodeTerminal(url)
		if err != nil {
			logger.Warn("Failed to render QR code", "view", view, "error", err)
			continue
		}
		fmt.Println(code)
	}
}
