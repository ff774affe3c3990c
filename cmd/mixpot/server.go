package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/mixpot/mixpot/internal/server"
)

// ServerCmd runs the room server.
type ServerCmd struct {
	Config string `short:"c" default:"mixpot.hcl" help:"Path to HCL configuration file"`
	Addr   string `help:"Listen address override (host:port)"`
	Debug  bool   `help:"Enable debug logging"`
}

func (cmd *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(cmd.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "mixpot",
	})
	switch {
	case cmd.Debug:
		logger.SetLevel(log.DebugLevel)
	case cfg.Server.LogLevel != "":
		if lvl, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
			logger.SetLevel(lvl)
		}
	}

	srv := server.New(logger)

	presets, err := cfg.PresetConfigs()
	if err != nil {
		return err
	}
	if err := srv.Rooms().SeedPresets(presets); err != nil {
		return err
	}

	addr := cfg.Addr()
	if cmd.Addr != "" {
		addr = cmd.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx, addr)
}
