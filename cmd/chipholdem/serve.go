package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/lox/chipholdem/internal/room"
	"github.com/lox/chipholdem/internal/server"
	"github.com/lox/chipholdem/internal/store"
)

type ServeCmd struct {
	Config    string `short:"c" default:"chipholdem.hcl" help:"Path to HCL configuration file"`
	Addr      string `short:"a" help:"Address to bind to as host:port (overrides config)"`
	LogLevel  string `short:"l" help:"Log level (overrides config)"`
	Store     string `help:"Snapshot store: memory, file or sqlite (overrides config)"`
	StorePath string `help:"Snapshot directory or database file (overrides config)"`
}

// config loads the HCL file and applies command line overrides.
func (c *ServeCmd) config() (*server.Config, error) {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return nil, err
	}

	if c.Addr != "" {
		host, port, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return nil, fmt.Errorf("invalid --addr: %w", err)
		}
		cfg.Server.Address = host
		if cfg.Server.Port, err = strconv.Atoi(port); err != nil {
			return nil, fmt.Errorf("invalid --addr port %q", port)
		}
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Store != "" && c.Store != cfg.Storage.Kind {
		cfg.Storage.Kind = c.Store
		cfg.Storage.Path = server.DefaultStoragePath(c.Store)
	}
	if c.StorePath != "" {
		cfg.Storage.Path = c.StorePath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *ServeCmd) Run() error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Storage.Kind, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	manager := room.NewManager(st, logger, room.WithIdleTimeout(cfg.Rooms.IdleTimeoutDuration()))
	srv := server.NewServer(manager, logger, server.WithDefaults(cfg.Rooms.Settings()))

	logger.Info("Starting chipholdem",
		"addr", cfg.Address(),
		"store", cfg.Storage.Kind,
		"path", cfg.Storage.Path,
		"version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.Address())
	})
	g.Go(func() error {
		return manager.Run(ctx, cfg.Rooms.ReapIntervalDuration())
	})

	err = g.Wait()
	logger.Info("Shutting down")
	if closeErr := manager.Close(); err == nil {
		err = closeErr
	}
	return err
}
