package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/tilematch/internal/level"
	"github.com/lox/tilematch/internal/server"
	"golang.org/x/sync/errgroup"
)

// ServeCmd runs the WebSocket play server.
type ServeCmd struct {
	Config string `short:"c" type:"path" default:"tilematch-server.hcl" help:"Path to HCL configuration file" env:"TILEMATCH_SERVER_CONFIG"`
	Addr   string `short:"a" help:"Server address to bind to (overrides config)"`
	Seed   *int64 `help:"Deterministic shuffle seed (optional)"`
	Watch  bool   `help:"Reload the level catalog when its file changes (overrides config)"`
}

func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Command line overrides
	if g.LevelsFile != "" {
		cfg.Levels.Path = g.LevelsFile
	}
	if c.Watch {
		cfg.Levels.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger := g.stderrLogger()
	if !g.Debug {
		if lvl, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
			logger.SetLevel(lvl)
		}
	}

	catalog := level.Default()
	if cfg.Levels.Path != "" {
		if catalog, err = level.Load(cfg.Levels.Path); err != nil {
			return err
		}
	}

	store, err := openStore(cfg.Scores.Kind, cfg.Scores.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	var opts []server.Option
	if c.Seed != nil {
		opts = append(opts, server.WithSeed(*c.Seed))
	}
	srv := server.NewServer(catalog, store, logger, opts...)

	logger.Info("Starting tilematch server",
		"addr", addr,
		"levels", catalog.Len(),
		"scores", cfg.Scores.Kind,
		"watch", cfg.Levels.Watch)

	g2, gctx := errgroup.WithContext(ctx)
	g2.Go(func() error {
		return srv.Serve(gctx, addr)
	})
	if cfg.Levels.Watch {
		g2.Go(func() error {
			return srv.Watch(gctx, cfg.Levels.Path)
		})
	}

	start := time.Now()
	err = g2.Wait()
	logger.Info("Server stopped", "uptime", time.Since(start).Round(time.Second))
	if ctx.Err() != nil {
		return nil
	}
	return err
}
