package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lox/tilematch/internal/randutil"
	"github.com/lox/tilematch/internal/tui"
)

// PlayCmd plays in the terminal.
type PlayCmd struct {
	Level   int    `short:"l" help:"Level to start on (default: first)"`
	Seed    *int64 `help:"Deterministic shuffle seed (optional)"`
	LogFile string `type:"path" help:"Write logs to this file; the board owns the terminal"`
}

func (c *PlayCmd) Run(ctx context.Context, g *Globals) error {
	var w io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger := g.Logger(w)

	catalog, err := g.Catalog()
	if err != nil {
		return err
	}
	store, err := g.Store()
	if err != nil {
		return err
	}
	defer store.Close()

	rng, seed := randutil.FromFlag(c.Seed)
	logger.Info("Starting game", "seed", seed, "levels", catalog.Len(), "scores", g.ScoreKind)

	return tui.Run(ctx, tui.Config{
		Catalog: catalog,
		Store:   store,
		Rand:    rng,
		Logger:  logger,
		Level:   c.Level,
	})
}
