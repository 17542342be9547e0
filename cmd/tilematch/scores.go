package main

import (
	"context"
	"fmt"
)

// ScoresCmd inspects the best score store.
type ScoresCmd struct {
	Show  ScoresShowCmd  `cmd:"" default:"1" help:"Show best scores per level"`
	Reset ScoresResetCmd `cmd:"" help:"Forget every best score"`
}

type ScoresShowCmd struct{}

func (c *ScoresShowCmd) Run(ctx context.Context, g *Globals) error {
	catalog, err := g.Catalog()
	if err != nil {
		return err
	}
	store, err := g.Store()
	if err != nil {
		return err
	}
	defer store.Close()

	all, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to read scores: %w", err)
	}

	rows := make([][]string, 0, catalog.Len())
	for _, l := range catalog.Levels() {
		best := "-"
		if moves, ok := all[l.ID]; ok {
			best = fmt.Sprint(moves)
		}
		rows = append(rows, []string{fmt.Sprint(l.ID), l.Name, best})
	}
	fmt.Println(renderTable([]string{"Level", "Name", "Best"}, rows))
	return nil
}

type ScoresResetCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation"`
}

func (c *ScoresResetCmd) Run(ctx context.Context, g *Globals) error {
	if !c.Yes {
		path, err := g.ScoreLocation()
		if err != nil {
			return err
		}
		return fmt.Errorf("refusing to reset %s scores at %s without --yes", g.ScoreKind, path)
	}
	store, err := g.Store()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset scores: %w", err)
	}
	g.stderrLogger().Info("Best scores reset", "store", g.ScoreKind)
	return nil
}
