package main

import (
	"context"
	"fmt"
	"time"

	"github.com/lox/tilematch/internal/randutil"
	"github.com/lox/tilematch/internal/simulator"
)

// SimulateCmd plays levels with bots.
type SimulateCmd struct {
	Games   int           `short:"n" default:"100" help:"Games per level"`
	Bot     string        `enum:"random,memory" default:"memory" help:"Bot strategy"`
	Level   []int         `short:"l" help:"Levels to play (default: all)"`
	Seed    *int64        `help:"Deterministic seed (optional)"`
	Think   time.Duration `default:"500ms" help:"Virtual time a bot spends before each reveal"`
	Workers int           `short:"w" help:"Parallel games (default: GOMAXPROCS)"`
}

func (c *SimulateCmd) Run(ctx context.Context, g *Globals) error {
	logger := g.stderrLogger()

	catalog, err := g.Catalog()
	if err != nil {
		return err
	}
	_, seed := randutil.FromFlag(c.Seed)

	start := time.Now()
	stats, err := simulator.New(simulator.Config{
		Catalog: catalog,
		Levels:  c.Level,
		Games:   c.Games,
		Bot:     c.Bot,
		Seed:    seed,
		Think:   c.Think,
		Workers: c.Workers,
		Logger:  logger,
	}).Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		moves := []string{"-", "-", "-", "-", "-"}
		if s.Won > 0 {
			moves = []string{
				fmt.Sprintf("%.0f", s.Moves.Min()),
				fmt.Sprintf("%.1f", s.Moves.Mean()),
				fmt.Sprintf("%.1f", s.Moves.Median()),
				fmt.Sprintf("%.1f", s.Moves.Percentile(0.9)),
				fmt.Sprintf("%.0f", s.Moves.Max()),
			}
		}
		rows = append(rows, append([]string{
			fmt.Sprint(s.Level),
			s.Name,
			fmt.Sprint(s.Games),
			fmt.Sprintf("%.0f%%", s.WinRate()*100),
			fmt.Sprint(s.TimeUp),
			fmt.Sprint(s.OutMoves),
		}, moves...))
	}

	fmt.Printf("\n=== %s bot, seed %d ===\n", c.Bot, seed)
	fmt.Println(renderTable([]string{"Level", "Name", "Games", "Won", "Time up", "Out of moves", "Min", "Mean", "Median", "P90", "Max"}, rows))
	logger.Info("Simulation finished", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}
