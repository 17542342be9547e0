// Package simulator plays levels with bots on virtual time to measure how
// hard each level is.
package simulator

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/tilematch/internal/board"
	"github.com/lox/tilematch/internal/level"
	"github.com/lox/tilematch/internal/randutil"
	"github.com/lox/tilematch/internal/sched"
	"github.com/lox/tilematch/internal/score"
	"github.com/lox/tilematch/internal/session"
	"github.com/lox/tilematch/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// DefaultThink is how much virtual time a bot spends before each reveal.
const DefaultThink = 500 * time.Millisecond

// Config holds configuration for running simulations
type Config struct {
	Catalog *level.Catalog
	Levels  []int // empty means every level in the catalog
	Games   int   // games per level
	Bot     string
	Seed    int64
	Think   time.Duration
	Workers int
	Logger  *log.Logger
}

// LevelStats summarises the games played on one level. Moves only counts
// won games.
type LevelStats struct {
	Level    int
	Name     string
	Games    int
	Won      int
	TimeUp   int
	OutMoves int
	Moves    statistics.Statistics
}

// WinRate returns the fraction of games won.
func (s LevelStats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Won) / float64(s.Games)
}

func (s *LevelStats) add(r gameResult) {
	s.Games++
	switch {
	case r.outcome.Status == session.StatusWon:
		s.Won++
		s.Moves.Add(float64(r.outcome.Moves))
	case r.outcome.Reason == session.LossTimeUp:
		s.TimeUp++
	default:
		s.OutMoves++
	}
}

type gameResult struct {
	level   int
	outcome session.Outcome
}

// Simulator runs games across levels
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Catalog == nil {
		config.Catalog = level.Default()
	}
	if config.Games <= 0 {
		config.Games = 1
	}
	if config.Think <= 0 {
		config.Think = DefaultThink
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Simulator{config: config}
}

// Run plays every game and returns per-level statistics in catalog order.
func (s *Simulator) Run(ctx context.Context) ([]LevelStats, error) {
	levels, err := s.levels()
	if err != nil {
		return nil, err
	}
	if _, err := NewBot(s.config.Bot, randutil.New(0)); err != nil {
		return nil, err
	}

	logger := s.config.Logger.WithPrefix("simulator")
	logger.Info("Starting simulation", "levels", len(levels), "games", s.config.Games, "bot", s.config.Bot, "seed", s.config.Seed)

	stats := make([]LevelStats, len(levels))
	index := make(map[int]int, len(levels))
	for i, l := range levels {
		stats[i] = LevelStats{Level: l.ID, Name: l.Name}
		index[l.ID] = i
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	game := 0
	for _, l := range levels {
		for range s.config.Games {
			seed := randutil.Derive(s.config.Seed, game)
			id := l.ID
			game++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				r, err := s.playGame(gctx, id, seed)
				if err != nil {
					return fmt.Errorf("level %d (seed %d): %w", id, seed, err)
				}
				mu.Lock()
				stats[index[id]].add(r)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("Simulation complete", "games", game)
	return stats, nil
}

func (s *Simulator) levels() ([]level.Level, error) {
	if len(s.config.Levels) == 0 {
		return s.config.Catalog.Levels(), nil
	}
	out := make([]level.Level, 0, len(s.config.Levels))
	for _, id := range s.config.Levels {
		l, err := s.config.Catalog.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// recorder captures the end of a game.
type recorder struct {
	session.NopObserver
	outcome *session.Outcome
}

func (r *recorder) Finished(out session.Outcome) {
	r.outcome = &out
}

// playGame plays one level to completion on a manual scheduler.
func (s *Simulator) playGame(ctx context.Context, id int, seed int64) (gameResult, error) {
	rng := randutil.New(seed)
	bot, err := NewBot(s.config.Bot, rng)
	if err != nil {
		return gameResult{}, err
	}

	clock := sched.NewManual()
	rec := &recorder{}
	sess := session.New(s.config.Catalog, score.NewMemory(), clock, rng, s.config.Logger, rec)
	defer sess.Close()

	if err := sess.Load(ctx, id); err != nil {
		return gameResult{}, err
	}

	cards := len(sess.Snapshot().Cards)
	// A bot that never repeats a mistake needs well under cards² reveals.
	limit := max(cards*cards*4, 64)
	for reveals := 0; rec.outcome == nil; reveals++ {
		if reveals > limit {
			return gameResult{}, fmt.Errorf("no result after %d reveals", reveals)
		}
		if reveals%64 == 0 {
			if err := ctx.Err(); err != nil {
				return gameResult{}, err
			}
		}

		clock.Advance(s.config.Think)
		if rec.outcome != nil {
			break
		}

		snap := sess.Snapshot()
		pick := bot.Choose(snap.Cards)
		if !sess.Reveal(pick) {
			return gameResult{}, fmt.Errorf("bot picked unrevealable card %d in phase %s", pick, snap.Phase)
		}

		snap = sess.Snapshot()
		bot.Observe(snap.Cards)
		if snap.Phase == board.PhaseResolving {
			clock.Advance(max(board.DefaultMatchDelay, board.DefaultMismatchDelay))
		}
	}

	return gameResult{level: id, outcome: *rec.outcome}, nil
}

// Format renders statistics as plain text rows.
func Format(stats []LevelStats) string {
	var out string
	for _, s := range stats {
		moves := "-"
		if s.Won > 0 {
			moves = fmt.Sprintf("%.0f/%.1f/%.0f", s.Moves.Min(), s.Moves.Mean(), s.Moves.Max())
		}
		out += fmt.Sprintf("level %d: %d games, %.0f%% won, moves min/avg/max %s\n",
			s.Level, s.Games, math.Round(s.WinRate()*100), moves)
	}
	return out
}
