// Package session plays a sequence of levels on one board engine at a time.
//
// A Session owns the engine, the level countdown and the best-score
// bookkeeping for a single player. Like the engine it drives, it is not safe
// for concurrent use: every method and every observer callback runs on the
// scheduler's executor.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lox/tilematch/internal/board"
	"github.com/lox/tilematch/internal/layout"
	"github.com/lox/tilematch/internal/level"
	"github.com/lox/tilematch/internal/sched"
	"github.com/lox/tilematch/internal/score"
	"github.com/lox/tilematch/internal/timer"
)

var (
	// ErrNoLevel is returned when an operation needs a loaded level.
	ErrNoLevel = errors.New("no level loaded")
	// ErrNoMoreLevels is returned by Next after the last level.
	ErrNoMoreLevels = errors.New("no more levels")
)

// DefaultBox is the area boards are laid out in when no box is configured.
var DefaultBox = layout.Box{Width: 900, Height: 800}

const storeTimeout = 5 * time.Second

// Status is how a level ended.
type Status string

const (
	StatusWon  Status = "won"
	StatusLost Status = "lost"
)

// LossReason says why a level was lost.
type LossReason string

const (
	LossTimeUp    LossReason = "time_up"
	LossMoveLimit LossReason = "move_limit"
)

// Outcome is reported once per level attempt.
type Outcome struct {
	Level     int        `json:"level"`
	Status    Status     `json:"status"`
	Reason    LossReason `json:"reason,omitempty"`
	Moves     int        `json:"moves"`
	Best      int        `json:"best"`
	HadBest   bool       `json:"had_best"`
	NewRecord bool       `json:"new_record"`
	TimeUsed  int        `json:"time_used"`
}

// Observer receives session events. See NopObserver.
type Observer interface {
	// BoardChanged is called whenever a card turns or a level loads.
	BoardChanged(Snapshot)
	// Moved is called when a pair is revealed, with the new move count.
	Moved(moves int)
	// Matched is called when a pair settles as matched.
	Matched(remainingPairs int)
	// Ticked is called every second of a timed level.
	Ticked(secondsLeft int)
	// Finished is called once when a level is won or lost.
	Finished(Outcome)
}

// NopObserver ignores every event. Embed it to implement only some methods.
type NopObserver struct{}

func (NopObserver) BoardChanged(Snapshot) {}
func (NopObserver) Moved(int)             {}
func (NopObserver) Matched(int)           {}
func (NopObserver) Ticked(int)            {}
func (NopObserver) Finished(Outcome)      {}

// Option configures a Session.
type Option func(*Session)

// WithBox sets the area boards are laid out in.
func WithBox(box layout.Box) Option {
	return func(s *Session) { s.box = box }
}

// WithBoardOptions passes extra options to every board the session builds.
// The session always sets its own listener, move limit and logger.
func WithBoardOptions(opts ...board.Option) Option {
	return func(s *Session) { s.boardOpts = append(s.boardOpts, opts...) }
}

// Session plays levels from a catalog.
type Session struct {
	id       string
	catalog  *level.Catalog
	store    score.Store
	sched    sched.Scheduler
	rng      *rand.Rand
	logger   *log.Logger
	observer Observer

	box       layout.Box
	boardOpts []board.Option

	level     level.Level
	engine    *board.Engine
	countdown *timer.Countdown
	best      int
	hadBest   bool
	finished  *Outcome
	final     []board.Card
}

// New creates a session with no level loaded. A nil store keeps scores in
// memory, a nil logger discards logs and a nil observer ignores events.
func New(catalog *level.Catalog, store score.Store, scheduler sched.Scheduler, rng *rand.Rand, logger *log.Logger, observer Observer, opts ...Option) *Session {
	if catalog == nil {
		panic("catalog is required")
	}
	if scheduler == nil {
		panic("scheduler is required")
	}
	if rng == nil {
		panic("rng is required")
	}
	if store == nil {
		store = score.NewMemory()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if observer == nil {
		observer = NopObserver{}
	}

	id := uuid.NewString()
	s := &Session{
		id:       id,
		catalog:  catalog,
		store:    store,
		sched:    scheduler,
		rng:      rng,
		logger:   logger.WithPrefix("session").With("session", id[:8]),
		observer: observer,
		box:      DefaultBox,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.countdown = timer.New(scheduler)
	s.countdown.OnTick = s.observer.Ticked
	s.countdown.OnTimeUp = func() { s.lose(LossTimeUp) }
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Catalog returns the catalog levels are loaded from.
func (s *Session) Catalog() *level.Catalog { return s.catalog }

// SetCatalog replaces the catalog. The current board is unaffected until the
// next Load.
func (s *Session) SetCatalog(c *level.Catalog) {
	s.catalog = c
}

// Load builds a fresh board for level id, replacing any current board.
func (s *Session) Load(ctx context.Context, id int) error {
	lvl, err := s.catalog.Get(id)
	if err != nil {
		return err
	}

	labels := make([]board.Label, len(lvl.Labels))
	for i, l := range lvl.Labels {
		labels[i] = board.Label(l)
	}
	if len(labels) == 0 {
		labels = board.RandomColors(lvl.Pairs(), s.rng)
	}

	opts := append([]board.Option{}, s.boardOpts...)
	opts = append(opts,
		board.WithListener(s.listener()),
		board.WithMoveLimit(lvl.MaxMoves),
		board.WithLogger(s.logger),
	)

	engine, err := board.Build(board.Config{Shape: lvl.Shape, Box: s.box, Labels: labels}, s.rng, s.sched, opts...)
	if err != nil {
		return fmt.Errorf("failed to build level %d: %w", id, err)
	}

	best, hadBest, err := s.store.Best(ctx, id)
	if err != nil {
		engine.Destroy()
		return fmt.Errorf("failed to read best for level %d: %w", id, err)
	}

	s.teardown()
	s.level = lvl
	s.engine = engine
	s.best, s.hadBest = best, hadBest
	s.finished = nil
	s.final = nil

	s.countdown.ResetUsed()
	if lvl.Timed() {
		s.countdown.Start(lvl.Time)
	}

	s.logger.Info("Level loaded", "level", lvl.ID, "cards", engine.Len(), "time", lvl.Time, "max_moves", lvl.MaxMoves)
	s.observer.BoardChanged(s.Snapshot())
	return nil
}

// Restart reloads the current level.
func (s *Session) Restart(ctx context.Context) error {
	if s.engine == nil {
		return ErrNoLevel
	}
	return s.Load(ctx, s.level.ID)
}

// Next loads the level after the current one, or the first level if none
// is loaded.
func (s *Session) Next(ctx context.Context) error {
	if s.engine == nil {
		first, ok := s.catalog.First()
		if !ok {
			return ErrNoMoreLevels
		}
		return s.Load(ctx, first.ID)
	}
	next, ok := s.catalog.Next(s.level.ID)
	if !ok {
		return ErrNoMoreLevels
	}
	return s.Load(ctx, next.ID)
}

// Reveal turns a card face up. It reports false when the reveal was ignored.
func (s *Session) Reveal(id int) bool {
	if s.engine == nil || s.finished != nil {
		return false
	}
	if !s.engine.Reveal(id) {
		return false
	}
	s.observer.BoardChanged(s.Snapshot())
	return true
}

// Hint returns a face-down pair that matches.
func (s *Session) Hint() (a, b int, ok bool) {
	if s.engine == nil || s.finished != nil {
		return 0, 0, false
	}
	return s.engine.Hint()
}

// AddTime extends the countdown of a running timed level. It reports false
// when there is no countdown to extend.
func (s *Session) AddTime(seconds int) bool {
	if s.engine == nil || s.finished != nil || seconds <= 0 || !s.countdown.Running() {
		return false
	}
	s.countdown.AddTime(seconds)
	s.logger.Debug("Time added", "level", s.level.ID, "seconds", seconds, "left", s.countdown.Remaining())
	s.observer.Ticked(s.countdown.Remaining())
	return true
}

// Close releases the current board and stops the countdown.
func (s *Session) Close() {
	s.teardown()
	s.engine = nil
}

func (s *Session) teardown() {
	s.countdown.Stop()
	if s.engine != nil {
		s.engine.Destroy()
	}
}

func (s *Session) listener() board.Listener {
	return board.Listener{
		OnMove: s.observer.Moved,
		OnMatch: func() {
			s.observer.Matched(s.engine.RemainingPairs())
			s.observer.BoardChanged(s.Snapshot())
		},
		OnMismatch: func() {
			s.observer.BoardChanged(s.Snapshot())
		},
		OnWin:          s.win,
		OnLimitReached: func(int) { s.lose(LossMoveLimit) },
	}
}

func (s *Session) win(moves int) {
	s.countdown.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	out := Outcome{
		Level:    s.level.ID,
		Status:   StatusWon,
		Moves:    moves,
		Best:     moves,
		HadBest:  s.hadBest,
		TimeUsed: s.countdown.Used(),
	}
	res, err := score.Record(ctx, s.store, s.level.ID, moves)
	if err != nil {
		s.logger.Error("Failed to record score", "level", s.level.ID, "error", err)
		if s.hadBest {
			out.Best = min(s.best, moves)
		}
	} else {
		out.Best = res.Best
		out.NewRecord = res.NewRecord
		s.best, s.hadBest = res.Best, true
	}

	s.finish(out)
}

func (s *Session) lose(reason LossReason) {
	if s.engine == nil || s.finished != nil {
		return
	}
	s.countdown.Stop()
	moves := s.engine.Moves()
	s.final = s.engine.Cards()
	s.engine.Destroy()

	s.finish(Outcome{
		Level:    s.level.ID,
		Status:   StatusLost,
		Reason:   reason,
		Moves:    moves,
		Best:     s.best,
		HadBest:  s.hadBest,
		TimeUsed: s.countdown.Used(),
	})
}

func (s *Session) finish(out Outcome) {
	s.finished = &out
	s.logger.Info("Level finished", "level", out.Level, "status", out.Status, "reason", out.Reason,
		"moves", out.Moves, "best", out.Best, "new_record", out.NewRecord)
	s.observer.Finished(out)
}
