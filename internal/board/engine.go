package board

import (
	"context"
	rand "math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/looplab/fsm"
	"github.com/lox/tilematch/internal/layout"
	"github.com/lox/tilematch/internal/sched"
)

// Phase is the engine's position in the reveal cycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseOnePicked Phase = "one_picked"
	PhaseResolving Phase = "resolving"
	PhaseWon       Phase = "won"
	PhaseDestroyed Phase = "destroyed"
)

const (
	eventPick    = "pick"
	eventPair    = "pair"
	eventSettle  = "settle"
	eventWin     = "win"
	eventDestroy = "destroy"
)

func newPhaseMachine() *fsm.FSM {
	return fsm.NewFSM(
		string(PhaseIdle),
		fsm.Events{
			{Name: eventPick, Src: []string{string(PhaseIdle)}, Dst: string(PhaseOnePicked)},
			{Name: eventPair, Src: []string{string(PhaseOnePicked)}, Dst: string(PhaseResolving)},
			{Name: eventSettle, Src: []string{string(PhaseResolving)}, Dst: string(PhaseIdle)},
			{Name: eventWin, Src: []string{string(PhaseResolving)}, Dst: string(PhaseWon)},
			{Name: eventDestroy, Src: []string{
				string(PhaseIdle),
				string(PhaseOnePicked),
				string(PhaseResolving),
				string(PhaseWon),
			}, Dst: string(PhaseDestroyed)},
		},
		fsm.Callbacks{},
	)
}

// Config describes the board to build.
type Config struct {
	Shape  layout.Mask
	Box    layout.Box
	Labels []Label
}

// Engine owns the cards of one board and the reveal state machine.
//
// An Engine is not safe for concurrent use. Reveal, the continuations it
// schedules, and every read must happen on the scheduler's executor.
type Engine struct {
	cards     []Card
	selection []int
	moves     int
	grid      layout.Grid

	phase   *fsm.FSM
	sched   sched.Scheduler
	pending sched.Task

	listener      Listener
	matchDelay    time.Duration
	mismatchDelay time.Duration
	moveLimit     int
	limitReported bool

	logger *log.Logger
}

// Build lays out cfg.Shape, assigns pair labels and creates the cards. It
// returns a *ConfigurationError if the shape has an odd number of active
// cells, the label pool cannot cover every pair, or an option is invalid.
//
// The rng and scheduler are required.
func Build(cfg Config, rng *rand.Rand, scheduler sched.Scheduler, opts ...Option) (*Engine, error) {
	if rng == nil {
		panic("rng is required to build a board")
	}
	if scheduler == nil {
		panic("scheduler is required to build a board")
	}

	ec := defaultEngineConfig()
	for _, opt := range opts {
		opt(ec)
	}
	if err := ec.validate(); err != nil {
		return nil, err
	}

	count := cfg.Shape.Count()
	if count%2 != 0 {
		return nil, configErrorf(ReasonOddCells, "shape has %d active cells, need an even number", count)
	}

	labels, err := AssignPairs(count/2, cfg.Labels, rng)
	if err != nil {
		return nil, err
	}

	grid := layout.Compute(cfg.Shape, cfg.Box, layout.Options{
		Padding: ec.padding,
		Margin:  ec.margin,
		Square:  ec.square,
	})

	cards := make([]Card, len(grid.Placements))
	for i, p := range grid.Placements {
		cards[i] = Card{
			ID:     i,
			Row:    p.Row,
			Col:    p.Col,
			X:      p.X,
			Y:      p.Y,
			Width:  p.Width,
			Height: p.Height,
			Label:  labels[i],
		}
	}

	e := &Engine{
		cards:         cards,
		selection:     make([]int, 0, 2),
		grid:          grid,
		phase:         newPhaseMachine(),
		sched:         scheduler,
		listener:      ec.listener,
		matchDelay:    ec.matchDelay,
		mismatchDelay: ec.mismatchDelay,
		moveLimit:     ec.moveLimit,
		logger:        ec.logger.WithPrefix("board"),
	}
	e.logger.Debug("Board built", "cards", len(cards), "rows", grid.Rows, "cols", grid.Cols)
	return e, nil
}

// Reveal turns card id face up. It does nothing and returns false when the
// board is resolving a pair, the card is already face up or matched, the id
// is unknown, or the board is won or destroyed.
//
// Revealing the second card of a pair counts a move and decides the match
// immediately; settling the pair is deferred to the scheduler.
func (e *Engine) Reveal(id int) bool {
	switch e.Phase() {
	case PhaseIdle, PhaseOnePicked:
	default:
		return false
	}
	if id < 0 || id >= len(e.cards) {
		return false
	}
	card := &e.cards[id]
	if card.Flipped || card.Matched {
		return false
	}

	card.Flipped = true
	e.selection = append(e.selection, id)

	if len(e.selection) == 1 {
		e.transition(eventPick)
		return true
	}

	e.transition(eventPair)
	e.moves++
	if e.listener.OnMove != nil {
		e.listener.OnMove(e.moves)
	}
	// OnMove may have destroyed the board.
	if e.Phase() != PhaseResolving {
		return true
	}

	a, b := e.selection[0], e.selection[1]
	if e.cards[a].Label == e.cards[b].Label {
		e.pending = e.sched.Schedule(e.matchDelay, func() { e.settleMatch(a, b) })
	} else {
		e.pending = e.sched.Schedule(e.mismatchDelay, func() { e.settleMismatch(a, b) })
	}
	return true
}

func (e *Engine) settleMatch(a, b int) {
	if e.Phase() != PhaseResolving {
		return
	}
	e.pending = nil

	e.cards[a].Matched = true
	e.cards[b].Matched = true
	e.selection = e.selection[:0]

	won := e.allMatched()
	if won {
		e.transition(eventWin)
	} else {
		e.transition(eventSettle)
	}
	e.logger.Debug("Pair matched", "a", a, "b", b, "label", e.cards[a].Label, "moves", e.moves, "won", won)

	if e.listener.OnMatch != nil {
		e.listener.OnMatch()
	}
	if won {
		if e.Phase() == PhaseWon && e.listener.OnWin != nil {
			e.listener.OnWin(e.moves)
		}
		return
	}
	e.checkLimit()
}

func (e *Engine) settleMismatch(a, b int) {
	if e.Phase() != PhaseResolving {
		return
	}
	e.pending = nil

	e.cards[a].Flipped = false
	e.cards[b].Flipped = false
	e.selection = e.selection[:0]
	e.transition(eventSettle)
	e.logger.Debug("Pair mismatched", "a", a, "b", b, "moves", e.moves)

	if e.listener.OnMismatch != nil {
		e.listener.OnMismatch()
	}
	e.checkLimit()
}

func (e *Engine) checkLimit() {
	if e.moveLimit == 0 || e.limitReported || e.moves < e.moveLimit {
		return
	}
	if e.Phase() == PhaseDestroyed {
		return
	}
	e.limitReported = true
	e.logger.Debug("Move limit reached", "moves", e.moves, "limit", e.moveLimit)
	if e.listener.OnLimitReached != nil {
		e.listener.OnLimitReached(e.moves)
	}
}

// Destroy cancels any pending resolution and releases the cards. A
// continuation that still fires afterwards does nothing. Destroy is
// idempotent.
func (e *Engine) Destroy() {
	if e.Phase() == PhaseDestroyed {
		return
	}
	if e.pending != nil {
		e.pending.Cancel()
		e.pending = nil
	}
	e.transition(eventDestroy)
	e.cards = nil
	e.selection = nil
	e.logger.Debug("Board destroyed", "moves", e.moves)
}

func (e *Engine) transition(event string) {
	if err := e.phase.Event(context.Background(), event); err != nil {
		// Every call site checks the phase first.
		panic("board: " + err.Error())
	}
}

func (e *Engine) allMatched() bool {
	for _, c := range e.cards {
		if !c.Matched {
			return false
		}
	}
	return true
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return Phase(e.phase.Current())
}

// Locked reports whether a pair is being resolved. While locked, Reveal is
// a no-op.
func (e *Engine) Locked() bool {
	return e.Phase() == PhaseResolving
}

// Won reports whether every card has been matched.
func (e *Engine) Won() bool {
	return e.Phase() == PhaseWon
}

// Moves returns the number of completed two-card reveals.
func (e *Engine) Moves() int {
	return e.moves
}

// Len returns the number of cards.
func (e *Engine) Len() int {
	return len(e.cards)
}

// Cards returns a copy of every card in index order.
func (e *Engine) Cards() []Card {
	return slices.Clone(e.cards)
}

// Card returns a copy of card id.
func (e *Engine) Card(id int) (Card, bool) {
	if id < 0 || id >= len(e.cards) {
		return Card{}, false
	}
	return e.cards[id], true
}

// Selection returns the ids of face-up cards awaiting resolution.
func (e *Engine) Selection() []int {
	return slices.Clone(e.selection)
}

// Grid returns the layout the cards were placed with.
func (e *Engine) Grid() layout.Grid {
	return e.grid
}

// RemainingPairs returns the number of pairs not yet matched.
func (e *Engine) RemainingPairs() int {
	n := 0
	for _, c := range e.cards {
		if !c.Matched {
			n++
		}
	}
	return n / 2
}

// Progress returns the fraction of cards matched, between 0 and 1.
func (e *Engine) Progress() float64 {
	if len(e.cards) == 0 {
		return 0
	}
	return 1 - float64(e.RemainingPairs()*2)/float64(len(e.cards))
}

// Hint returns the lowest-numbered pair of face-down cards that share a
// label. It does not change any state.
func (e *Engine) Hint() (a, b int, ok bool) {
	first := make(map[Label]int)
	for _, c := range e.cards {
		if c.FaceUp() {
			continue
		}
		if prev, seen := first[c.Label]; seen {
			if !ok || prev < a {
				a, b, ok = prev, c.ID, true
			}
			continue
		}
		first[c.Label] = c.ID
	}
	return a, b, ok
}
