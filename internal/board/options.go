package board

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultPadding is the gap between tiles.
	DefaultPadding = 15.0
	// DefaultMatchDelay lets a front end show the second card before a
	// matched pair settles.
	DefaultMatchDelay = 300 * time.Millisecond
	// DefaultMismatchDelay is how long a mismatched pair stays face up.
	DefaultMismatchDelay = 700 * time.Millisecond
)

// Listener receives engine events. Every field is optional and each is
// called synchronously from inside the engine.
type Listener struct {
	// OnMove is called when a second card is revealed, with the new count.
	OnMove func(moves int)
	// OnMatch is called when a matched pair settles.
	OnMatch func()
	// OnMismatch is called when a mismatched pair is turned back down.
	OnMismatch func()
	// OnWin is called once, after the last pair settles.
	OnWin func(totalMoves int)
	// OnLimitReached is called once when a pair settles without winning and
	// the move limit has been used up.
	OnLimitReached func(moves int)
}

// Option configures an Engine during Build.
type Option func(*engineConfig)

type engineConfig struct {
	padding       float64
	margin        float64
	square        bool
	matchDelay    time.Duration
	mismatchDelay time.Duration
	moveLimit     int
	listener      Listener
	logger        *log.Logger
}

func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		padding:       DefaultPadding,
		matchDelay:    DefaultMatchDelay,
		mismatchDelay: DefaultMismatchDelay,
		logger:        log.NewWithOptions(io.Discard, log.Options{}),
	}
}

func (c *engineConfig) validate() error {
	switch {
	case c.padding < 0:
		return configErrorf(ReasonInvalidOption, "negative padding %v", c.padding)
	case c.margin < 0:
		return configErrorf(ReasonInvalidOption, "negative margin %v", c.margin)
	case c.matchDelay < 0 || c.mismatchDelay < 0:
		return configErrorf(ReasonInvalidOption, "negative resolution delay")
	case c.moveLimit < 0:
		return configErrorf(ReasonInvalidOption, "negative move limit %d", c.moveLimit)
	}
	return nil
}

// WithListener sets the event listener.
func WithListener(l Listener) Option {
	return func(c *engineConfig) {
		c.listener = l
	}
}

// WithPadding sets the gap between tiles. Default is DefaultPadding.
func WithPadding(padding float64) Option {
	return func(c *engineConfig) {
		c.padding = padding
	}
}

// WithMargin sets the inset inside the bounding box. Default is 0.
func WithMargin(margin float64) Option {
	return func(c *engineConfig) {
		c.margin = margin
	}
}

// WithSquareCells sizes every tile as a square.
func WithSquareCells() Option {
	return func(c *engineConfig) {
		c.square = true
	}
}

// WithDelays overrides how long matched and mismatched pairs stay pending.
func WithDelays(match, mismatch time.Duration) Option {
	return func(c *engineConfig) {
		c.matchDelay = match
		c.mismatchDelay = mismatch
	}
}

// WithMoveLimit enables OnLimitReached. Zero disables the limit.
func WithMoveLimit(limit int) Option {
	return func(c *engineConfig) {
		c.moveLimit = limit
	}
}

// WithLogger sets the logger. Resolutions are logged at debug level.
func WithLogger(logger *log.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
