package sched

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// ErrLoopStopped is returned when work is handed to a loop that has exited.
var ErrLoopStopped = errors.New("loop stopped")

const loopBacklog = 256

// Loop is a single-goroutine executor. Everything posted to it, including
// scheduled continuations, runs sequentially on the goroutine calling Run.
type Loop struct {
	clocked *Clocked
	tasks   chan func()
	logger  *log.Logger

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewLoop creates a loop whose timers come from clock.
func NewLoop(clock quartz.Clock, logger *log.Logger) *Loop {
	l := &Loop{
		tasks:   make(chan func(), loopBacklog),
		logger:  logger.WithPrefix("loop"),
		stopped: make(chan struct{}),
	}
	l.clocked = NewClocked(clock, l.Post)
	return l
}

// Schedule implements Scheduler.
func (l *Loop) Schedule(delay time.Duration, fn func()) Task {
	return l.clocked.Schedule(delay, fn)
}

// Post queues fn for execution on the loop goroutine.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.stopped:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrLoopStopped
	}

	select {
	case <-done:
		return nil
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes queued work until ctx is cancelled. A loop runs once; after
// Run returns, Post reports false.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()

	l.logger.Debug("Loop started")
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-ctx.Done():
			l.logger.Debug("Loop stopped", "pending", len(l.tasks))
			return ctx.Err()
		}
	}
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}

func (l *Loop) stop() {
	l.stopOnce.Do(func() { close(l.stopped) })
}
