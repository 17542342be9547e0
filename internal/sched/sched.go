// Package sched runs delayed continuations for single-threaded game code.
//
// Game state is owned by one goroutine. A Scheduler never runs a
// continuation on a timer goroutine; it hands the continuation back to the
// owning executor (a Loop, a Bubble Tea program, or a Manual clock in tests),
// so continuations and input events are serialized.
package sched

import (
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
)

// Task is the cancellation handle of a scheduled continuation.
type Task interface {
	// Cancel prevents the continuation from running. It reports false if the
	// continuation already ran or was already cancelled.
	Cancel() bool
}

// Scheduler runs fn after delay on the caller's executor.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Task
}

const (
	taskPending int32 = iota
	taskDone
	taskCancelled
)

type task struct {
	state atomic.Int32
	fn    func()
	timer *quartz.Timer
}

func newTask(fn func()) *task {
	return &task{fn: fn}
}

// run executes the continuation unless it was cancelled first.
func (t *task) run() {
	if t.state.CompareAndSwap(taskPending, taskDone) {
		t.fn()
	}
}

func (t *task) Cancel() bool {
	if !t.state.CompareAndSwap(taskPending, taskCancelled) {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	return true
}

func (t *task) pending() bool {
	return t.state.Load() == taskPending
}

// Post delivers a continuation to an executor. It reports false if the
// executor is gone and fn will never run.
type Post func(fn func()) bool

// Clocked is a Scheduler whose timers come from a quartz clock and whose
// continuations are delivered through a Post function.
type Clocked struct {
	clock quartz.Clock
	post  Post
}

// NewClocked creates a Clocked scheduler.
func NewClocked(clock quartz.Clock, post Post) *Clocked {
	if clock == nil {
		panic("clock is required")
	}
	if post == nil {
		panic("post is required")
	}
	return &Clocked{clock: clock, post: post}
}

// Schedule implements Scheduler.
func (c *Clocked) Schedule(delay time.Duration, fn func()) Task {
	t := newTask(fn)
	t.timer = c.clock.AfterFunc(delay, func() {
		if t.pending() {
			c.post(t.run)
		}
	}, "sched", "continuation")
	return t
}
