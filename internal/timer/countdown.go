// Package timer implements the per-level countdown.
package timer

import (
	"time"

	"github.com/lox/tilematch/internal/sched"
)

// Tick is the countdown resolution.
const Tick = time.Second

// Countdown counts whole seconds down to zero on a sched.Scheduler, so its
// callbacks run on the same executor as the board they time.
//
// Like the board engine, a Countdown is not safe for concurrent use.
type Countdown struct {
	sched sched.Scheduler

	// OnTick is called after every second with the seconds left.
	OnTick func(left int)
	// OnTimeUp is called once when the countdown reaches zero. The
	// countdown is already stopped when it runs.
	OnTimeUp func()

	left    int
	used    int
	running bool
	task    sched.Task
}

// New creates a stopped countdown.
func New(scheduler sched.Scheduler) *Countdown {
	if scheduler == nil {
		panic("scheduler is required")
	}
	return &Countdown{sched: scheduler}
}

// Start restarts the countdown from seconds. The used-time total keeps
// accumulating across starts until ResetUsed.
func (c *Countdown) Start(seconds int) {
	c.Stop()
	c.left = seconds
	if seconds <= 0 {
		return
	}
	c.running = true
	c.arm()
}

// Stop halts the countdown without firing OnTimeUp.
func (c *Countdown) Stop() {
	c.running = false
	if c.task != nil {
		c.task.Cancel()
		c.task = nil
	}
}

// AddTime extends the remaining time.
func (c *Countdown) AddTime(seconds int) {
	c.left += seconds
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int {
	return c.left
}

// Used returns the seconds elapsed since the last ResetUsed.
func (c *Countdown) Used() int {
	return c.used
}

// ResetUsed zeroes the used-time total.
func (c *Countdown) ResetUsed() {
	c.used = 0
}

// Running reports whether the countdown is ticking.
func (c *Countdown) Running() bool {
	return c.running
}

func (c *Countdown) arm() {
	c.task = c.sched.Schedule(Tick, c.tick)
}

func (c *Countdown) tick() {
	if !c.running {
		return
	}
	c.task = nil
	c.left--
	c.used++

	if c.OnTick != nil {
		c.OnTick(c.left)
	}
	// OnTick may have stopped or restarted the countdown.
	if !c.running || c.task != nil {
		return
	}

	if c.left <= 0 {
		c.running = false
		if c.OnTimeUp != nil {
			c.OnTimeUp()
		}
		return
	}
	c.arm()
}
