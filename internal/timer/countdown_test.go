package timer

import (
	"testing"
	"time"

	"github.com/lox/tilematch/internal/sched"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownRunsToZero(t *testing.T) {
	t.Parallel()
	m := sched.NewManual()
	c := New(m)

	var ticks []int
	timeUp := 0
	c.OnTick = func(left int) { ticks = append(ticks, left) }
	c.OnTimeUp = func() { timeUp++ }

	c.Start(3)
	assert.True(t, c.Running())
	assert.Equal(t, 3, c.Remaining())

	m.Advance(999 * time.Millisecond)
	assert.Empty(t, ticks)

	m.Advance(time.Millisecond)
	assert.Equal(t, []int{2}, ticks)

	m.Flush()
	assert.Equal(t, []int{2, 1, 0}, ticks)
	assert.Equal(t, 1, timeUp)
	assert.False(t, c.Running())
	assert.Equal(t, 3, c.Used())
	assert.Zero(t, m.Pending())
}

func TestCountdownStop(t *testing.T) {
	t.Parallel()
	m := sched.NewManual()
	c := New(m)
	c.OnTimeUp = func() { t.Fatal("stopped countdown fired") }

	c.Start(5)
	m.Advance(2 * time.Second)
	c.Stop()
	m.Flush()

	assert.Equal(t, 3, c.Remaining())
	assert.Equal(t, 2, c.Used())
	assert.False(t, c.Running())
}

func TestCountdownAddTime(t *testing.T) {
	t.Parallel()
	m := sched.NewManual()
	c := New(m)
	timeUp := false
	c.OnTimeUp = func() { timeUp = true }

	c.Start(2)
	m.Advance(time.Second)
	c.AddTime(3)
	assert.Equal(t, 4, c.Remaining())

	m.Advance(3 * time.Second)
	assert.False(t, timeUp)
	m.Advance(time.Second)
	assert.True(t, timeUp)
	assert.Equal(t, 5, c.Used())
}

func TestCountdownRestartKeepsUsed(t *testing.T) {
	t.Parallel()
	m := sched.NewManual()
	c := New(m)

	c.Start(10)
	m.Advance(4 * time.Second)
	c.Start(10)
	assert.Equal(t, 10, c.Remaining())
	assert.Equal(t, 1, m.Pending(), "restart must not leave the old tick armed")

	m.Advance(2 * time.Second)
	assert.Equal(t, 6, c.Used())

	c.ResetUsed()
	assert.Zero(t, c.Used())
}

func TestCountdownStopFromTick(t *testing.T) {
	t.Parallel()
	m := sched.NewManual()
	c := New(m)
	calls := 0
	c.OnTick = func(int) {
		calls++
		c.Stop()
	}

	c.Start(5)
	m.Flush()
	require.Equal(t, 1, calls)
	assert.Equal(t, 4, c.Remaining())
}

func TestCountdownZeroDoesNotRun(t *testing.T) {
	t.Parallel()
	m := sched.NewManual()
	c := New(m)
	c.Start(0)
	assert.False(t, c.Running())
	assert.Zero(t, m.Pending())
}
