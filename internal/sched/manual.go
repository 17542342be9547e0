package sched

import "time"

// Manual is a virtual-time Scheduler. Nothing runs until the owner calls
// Advance or Flush, which makes it suitable for tests and for simulations
// that should not wait on a wall clock.
type Manual struct {
	now   time.Duration
	seq   uint64
	queue []*manualEntry
}

type manualEntry struct {
	*task
	due time.Duration
	seq uint64
}

// NewManual creates a Manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Schedule implements Scheduler.
func (m *Manual) Schedule(delay time.Duration, fn func()) Task {
	m.seq++
	e := &manualEntry{task: newTask(fn), due: m.now + max(delay, 0), seq: m.seq}
	m.queue = append(m.queue, e)
	return e.task
}

// Now returns the current virtual time.
func (m *Manual) Now() time.Duration { return m.now }

// Pending returns the number of continuations that have not yet run or been
// cancelled.
func (m *Manual) Pending() int {
	n := 0
	for _, e := range m.queue {
		if e.pending() {
			n++
		}
	}
	return n
}

// Advance moves virtual time forward by d, running every continuation that
// falls due in order, including ones scheduled by earlier continuations. It
// returns the number of continuations run.
func (m *Manual) Advance(d time.Duration) int {
	target := m.now + d
	n := 0
	for {
		e := m.next()
		if e == nil || e.due > target {
			break
		}
		m.fire(e)
		n++
	}
	m.now = target
	return n
}

// Flush runs continuations until none remain, advancing virtual time as far
// as needed.
func (m *Manual) Flush() int {
	n := 0
	for e := m.next(); e != nil; e = m.next() {
		m.fire(e)
		n++
	}
	return n
}

func (m *Manual) fire(e *manualEntry) {
	m.remove(e)
	m.now = max(m.now, e.due)
	e.run()
}

// next returns the earliest pending entry, dropping cancelled ones.
func (m *Manual) next() *manualEntry {
	live := m.queue[:0]
	var best *manualEntry
	for _, e := range m.queue {
		if !e.pending() {
			continue
		}
		live = append(live, e)
		if best == nil || e.due < best.due || (e.due == best.due && e.seq < best.seq) {
			best = e
		}
	}
	clear(m.queue[len(live):])
	m.queue = live
	return best
}

func (m *Manual) remove(target *manualEntry) {
	for i, e := range m.queue {
		if e == target {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return
		}
	}
}
