package session

import (
	"context"
	"testing"
	"time"

	"github.com/lox/tilematch/internal/board"
	"github.com/lox/tilematch/internal/layout"
	"github.com/lox/tilematch/internal/level"
	"github.com/lox/tilematch/internal/randutil"
	"github.com/lox/tilematch/internal/sched"
	"github.com/lox/tilematch/internal/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type events struct {
	NopObserver
	boards   int
	moves    []int
	matched  []int
	ticks    []int
	outcomes []Outcome
}

func (e *events) BoardChanged(Snapshot) { e.boards++ }
func (e *events) Moved(m int)           { e.moves = append(e.moves, m) }
func (e *events) Matched(r int)         { e.matched = append(e.matched, r) }
func (e *events) Ticked(left int)       { e.ticks = append(e.ticks, left) }
func (e *events) Finished(o Outcome)    { e.outcomes = append(e.outcomes, o) }

func testCatalog(t *testing.T) *level.Catalog {
	t.Helper()
	c, err := level.NewCatalog([]level.Level{
		{ID: 1, Shape: layout.Mask{{1, 1}, {1, 1}}, Time: 10, Labels: []string{"a", "b"}},
		{ID: 2, Shape: layout.Mask{{1, 1}, {1, 1}}, MaxMoves: 2},
		{ID: 3, Shape: layout.Mask{{1, 1}}},
	})
	require.NoError(t, err)
	return c
}

func newSession(t *testing.T, store score.Store) (*Session, *sched.Manual, *events) {
	t.Helper()
	m := sched.NewManual()
	ev := &events{}
	s := New(testCatalog(t), store, m, randutil.New(7), nil, ev)
	t.Cleanup(s.Close)
	return s, m, ev
}

func labelPairs(snap Snapshot) [][2]int {
	first := make(map[board.Label]int)
	var out [][2]int
	for _, c := range snap.Cards {
		if prev, ok := first[c.Label]; ok {
			out = append(out, [2]int{prev, c.ID})
			continue
		}
		first[c.Label] = c.ID
	}
	return out
}

func differentLabels(snap Snapshot) (int, int) {
	for _, c := range snap.Cards[1:] {
		if c.Label != snap.Cards[0].Label {
			return snap.Cards[0].ID, c.ID
		}
	}
	panic("board has one label")
}

func solve(t *testing.T, s *Session, m *sched.Manual) {
	t.Helper()
	for _, p := range labelPairs(s.Snapshot()) {
		require.True(t, s.Reveal(p[0]))
		require.True(t, s.Reveal(p[1]))
		m.Advance(board.DefaultMatchDelay)
	}
}

func TestWinRecordsBest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := score.NewMemory()
	s, m, ev := newSession(t, store)

	require.NoError(t, s.Load(ctx, 1))
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Level)
	assert.Len(t, snap.Cards, 4)
	assert.True(t, snap.Timed)
	assert.Equal(t, 10, snap.TimeLeft)
	assert.False(t, snap.HadBest)

	solve(t, s, m)

	require.Len(t, ev.outcomes, 1)
	out := ev.outcomes[0]
	assert.Equal(t, StatusWon, out.Status)
	assert.Equal(t, 2, out.Moves)
	assert.Equal(t, 2, out.Best)
	assert.True(t, out.NewRecord)
	assert.Equal(t, []int{1, 0}, ev.matched)
	assert.Equal(t, []int{1, 2}, ev.moves)

	best, ok, err := store.Best(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, best)

	snap = s.Snapshot()
	require.NotNil(t, snap.Outcome)
	assert.Equal(t, board.PhaseWon, snap.Phase)
	assert.False(t, s.Reveal(0), "finished level ignores reveals")

	// The countdown stopped on the win.
	m.Advance(time.Minute)
	assert.Len(t, ev.outcomes, 1)
}

func TestWorseWinKeepsBest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := score.NewMemory()
	require.NoError(t, store.SetBest(ctx, 3, 1))
	s, m, ev := newSession(t, store)

	require.NoError(t, s.Load(ctx, 3))
	assert.True(t, s.Snapshot().HadBest)
	solve(t, s, m)

	require.Len(t, ev.outcomes, 1)
	assert.False(t, ev.outcomes[0].NewRecord)
	assert.Equal(t, 1, ev.outcomes[0].Best)
}

func TestTimeUpLoses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m, ev := newSession(t, nil)

	require.NoError(t, s.Load(ctx, 1))
	pair := labelPairs(s.Snapshot())[0]
	require.True(t, s.Reveal(pair[0]))

	m.Advance(10 * time.Second)

	require.Len(t, ev.outcomes, 1)
	out := ev.outcomes[0]
	assert.Equal(t, StatusLost, out.Status)
	assert.Equal(t, LossTimeUp, out.Reason)
	assert.Equal(t, 10, out.TimeUsed)
	assert.Len(t, ev.ticks, 10)

	snap := s.Snapshot()
	assert.Equal(t, board.PhaseDestroyed, snap.Phase)
	assert.Len(t, snap.Cards, 4, "lost board keeps its last cards for display")
	assert.Equal(t, 2, snap.Remaining)
	assert.False(t, s.Reveal(pair[1]))
}

func TestTimeUpWhileResolvingCancelsResolution(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m, ev := newSession(t, nil)

	require.NoError(t, s.Load(ctx, 1))
	m.Advance(9*time.Second + 900*time.Millisecond)
	pair := labelPairs(s.Snapshot())[0]
	require.True(t, s.Reveal(pair[0]))
	require.True(t, s.Reveal(pair[1]))

	m.Flush()
	require.Len(t, ev.outcomes, 1)
	assert.Equal(t, StatusLost, ev.outcomes[0].Status)
	assert.Empty(t, ev.matched, "pending match must not settle after time up")
}

func TestAddTimeExtendsCountdown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m, ev := newSession(t, nil)

	require.NoError(t, s.Load(ctx, 1))
	m.Advance(8 * time.Second)
	require.True(t, s.AddTime(5))
	assert.Equal(t, 7, s.Snapshot().TimeLeft)
	assert.Equal(t, 7, ev.ticks[len(ev.ticks)-1])

	m.Advance(6 * time.Second)
	assert.Empty(t, ev.outcomes)
	m.Advance(time.Second)
	require.Len(t, ev.outcomes, 1)
	assert.Equal(t, LossTimeUp, ev.outcomes[0].Reason)
	assert.Equal(t, 15, ev.outcomes[0].TimeUsed)

	assert.False(t, s.AddTime(5), "finished level has no countdown")
}

func TestAddTimeRefused(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _, ev := newSession(t, nil)

	assert.False(t, s.AddTime(5), "nothing loaded")

	require.NoError(t, s.Load(ctx, 2))
	assert.False(t, s.AddTime(5), "untimed level")

	require.NoError(t, s.Load(ctx, 1))
	assert.False(t, s.AddTime(0))
	assert.False(t, s.AddTime(-3))
	assert.Equal(t, 10, s.Snapshot().TimeLeft)
	assert.Empty(t, ev.ticks)
}

func TestMoveLimitLoses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m, ev := newSession(t, nil)

	require.NoError(t, s.Load(ctx, 2))
	a, b := differentLabels(s.Snapshot())

	for range 2 {
		require.True(t, s.Reveal(a))
		require.True(t, s.Reveal(b))
		m.Advance(board.DefaultMismatchDelay)
	}

	require.Len(t, ev.outcomes, 1)
	assert.Equal(t, StatusLost, ev.outcomes[0].Status)
	assert.Equal(t, LossMoveLimit, ev.outcomes[0].Reason)
	assert.Equal(t, 2, ev.outcomes[0].Moves)
}

func TestNextWalksCatalog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _, _ := newSession(t, nil)

	require.NoError(t, s.Next(ctx))
	assert.Equal(t, 1, s.Snapshot().Level)
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, 2, s.Snapshot().Level)
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, 3, s.Snapshot().Level)
	assert.ErrorIs(t, s.Next(ctx), ErrNoMoreLevels)
}

func TestRestart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m, ev := newSession(t, nil)

	assert.ErrorIs(t, s.Restart(ctx), ErrNoLevel)

	require.NoError(t, s.Load(ctx, 2))
	a, b := differentLabels(s.Snapshot())
	require.True(t, s.Reveal(a))
	require.True(t, s.Reveal(b))

	require.NoError(t, s.Restart(ctx))
	m.Flush()
	snap := s.Snapshot()
	assert.Zero(t, snap.Moves)
	assert.Nil(t, snap.Outcome)
	assert.Empty(t, ev.outcomes)
	for _, c := range snap.Cards {
		assert.False(t, c.FaceUp())
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, nil)
	assert.ErrorIs(t, s.Load(context.Background(), 42), level.ErrLevelNotFound)
	assert.False(t, s.Snapshot().Loaded())
}

func TestHint(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, nil)

	_, _, ok := s.Hint()
	assert.False(t, ok)

	require.NoError(t, s.Load(context.Background(), 1))
	a, b, ok := s.Hint()
	require.True(t, ok)
	snap := s.Snapshot()
	assert.Equal(t, snap.Cards[a].Label, snap.Cards[b].Label)
}

func TestSetCatalogAppliesOnNextLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _, _ := newSession(t, nil)
	require.NoError(t, s.Load(ctx, 3))

	c, err := level.NewCatalog([]level.Level{{ID: 3, Shape: layout.Mask{{1, 1, 1, 1}}}})
	require.NoError(t, err)
	s.SetCatalog(c)
	assert.Len(t, s.Snapshot().Cards, 2)

	require.NoError(t, s.Restart(ctx))
	assert.Len(t, s.Snapshot().Cards, 4)
}
