package tui

import (
	"fmt"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/tilematch/internal/board"
	"github.com/lox/tilematch/internal/layout"
	"github.com/lox/tilematch/internal/level"
	"github.com/lox/tilematch/internal/randutil"
	"github.com/lox/tilematch/internal/sched"
	"github.com/lox/tilematch/internal/score"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newTestModel(t *testing.T, levels ...level.Level) (*Model, *sched.Manual) {
	t.Helper()
	if len(levels) == 0 {
		levels = []level.Level{
			{ID: 1, Name: "Tiny", Shape: layout.Mask{{1, 1}, {1, 1}}, Labels: []string{"apple", "pear"}},
			{ID: 2, Shape: layout.Mask{{1, 1}}},
		}
	}
	catalog, err := level.NewCatalog(levels)
	require.NoError(t, err)

	m := sched.NewManual()
	model := NewModel(Config{Catalog: catalog, Store: score.NewMemory(), Rand: randutil.New(3)}, m)
	send(model, model.Init()())
	return model, m
}

func send(m *Model, msg tea.Msg) {
	m.Update(msg)
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		send(m, msg)
	}
}

func reveal(m *Model, id int) {
	m.cursor = id
	press(m, "enter")
}

func TestInitLoadsFirstLevel(t *testing.T) {
	model, _ := newTestModel(t)

	assert.Equal(t, 1, model.snap.Level)
	assert.Len(t, model.snap.Cards, 4)

	view := model.View()
	assert.Contains(t, view, "Level 1")
	assert.Contains(t, view, "Tiny")
	assert.Contains(t, view, "Moves: 0")
	assert.NotContains(t, view, "apple", "face-down labels are hidden")
}

func TestCursorMovement(t *testing.T) {
	model, _ := newTestModel(t)
	require.Equal(t, 0, model.cursor)

	press(model, "right")
	assert.Equal(t, 1, model.cursor)
	press(model, "down")
	assert.Equal(t, 3, model.cursor)
	press(model, "left")
	assert.Equal(t, 2, model.cursor)
	press(model, "up")
	assert.Equal(t, 0, model.cursor)

	press(model, "left", "up")
	assert.Equal(t, 0, model.cursor, "cursor stays at the edge")

	press(model, "l", "j")
	assert.Equal(t, 3, model.cursor)
}

func TestCursorSkipsHoles(t *testing.T) {
	model, _ := newTestModel(t, level.Level{ID: 1, Shape: layout.Mask{{1, 0, 1}, {1, 0, 1}}})

	press(model, "right")
	card := model.snap.Cards[model.cursor]
	assert.Equal(t, 0, card.Row)
	assert.Equal(t, 2, card.Col)
}

func TestPlayToWin(t *testing.T) {
	model, m := newTestModel(t)

	first := map[board.Label]int{}
	for _, c := range model.snap.Cards {
		if prev, ok := first[c.Label]; ok {
			reveal(model, prev)
			reveal(model, c.ID)
			m.Advance(board.DefaultMatchDelay)
			continue
		}
		first[c.Label] = c.ID
	}

	// Continuations ran directly on the manual scheduler; refresh the view
	// the way a continuation message would.
	send(model, continuationMsg{fn: func() {}})

	require.NotNil(t, model.outcome)
	view := model.View()
	assert.Contains(t, view, "You won in 2 moves!")
	assert.Contains(t, view, "New record!")
	assert.Contains(t, view, "apple")

	press(model, "n")
	assert.Equal(t, 2, model.snap.Level)
	assert.Nil(t, model.outcome)

	press(model, "n")
	assert.Contains(t, model.View(), "All levels complete!")
}

func TestMismatchFlipsBack(t *testing.T) {
	model, m := newTestModel(t)

	a := model.snap.Cards[0]
	var b board.Card
	for _, c := range model.snap.Cards[1:] {
		if c.Label != a.Label {
			b = c
			break
		}
	}

	reveal(model, a.ID)
	reveal(model, b.ID)
	assert.Contains(t, model.View(), string(a.Label))

	m.Advance(board.DefaultMismatchDelay)
	send(model, continuationMsg{fn: func() {}})
	assert.NotContains(t, model.View(), string(a.Label))
	assert.Contains(t, model.View(), "Moves: 1")
}

func TestHintHighlightsPair(t *testing.T) {
	model, _ := newTestModel(t)

	press(model, "i")
	require.True(t, model.hasHint)
	cards := model.snap.Cards
	assert.Equal(t, cards[model.hint[0]].Label, cards[model.hint[1]].Label)

	reveal(model, 0)
	assert.False(t, model.hasHint, "a reveal clears the hint")
}

func TestAddTimeKey(t *testing.T) {
	model, m := newTestModel(t, level.Level{ID: 1, Shape: layout.Mask{{1, 1}, {1, 1}}, Time: 5})
	assert.Contains(t, model.View(), "Time: 5s")

	m.Advance(2 * time.Second)
	send(model, continuationMsg{fn: func() {}})
	press(model, "t")
	assert.Equal(t, 3+BonusSeconds, model.snap.TimeLeft)
	assert.Contains(t, model.View(), fmt.Sprintf("Time: %ds", 3+BonusSeconds))
}

func TestAddTimeKeyIgnoredOnUntimedLevel(t *testing.T) {
	model, _ := newTestModel(t)
	press(model, "t")
	assert.False(t, model.snap.Timed)
	assert.NotContains(t, model.View(), "Time:")
}

func TestContinuationMessageRunsOnUpdate(t *testing.T) {
	model, _ := newTestModel(t)
	ran := false
	send(model, continuationMsg{fn: func() { ran = true }})
	assert.True(t, ran)
}

func TestRestartAndQuit(t *testing.T) {
	model, m := newTestModel(t)

	reveal(model, 0)
	press(model, "r")
	assert.Zero(t, m.Pending())
	for _, c := range model.snap.Cards {
		assert.False(t, c.FaceUp())
	}

	press(model, "?")
	assert.True(t, model.help.ShowAll)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, model.View())
}
