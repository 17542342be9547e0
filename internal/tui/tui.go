// Package tui is the terminal front end: a Bubble Tea program that renders
// the board and forwards key presses to a session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/tilematch/internal/board"
	"github.com/lox/tilematch/internal/level"
	"github.com/lox/tilematch/internal/sched"
	"github.com/lox/tilematch/internal/score"
	"github.com/lox/tilematch/internal/session"
)

// BonusSeconds is how much time the add-time key grants.
const BonusSeconds = 10

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Config configures a Model.
type Config struct {
	Catalog *level.Catalog
	Store   score.Store
	Rand    *rand.Rand
	Logger  *log.Logger
	// Level to start on. Zero starts on the first level.
	Level int
}

// continuationMsg carries a scheduled continuation onto the update loop.
type continuationMsg struct{ fn func() }

type loadMsg struct{ level int }

// Model is the Bubble Tea model for one player.
type Model struct {
	session.NopObserver

	session *session.Session
	snap    session.Snapshot
	logger  *log.Logger
	start   int

	keys KeyMap
	help help.Model

	cursor   int
	hint     [2]int
	hasHint  bool
	outcome  *session.Outcome
	err      error
	quitting bool

	width  int
	height int
}

// NewModel creates a model whose session runs on scheduler. Continuations
// must reach Update as messages; see Run.
func NewModel(cfg Config, scheduler sched.Scheduler) *Model {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	m := &Model{
		logger: logger.WithPrefix("tui"),
		start:  cfg.Level,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
	m.session = session.New(cfg.Catalog, cfg.Store, scheduler, cfg.Rand, logger, m)
	return m
}

// Finished implements session.Observer.
func (m *Model) Finished(out session.Outcome) {
	m.outcome = &out
	m.hasHint = false
}

// Init loads the starting level.
func (m *Model) Init() tea.Cmd {
	start := m.start
	if start == 0 {
		if first, ok := m.session.Catalog().First(); ok {
			start = first.ID
		}
	}
	return func() tea.Msg { return loadMsg{level: start} }
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case continuationMsg:
		msg.fn()

	case loadMsg:
		m.load(func(ctx context.Context) error { return m.session.Load(ctx, msg.level) })

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.session.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			m.move(-1, 0)
		case key.Matches(msg, m.keys.Down):
			m.move(1, 0)
		case key.Matches(msg, m.keys.Left):
			m.move(0, -1)
		case key.Matches(msg, m.keys.Right):
			m.move(0, 1)
		case key.Matches(msg, m.keys.Reveal):
			if m.session.Reveal(m.cursor) {
				m.hasHint = false
			}
		case key.Matches(msg, m.keys.Hint):
			a, b, ok := m.session.Hint()
			m.hint, m.hasHint = [2]int{a, b}, ok
		case key.Matches(msg, m.keys.AddTime):
			m.session.AddTime(BonusSeconds)
		case key.Matches(msg, m.keys.Restart):
			m.load(m.session.Restart)
		case key.Matches(msg, m.keys.Next):
			m.load(m.session.Next)
		}
	}

	m.snap = m.session.Snapshot()
	return m, nil
}

func (m *Model) load(fn func(context.Context) error) {
	m.outcome = nil
	m.hasHint = false
	m.err = fn(context.Background())
	if m.err != nil && !errors.Is(m.err, session.ErrNoMoreLevels) {
		m.logger.Error("Failed to load level", "error", m.err)
	}
	m.snap = m.session.Snapshot()
	m.cursor = 0
	if len(m.snap.Cards) > 0 {
		m.cursor = m.snap.Cards[0].ID
	}
}

// move steps the cursor to the next card in a direction, skipping holes.
func (m *Model) move(dr, dc int) {
	cur, ok := m.cardAt(m.cursor)
	if !ok {
		return
	}
	byPos := make(map[[2]int]int, len(m.snap.Cards))
	for _, c := range m.snap.Cards {
		byPos[[2]int{c.Row, c.Col}] = c.ID
	}
	for r, c := cur.Row+dr, cur.Col+dc; r >= 0 && c >= 0 && r < m.snap.Rows && c < m.snap.Cols; r, c = r+dr, c+dc {
		if id, ok := byPos[[2]int{r, c}]; ok {
			m.cursor = id
			return
		}
	}
}

func (m *Model) cardAt(id int) (board.Card, bool) {
	if id < 0 || id >= len(m.snap.Cards) {
		return board.Card{}, false
	}
	return m.snap.Cards[id], true
}

// View renders the board.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	if m.snap.Loaded() {
		b.WriteString(m.renderBoard())
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderHeader() string {
	title := fmt.Sprintf("Level %d", m.snap.Level)
	if m.snap.LevelName != "" {
		title += " · " + m.snap.LevelName
	}
	return HeaderStyle.Render(title)
}

func (m *Model) renderBoard() string {
	grid := make([][]string, m.snap.Rows)
	for r := range grid {
		grid[r] = make([]string, m.snap.Cols)
		for c := range grid[r] {
			grid[r][c] = emptyTileStyle.Render("")
		}
	}
	for _, c := range m.snap.Cards {
		grid[c.Row][c.Col] = m.renderTile(c)
	}

	rows := make([]string, len(grid))
	for r, cells := range grid {
		rows[r] = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderTile(c board.Card) string {
	var style lipgloss.Style
	text := "?"
	switch {
	case c.Matched:
		style = matchedTileStyle
		text = labelText(c.Label)
	case c.Flipped:
		style = faceUpTileStyle
		text = labelText(c.Label)
		if hexColor.MatchString(string(c.Label)) {
			style = style.Background(lipgloss.Color(string(c.Label)))
		}
	default:
		style = hiddenTileStyle
	}

	if m.hasHint && (c.ID == m.hint[0] || c.ID == m.hint[1]) {
		style = style.BorderForeground(hintBorder)
	}
	if c.ID == m.cursor {
		style = style.BorderForeground(cursorBorder).BorderStyle(lipgloss.ThickBorder())
	}
	return style.Render(text)
}

func labelText(l board.Label) string {
	s := string(l)
	if len(s) > tileWidth-2 {
		s = s[:tileWidth-2]
	}
	return s
}

func (m *Model) renderStatus() string {
	if m.err != nil {
		if errors.Is(m.err, session.ErrNoMoreLevels) {
			return SuccessStyle.Render("All levels complete!")
		}
		return ErrorStyle.Render(m.err.Error())
	}
	if !m.snap.Loaded() {
		return InfoStyle.Render("Loading...")
	}

	parts := []string{fmt.Sprintf("Moves: %d", m.snap.Moves)}
	if m.snap.MaxMoves > 0 {
		parts[0] += fmt.Sprintf("/%d", m.snap.MaxMoves)
	}
	if m.snap.HadBest {
		parts = append(parts, fmt.Sprintf("Best: %d", m.snap.Best))
	}
	if m.snap.Timed {
		parts = append(parts, fmt.Sprintf("Time: %ds", m.snap.TimeLeft))
	}
	parts = append(parts, fmt.Sprintf("Pairs left: %d", m.snap.Remaining))
	status := StatusStyle.Render(strings.Join(parts, "  "))

	if m.outcome == nil {
		return status
	}
	return status + "\n" + outcomeText(*m.outcome)
}

func outcomeText(out session.Outcome) string {
	if out.Status == session.StatusWon {
		msg := fmt.Sprintf("You won in %d moves!", out.Moves)
		if out.NewRecord {
			msg += " New record!"
		}
		return SuccessStyle.Render(msg) + InfoStyle.Render("  n: next level  r: replay")
	}

	reason := "Out of moves."
	if out.Reason == session.LossTimeUp {
		reason = "Time's up!"
	}
	return WarningStyle.Render(reason) + InfoStyle.Render("  r: try again")
}
