package server

import (
	"sort"
	"sync"

	"github.com/lox/tilematch/internal/session"
	"github.com/lox/tilematch/internal/statistics"
)

// GameMonitor receives notifications about games played on the server.
// Calls arrive from every connection's loop concurrently.
type GameMonitor interface {
	// OnGameStart is called when a session loads a level.
	OnGameStart(sessionID string, level int)

	// OnGameComplete is called when a level is won or lost.
	OnGameComplete(sessionID string, outcome session.Outcome)
}

// NullGameMonitor is a no-op implementation.
type NullGameMonitor struct{}

func (NullGameMonitor) OnGameStart(string, int)                {}
func (NullGameMonitor) OnGameComplete(string, session.Outcome) {}

// MultiGameMonitor fans events out to multiple monitors.
type MultiGameMonitor struct {
	monitors []GameMonitor
}

// NewMultiGameMonitor builds a composite monitor, pruning nil entries and
// returning a NullGameMonitor when no monitors are provided.
func NewMultiGameMonitor(monitors ...GameMonitor) GameMonitor {
	filtered := make([]GameMonitor, 0, len(monitors))
	for _, monitor := range monitors {
		if monitor != nil {
			filtered = append(filtered, monitor)
		}
	}

	switch len(filtered) {
	case 0:
		return NullGameMonitor{}
	case 1:
		return filtered[0]
	default:
		return MultiGameMonitor{monitors: filtered}
	}
}

func (m MultiGameMonitor) OnGameStart(sessionID string, level int) {
	for _, monitor := range m.monitors {
		monitor.OnGameStart(sessionID, level)
	}
}

func (m MultiGameMonitor) OnGameComplete(sessionID string, outcome session.Outcome) {
	for _, monitor := range m.monitors {
		monitor.OnGameComplete(sessionID, outcome)
	}
}

// LevelStats is the play summary of one level, served on /api/stats.
type LevelStats struct {
	Level       int     `json:"level"`
	Started     int     `json:"started"`
	Won         int     `json:"won"`
	TimeUp      int     `json:"timeUp"`
	OutOfMoves  int     `json:"outOfMoves"`
	MinMoves    float64 `json:"minMoves,omitempty"`
	MeanMoves   float64 `json:"meanMoves,omitempty"`
	MedianMoves float64 `json:"medianMoves,omitempty"`
	MaxMoves    float64 `json:"maxMoves,omitempty"`
}

type levelCounters struct {
	started, won, timeUp, outOfMoves int
	moves                            statistics.Statistics
}

// StatsMonitor aggregates outcomes per level since the server started.
type StatsMonitor struct {
	mu     sync.Mutex
	levels map[int]*levelCounters
}

// NewStatsMonitor creates an empty stats monitor.
func NewStatsMonitor() *StatsMonitor {
	return &StatsMonitor{levels: make(map[int]*levelCounters)}
}

func (m *StatsMonitor) counters(level int) *levelCounters {
	c, ok := m.levels[level]
	if !ok {
		c = &levelCounters{}
		m.levels[level] = c
	}
	return c
}

func (m *StatsMonitor) OnGameStart(_ string, level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters(level).started++
}

func (m *StatsMonitor) OnGameComplete(_ string, out session.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.counters(out.Level)
	switch {
	case out.Status == session.StatusWon:
		c.won++
		c.moves.Add(float64(out.Moves))
	case out.Reason == session.LossTimeUp:
		c.timeUp++
	default:
		c.outOfMoves++
	}
}

// Stats returns per-level summaries ordered by level.
func (m *StatsMonitor) Stats() []LevelStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]LevelStats, 0, len(m.levels))
	for id, c := range m.levels {
		out = append(out, LevelStats{
			Level:       id,
			Started:     c.started,
			Won:         c.won,
			TimeUp:      c.timeUp,
			OutOfMoves:  c.outOfMoves,
			MinMoves:    c.moves.Min(),
			MeanMoves:   c.moves.Mean(),
			MedianMoves: c.moves.Median(),
			MaxMoves:    c.moves.Max(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}
