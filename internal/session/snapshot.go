package session

import (
	"github.com/lox/tilematch/internal/board"
)

// Snapshot is a read-only copy of the session state for rendering.
type Snapshot struct {
	Session   string
	Level     int
	LevelName string
	Phase     board.Phase
	Rows      int
	Cols      int
	Cards     []board.Card
	Moves     int
	MaxMoves  int
	Best      int
	HadBest   bool
	Timed     bool
	TimeLeft  int
	Remaining int
	Progress  float64
	Outcome   *Outcome
}

// Loaded reports whether the snapshot has a board.
func (s Snapshot) Loaded() bool {
	return s.Level != 0 || len(s.Cards) > 0
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Session: s.id,
		Best:    s.best,
		HadBest: s.hadBest,
	}
	if s.engine == nil {
		return snap
	}

	grid := s.engine.Grid()
	snap.Level = s.level.ID
	snap.LevelName = s.level.Name
	snap.Phase = s.engine.Phase()
	snap.Rows = grid.Rows
	snap.Cols = grid.Cols
	snap.Moves = s.engine.Moves()
	snap.MaxMoves = s.level.MaxMoves
	snap.Timed = s.level.Timed()
	snap.TimeLeft = s.countdown.Remaining()

	if snap.Phase == board.PhaseDestroyed {
		snap.Cards = append([]board.Card(nil), s.final...)
		for _, c := range snap.Cards {
			if !c.Matched {
				snap.Remaining++
			}
		}
		snap.Remaining /= 2
	} else {
		snap.Cards = s.engine.Cards()
		snap.Remaining = s.engine.RemainingPairs()
		snap.Progress = s.engine.Progress()
	}
	if s.finished != nil {
		out := *s.finished
		snap.Outcome = &out
	}
	return snap
}
