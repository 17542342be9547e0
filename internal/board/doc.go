// Package board implements the rules of the tile-matching memory game.
//
// The main type is Engine, which owns the cards of one board, the
// reveal/lock state machine, the move counter and win detection.
//
// # Basic Usage
//
// Build a board from a shape mask and a label pool, then feed it reveals:
//
//	s := sched.NewManual()
//	e, err := board.Build(board.Config{
//	    Shape:  layout.Mask{{1, 1}, {1, 1}},
//	    Box:    layout.Box{Width: 400, Height: 400},
//	    Labels: []board.Label{"bido", "cachua"},
//	}, randutil.New(42), s, board.WithListener(board.Listener{
//	    OnWin: func(total int) { fmt.Println("won in", total) },
//	}))
//	if err != nil {
//	    // *board.ConfigurationError: odd shape or too few labels
//	}
//	e.Reveal(0)
//	e.Reveal(1) // counts a move, decides the match
//	s.Flush()   // settles the pair
//
// # Phases
//
// An engine moves idle → one_picked → resolving → idle, and ends in won
// (after the last match settles) or destroyed. Reveal is only accepted in
// idle and one_picked, so a third card can never join a pair that is
// still resolving, however quickly input arrives.
//
// # Scheduling
//
// The engine never blocks or starts goroutines. Settling a pair is a
// continuation handed to a sched.Scheduler; Destroy cancels it, and a
// continuation that fires after Destroy finds the engine destroyed and
// returns without touching anything.
package board
