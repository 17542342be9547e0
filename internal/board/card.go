package board

import "fmt"

// Label is the value whose equality between two cards defines a match: a
// color such as "#f0b13b" or an image key. It carries no other meaning.
type Label string

// Card is a single board slot. Position and label are fixed at build time;
// Flipped and Matched are only ever changed by the Engine, and callers only
// receive copies.
type Card struct {
	ID     int
	Row    int
	Col    int
	X      float64
	Y      float64
	Width  float64
	Height float64
	Label  Label

	Flipped bool
	Matched bool
}

// FaceUp reports whether the card's label is visible.
func (c Card) FaceUp() bool {
	return c.Flipped || c.Matched
}

func (c Card) String() string {
	state := "down"
	switch {
	case c.Matched:
		state = "matched"
	case c.Flipped:
		state = "up"
	}
	return fmt.Sprintf("#%d(%d,%d %s %s)", c.ID, c.Row, c.Col, c.Label, state)
}
