package simulator

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/tilematch/internal/board"
)

// Bot chooses which card to reveal next. It only ever learns labels of
// cards that are face up.
type Bot interface {
	// Observe lets the bot see the board, typically right after a reveal.
	Observe(cards []board.Card)
	// Choose returns the id of a face-down card to reveal.
	Choose(cards []board.Card) int
}

// Bot names accepted by NewBot.
const (
	BotRandom = "random"
	BotMemory = "memory"
)

// NewBot creates a bot by name.
func NewBot(name string, rng *rand.Rand) (Bot, error) {
	switch name {
	case BotRandom:
		return &RandomBot{rng: rng}, nil
	case BotMemory, "":
		return NewMemoryBot(rng), nil
	default:
		return nil, fmt.Errorf("unknown bot %q", name)
	}
}

func faceDown(cards []board.Card) []int {
	var ids []int
	for _, c := range cards {
		if !c.FaceUp() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// RandomBot reveals a random face-down card and remembers nothing.
type RandomBot struct {
	rng *rand.Rand
}

func (b *RandomBot) Observe([]board.Card) {}

func (b *RandomBot) Choose(cards []board.Card) int {
	ids := faceDown(cards)
	if len(ids) == 0 {
		return -1
	}
	return ids[b.rng.IntN(len(ids))]
}

// MemoryBot has perfect recall of every label it has seen. It completes a
// known pair whenever it can and otherwise explores unseen cards.
type MemoryBot struct {
	rng  *rand.Rand
	seen map[int]board.Label
}

// NewMemoryBot creates a memory bot.
func NewMemoryBot(rng *rand.Rand) *MemoryBot {
	return &MemoryBot{rng: rng, seen: make(map[int]board.Label)}
}

func (b *MemoryBot) Observe(cards []board.Card) {
	for _, c := range cards {
		switch {
		case c.Matched:
			delete(b.seen, c.ID)
		case c.Flipped:
			b.seen[c.ID] = c.Label
		}
	}
}

func (b *MemoryBot) Choose(cards []board.Card) int {
	b.Observe(cards)

	var picked = -1
	for _, c := range cards {
		if c.Flipped && !c.Matched {
			picked = c.ID
		}
	}

	down := faceDown(cards)
	if len(down) == 0 {
		return -1
	}

	if picked >= 0 {
		// Second card: finish the pair if its partner is known.
		want := b.seen[picked]
		for _, id := range down {
			if l, ok := b.seen[id]; ok && l == want {
				return id
			}
		}
	} else {
		// First card: start a pair we already know about.
		byLabel := make(map[board.Label]int)
		for _, id := range down {
			l, ok := b.seen[id]
			if !ok {
				continue
			}
			if _, dup := byLabel[l]; dup {
				return byLabel[l]
			}
			byLabel[l] = id
		}
	}

	var unseen []int
	for _, id := range down {
		if _, ok := b.seen[id]; !ok {
			unseen = append(unseen, id)
		}
	}
	if len(unseen) > 0 {
		return unseen[b.rng.IntN(len(unseen))]
	}
	return down[b.rng.IntN(len(down))]
}
