package board

import (
	"fmt"
	rand "math/rand/v2"
)

// AssignPairs returns 2×pairCount labels in which each of the first
// pairCount labels of pool occurs exactly twice, uniformly shuffled with rng.
// Index i of the result belongs to active cell i.
func AssignPairs(pairCount int, pool []Label, rng *rand.Rand) ([]Label, error) {
	if pairCount < 0 {
		return nil, configErrorf(ReasonInvalidOption, "negative pair count %d", pairCount)
	}
	if len(pool) < pairCount {
		return nil, configErrorf(ReasonInsufficientLabels,
			"need %d distinct labels, pool has %d", pairCount, len(pool))
	}

	used := pool[:pairCount]
	seen := make(map[Label]struct{}, len(used))
	labels := make([]Label, 0, 2*pairCount)
	for _, l := range used {
		if _, dup := seen[l]; dup {
			return nil, configErrorf(ReasonDuplicateLabel, "label %q appears more than once in pool", l)
		}
		seen[l] = struct{}{}
		labels = append(labels, l, l)
	}

	rng.Shuffle(len(labels), func(i, j int) {
		labels[i], labels[j] = labels[j], labels[i]
	})
	return labels, nil
}

// faceDownColor is the color of a face-down tile and never used as a label.
const faceDownColor = 0x444444

// RandomColors returns n distinct "#rrggbb" labels for levels that do not
// name their own.
func RandomColors(n int, rng *rand.Rand) []Label {
	labels := make([]Label, 0, n)
	seen := make(map[uint32]struct{}, n)
	for len(labels) < n {
		c := rng.Uint32() & 0xffffff
		if c == faceDownColor {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		labels = append(labels, Label(fmt.Sprintf("#%06x", c)))
	}
	return labels
}
