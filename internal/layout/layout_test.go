package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskCells(t *testing.T) {
	tests := []struct {
		name  string
		mask  Mask
		cells []Cell
		cols  int
	}{
		{
			name:  "full 2x2",
			mask:  Mask{{1, 1}, {1, 1}},
			cells: []Cell{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
			cols:  2,
		},
		{
			name:  "ragged rows are inactive past their length",
			mask:  Mask{{1, 0, 1}, {1}},
			cells: []Cell{{0, 0}, {0, 2}, {1, 0}},
			cols:  3,
		},
		{
			name:  "non-one markers are inactive",
			mask:  Mask{{2, 1}, {-1, 1}},
			cells: []Cell{{0, 1}, {1, 1}},
			cols:  2,
		},
		{
			name:  "empty",
			mask:  Mask{},
			cells: []Cell{},
			cols:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.cells, tt.mask.Cells())
			assert.Equal(t, len(tt.cells), tt.mask.Count())
			assert.Equal(t, tt.cols, tt.mask.Cols())
		})
	}
}

func TestMaskActive(t *testing.T) {
	m := Mask{{1, 0}, {1}}
	assert.True(t, m.Active(0, 0))
	assert.False(t, m.Active(0, 1))
	assert.False(t, m.Active(1, 1))
	assert.False(t, m.Active(-1, 0))
	assert.False(t, m.Active(5, 0))
}

func TestComputeFullGrid(t *testing.T) {
	box := Box{X: 0, Y: 0, Width: 230, Height: 230}
	g := Compute(Mask{{1, 1}, {1, 1}}, box, Options{Padding: 10, Margin: 10})

	require.Len(t, g.Placements, 4)
	// (230 - 2*10 - 10) / 2
	assert.InDelta(t, 100, g.CellWidth, 1e-9)
	assert.InDelta(t, 100, g.CellHeight, 1e-9)
	assert.InDelta(t, 10, g.OriginX, 1e-9)
	assert.InDelta(t, 10, g.OriginY, 1e-9)

	last := g.Placements[3]
	assert.Equal(t, Cell{Row: 1, Col: 1}, last.Cell)
	assert.InDelta(t, 120, last.X, 1e-9)
	assert.InDelta(t, 120, last.Y, 1e-9)
}

func TestComputeCentersFullExtentForSparseShapes(t *testing.T) {
	box := Box{X: 100, Y: 50, Width: 400, Height: 200}
	full := Compute(Mask{{1, 1, 1}, {1, 1, 1}}, box, Options{Padding: 5})
	sparse := Compute(Mask{{1, 0, 0}, {0, 0, 1}}, box, Options{Padding: 5})

	assert.Equal(t, full.CellWidth, sparse.CellWidth)
	assert.Equal(t, full.OriginX, sparse.OriginX)
	assert.Equal(t, full.OriginY, sparse.OriginY)

	require.Len(t, sparse.Placements, 2)
	assert.Equal(t, full.Placements[0].X, sparse.Placements[0].X)
	assert.Equal(t, full.Placements[5].X, sparse.Placements[1].X)
	assert.Equal(t, full.Placements[5].Y, sparse.Placements[1].Y)
}

func TestComputeSquareCells(t *testing.T) {
	box := Box{Width: 300, Height: 100}
	g := Compute(Mask{{1, 1}}, box, Options{Square: true})

	assert.InDelta(t, 100, g.CellWidth, 1e-9)
	assert.InDelta(t, 100, g.CellHeight, 1e-9)
	// 200 wide grid centered in 300
	assert.InDelta(t, 50, g.OriginX, 1e-9)
}

func TestComputeFloorsDegenerateSizes(t *testing.T) {
	g := Compute(Mask{{1, 1, 1, 1}}, Box{Width: 10, Height: 10}, Options{Padding: 20})

	assert.Equal(t, MinCellSize, g.CellWidth)
	require.Len(t, g.Placements, 4)
	for _, p := range g.Placements {
		assert.Positive(t, p.Width)
		assert.Positive(t, p.Height)
	}
}

func TestComputeNoActiveCells(t *testing.T) {
	g := Compute(Mask{{0, 0}, {0, 0}}, Box{Width: 100, Height: 100}, Options{})
	assert.Empty(t, g.Placements)
	assert.Empty(t, g.Cells())

	g = Compute(nil, Box{Width: 100, Height: 100}, Options{})
	assert.Empty(t, g.Placements)
	assert.Zero(t, g.Width())
}
