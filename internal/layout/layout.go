// Package layout places the cells of an irregular board shape inside a
// bounding box.
//
// A shape is a binary mask: rows of 0/1 markers where 1 marks a cell that
// hosts a card. Rows may be ragged; positions past the end of a row are
// inactive. Active cells are always reported in row-major order, and that
// order is the card index order used by the rest of the game.
//
// The grid is centered using its full cols × rows extent, so a sparse shape
// keeps the same cell size and slot positions as a full grid of the same
// dimensions.
package layout

import "math"

// MinCellSize is the smallest width or height a cell is given when the
// bounding box is too small for the grid.
const MinCellSize = 1.0

// Mask is a shape mask. A value of 1 marks an active cell.
type Mask [][]int

// Rows returns the number of rows in the mask.
func (m Mask) Rows() int { return len(m) }

// Cols returns the length of the longest row.
func (m Mask) Cols() int {
	cols := 0
	for _, row := range m {
		cols = max(cols, len(row))
	}
	return cols
}

// Active reports whether (row, col) is an active cell.
func (m Mask) Active(row, col int) bool {
	if row < 0 || row >= len(m) {
		return false
	}
	if col < 0 || col >= len(m[row]) {
		return false
	}
	return m[row][col] == 1
}

// Count returns the number of active cells.
func (m Mask) Count() int {
	n := 0
	for _, row := range m {
		for _, v := range row {
			if v == 1 {
				n++
			}
		}
	}
	return n
}

// Cells returns the active cells in row-major order.
func (m Mask) Cells() []Cell {
	cells := make([]Cell, 0, m.Count())
	for r, row := range m {
		for c, v := range row {
			if v == 1 {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// Cell is an active mask position.
type Cell struct {
	Row int
	Col int
}

// Box is a top-left anchored placement region.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Options controls spacing.
type Options struct {
	// Padding is the gap between neighbouring cells.
	Padding float64
	// Margin is the inset applied on every side of the box.
	Margin float64
	// Square sizes cells as min(width, height) on both axes.
	Square bool
}

// Placement is a cell together with its rectangle.
type Placement struct {
	Cell
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Grid is the result of laying out a mask.
type Grid struct {
	Rows       int
	Cols       int
	CellWidth  float64
	CellHeight float64
	OriginX    float64
	OriginY    float64
	Padding    float64
	Placements []Placement
}

// Cells returns the active cells in card index order.
func (g Grid) Cells() []Cell {
	cells := make([]Cell, len(g.Placements))
	for i, p := range g.Placements {
		cells[i] = p.Cell
	}
	return cells
}

// Width returns the extent of the full grid, including inactive slots.
func (g Grid) Width() float64 {
	return extent(g.Cols, g.CellWidth, g.Padding)
}

// Height returns the extent of the full grid, including inactive slots.
func (g Grid) Height() float64 {
	return extent(g.Rows, g.CellHeight, g.Padding)
}

// Compute lays out mask inside box. A mask without active cells yields a grid
// with no placements.
func Compute(mask Mask, box Box, opts Options) Grid {
	rows := mask.Rows()
	cols := mask.Cols()

	g := Grid{
		Rows:    rows,
		Cols:    cols,
		Padding: opts.Padding,
	}
	if rows == 0 || cols == 0 {
		g.OriginX = box.X + box.Width/2
		g.OriginY = box.Y + box.Height/2
		return g
	}

	availW := box.Width - 2*opts.Margin
	availH := box.Height - 2*opts.Margin

	g.CellWidth = cellSize(availW, cols, opts.Padding)
	g.CellHeight = cellSize(availH, rows, opts.Padding)
	if opts.Square {
		side := math.Min(g.CellWidth, g.CellHeight)
		g.CellWidth, g.CellHeight = side, side
	}

	g.OriginX = box.X + (box.Width-g.Width())/2
	g.OriginY = box.Y + (box.Height-g.Height())/2

	cells := mask.Cells()
	g.Placements = make([]Placement, len(cells))
	for i, cell := range cells {
		g.Placements[i] = Placement{
			Cell:   cell,
			X:      g.OriginX + float64(cell.Col)*(g.CellWidth+opts.Padding),
			Y:      g.OriginY + float64(cell.Row)*(g.CellHeight+opts.Padding),
			Width:  g.CellWidth,
			Height: g.CellHeight,
		}
	}
	return g
}

func cellSize(available float64, count int, padding float64) float64 {
	size := (available - padding*float64(count-1)) / float64(count)
	if size < MinCellSize || math.IsNaN(size) {
		return MinCellSize
	}
	return size
}

func extent(count int, size, padding float64) float64 {
	if count == 0 {
		return 0
	}
	return float64(count)*size + padding*float64(count-1)
}
