// Package grid holds the block grid produced by the quantizer.
package grid

import "fmt"

// Grid is a Width by Height grid of variant identifiers addressed by (x, y)
// with (0, 0) in the top-left corner.
type Grid struct {
	width  int
	height int
	cells  []string
}

// New returns an empty grid. Unvisited cells hold the empty string.
func New(width, height int) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("grid: invalid size %dx%d", width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]string, width*height),
	}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// At returns the identifier at (x, y).
func (g *Grid) At(x, y int) string {
	return g.cells[y*g.width+x]
}

// Set stores the identifier at (x, y).
func (g *Grid) Set(x, y int, id string) {
	g.cells[y*g.width+x] = id
}

// Count returns how many cells hold id.
func (g *Grid) Count(id string) int {
	var n int
	for _, c := range g.cells {
		if c == id {
			n++
		}
	}
	return n
}
