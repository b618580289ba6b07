// Package rain implements the per-column trail animation behind the
// digital rain effect.
//
// A Grid is a row of Columns. Each Column owns a fixed sequence of Cells
// and one or more Trails. When a trail's timer fires it reseeds the cell
// under it with a random glyph and a bright color derived from the
// wallpaper, then moves down one row. Every frame each seeded cell is
// drawn and decays one step toward its floor color.
package rain

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

// Sampler returns the wallpaper color at a surface position.
type Sampler interface {
	Sample(x, y int) RGB
}

// GlyphDrawer draws one glyph at a surface position. The target surface is
// bound by the implementation.
type GlyphDrawer interface {
	DrawGlyph(x, y int, glyph rune, c RGB)
}

// ErrInvalidSize is wrapped when a grid would have no columns or rows.
var ErrInvalidSize = errors.New("invalid grid size")

// Dimensions returns how many columns and rows of cellSize boxes fit on a
// screenW x screenH surface. With partialRow a trailing partial row is
// counted as a full one.
func Dimensions(screenW, screenH, cellSize int, partialRow bool) (width, length int) {
	if cellSize < 1 {
		return 0, 0
	}
	width = screenW / cellSize
	length = screenH / cellSize
	if partialRow && screenH%cellSize != 0 {
		length++
	}
	return width, length
}

// Grid is the full set of columns spanning a surface.
type Grid struct {
	params  Params
	columns []*Column
}

// NewGrid builds width columns of length cells each. The sampler must
// cover (width*CellSize) x (length*CellSize) surface units, or at least
// every cell origin inside that area.
func NewGrid(p Params, width, length int, s Sampler, d GlyphDrawer, rng *rand.Rand) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if width < 1 || length < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, length)
	}
	if s == nil || d == nil || rng == nil {
		return nil, errors.New("rain: nil sampler, drawer or random source")
	}

	g := &Grid{params: p}
	g.params.Alphabet = slices.Clone(p.Alphabet)
	g.columns = make([]*Column, width)
	for i := range g.columns {
		g.columns[i] = newColumn(i, length, &g.params, s, d, rng)
	}
	return g, nil
}

// Update advances and draws every column. Columns are independent, so the
// order only matters for which glyph lands on top in overlapping drawers.
func (g *Grid) Update(delta time.Duration) {
	for _, c := range g.columns {
		c.Update(delta)
	}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return len(g.columns) }

// Length returns the number of cells per column.
func (g *Grid) Length() int {
	if len(g.columns) == 0 {
		return 0
	}
	return g.columns[0].Len()
}

// Column returns the column at index i.
func (g *Grid) Column(i int) *Column { return g.columns[i] }

// Params returns a copy of the grid's tunables.
func (g *Grid) Params() Params { return g.params }

// Stats summarises the grid state.
type Stats struct {
	Columns int
	Trails  int
	Seeded  int
	Floored int
}

// Stats counts trails and seeded and floored cells.
func (g *Grid) Stats() Stats {
	st := Stats{Columns: len(g.columns)}
	for _, c := range g.columns {
		st.Trails += len(c.trails)
		for i := range c.cells {
			if c.cells[i].Seeded() {
				st.Seeded++
			}
			if c.cells[i].Floored() {
				st.Floored++
			}
		}
	}
	return st
}
