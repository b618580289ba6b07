package rain

import (
	"math/rand/v2"
	"time"
)

// Column is one vertical strip of cells with its own trails. Columns
// share nothing mutable with each other except the grid's random source.
type Column struct {
	index  int
	cells  []Cell
	trails []Trail

	params  *Params
	sampler Sampler
	drawer  GlyphDrawer
	rng     *rand.Rand
}

func newColumn(index, length int, p *Params, s Sampler, d GlyphDrawer, rng *rand.Rand) *Column {
	c := &Column{
		index:   index,
		cells:   make([]Cell, length),
		params:  p,
		sampler: s,
		drawer:  d,
		rng:     rng,
	}
	c.trails = c.spawnTrails()
	return c
}

// spawnTrails creates between MinTrails and MaxTrails trails starting on
// distinct rows, each with its own random delay.
func (c *Column) spawnTrails() []Trail {
	n := c.params.MinTrails + c.rng.IntN(c.params.MaxTrails-c.params.MinTrails+1)
	rows := sampleRows(c.rng, len(c.cells), n)
	trails := make([]Trail, len(rows))
	for i, row := range rows {
		trails[i] = Trail{Position: row, Timer: Timer{Delay: c.randomDelay()}}
	}
	return trails
}

// sampleRows draws min(k, n) distinct values from [0, n) with a partial
// Fisher-Yates shuffle.
func sampleRows(rng *rand.Rand, n, k int) []int {
	if k > n {
		k = n
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:k]
}

func (c *Column) randomDelay() time.Duration {
	span := c.params.MaxDelay - c.params.MinDelay
	if span <= 0 {
		return c.params.MinDelay
	}
	return c.params.MinDelay + time.Duration(c.rng.Int64N(int64(span)))
}

// Index returns the column's position in the grid.
func (c *Column) Index() int { return c.index }

// Len returns the number of cells in the column.
func (c *Column) Len() int { return len(c.cells) }

// Cell returns a copy of the cell at row.
func (c *Column) Cell(row int) Cell { return c.cells[row] }

// Trails returns a copy of the column's trails.
func (c *Column) Trails() []Trail {
	out := make([]Trail, len(c.trails))
	copy(out, c.trails)
	return out
}

// Update advances every trail by delta, reseeding the cells of trails
// that fire, then draws and decays the column.
func (c *Column) Update(delta time.Duration) {
	for i := range c.trails {
		c.advance(&c.trails[i], delta)
	}
	c.render()
}

func (c *Column) advance(t *Trail, delta time.Duration) {
	if !c.fires(t, delta) {
		return
	}
	c.reseed(t.Position)
	t.Position = (t.Position + 1) % len(c.cells)

	switch c.params.Policy {
	case ResetEveryFire:
		t.Timer.Reset(c.randomDelay())
	case ResetOnWrap:
		if t.Position == 0 {
			t.Timer.Reset(c.randomDelay())
		}
	}
}

func (c *Column) fires(t *Trail, delta time.Duration) bool {
	if c.params.Policy == NoGating {
		return delta > 0
	}
	t.Timer.Advance(delta)
	return t.Timer.Expired()
}

func (c *Column) reseed(row int) {
	p := c.params
	glyph := p.Alphabet[c.rng.IntN(len(p.Alphabet))]
	base := c.sampler.Sample(c.index*p.CellSize, row*p.CellSize)
	c.cells[row].seed(glyph, p.Ceiling(base), p.Floor(base))
}

// render draws every seeded cell. A cell reseeded this frame is drawn at
// its ceiling; every other cell first takes one decay step, so the drawn
// sequence is ceiling, ceiling-step, ... down to the limit.
func (c *Column) render() {
	size := c.params.CellSize
	x := c.index * size
	for row := range c.cells {
		cell := &c.cells[row]
		if !cell.Seeded() {
			continue
		}
		if cell.fresh {
			cell.fresh = false
		} else {
			cell.Color = decayToward(cell.Color, c.params.DeltaColor, cell.Limit)
		}
		c.drawer.DrawGlyph(x, row*size, cell.Glyph, cell.Color)
	}
}
