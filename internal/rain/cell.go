package rain

import "time"

// Cell is one glyph slot at a fixed row of a column.
type Cell struct {
	Glyph rune // zero until the first reseed
	Color RGB  // current display color
	Limit RGB  // floor the color decays toward

	fresh bool // reseeded since the last render pass
}

// Seeded reports whether the cell has ever been given a glyph.
func (c Cell) Seeded() bool {
	return c.Glyph != 0
}

// Floored reports whether the color has decayed all the way to its limit.
func (c Cell) Floored() bool {
	return c.Seeded() && c.Color == c.Limit
}

func (c *Cell) seed(glyph rune, color, limit RGB) {
	c.Glyph = glyph
	c.Color = color
	c.Limit = clampBelow(limit, color)
	c.fresh = true
}

// Timer accumulates elapsed time against a delay threshold.
type Timer struct {
	Delay   time.Duration
	Elapsed time.Duration
}

// Advance adds d to the elapsed time.
func (t *Timer) Advance(d time.Duration) {
	t.Elapsed += d
}

// Expired reports whether the elapsed time has reached the delay.
func (t *Timer) Expired() bool {
	return t.Elapsed >= t.Delay
}

// Reset starts a new wait of the given delay.
func (t *Timer) Reset(delay time.Duration) {
	t.Delay = delay
	t.Elapsed = 0
}

// Trail is a cursor walking down a column, reseeding the cell at
// Position every time its timer fires.
type Trail struct {
	Position int
	Timer    Timer
}
