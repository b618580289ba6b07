package loop

import (
	"fmt"
	"math/rand/v2"

	"matrix-rain/internal/rain"
	"matrix-rain/internal/wallpaper"
)

// GridBuilder makes grids sized to a surface and colored from a wallpaper.
type GridBuilder struct {
	Params     rain.Params
	PartialRow bool
	Wallpaper  *wallpaper.Source
	Rand       *rand.Rand
}

// NewRand returns a randomly seeded PCG source.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Build returns a grid covering a w x h surface that draws through d.
func (b GridBuilder) Build(w, h int, d rain.GlyphDrawer) (*rain.Grid, error) {
	cols, rows := rain.Dimensions(w, h, b.Params.CellSize, b.PartialRow)
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("%w: %dx%d surface holds no %d-unit cells", rain.ErrInvalidSize, w, h, b.Params.CellSize)
	}
	rng := b.Rand
	if rng == nil {
		rng = NewRand()
	}
	return rain.NewGrid(b.Params, cols, rows, b.Wallpaper.Sampler(w, h), d, rng)
}
