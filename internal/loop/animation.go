package loop

import (
	"time"

	"matrix-rain/internal/rain"
)

// Animation is a scene that rebuilds its grid when the surface is resized
// or the wallpaper is reloaded.
type Animation struct {
	scene    *Scene
	builder  GridBuilder
	drawer   rain.GlyphDrawer
	onResize func(w, h int)

	// guarded by scene.mu
	w, h int

	version uint64
}

// NewAnimation builds the first grid for a w x h surface. Frames are
// composed on c and glyphs drawn through d, which are usually the same
// value.
func NewAnimation(c Canvas, d rain.GlyphDrawer, b GridBuilder, background rain.RGB, w, h int) (*Animation, error) {
	if b.Rand == nil {
		b.Rand = NewRand()
	}
	version := b.Wallpaper.Version()
	g, err := b.Build(w, h, d)
	if err != nil {
		return nil, err
	}
	return &Animation{
		scene:   NewScene(c, g, background),
		builder: b,
		drawer:  d,
		w:       w,
		h:       h,
		version: version,
	}, nil
}

// OnResize registers f to run, between frames, after a successful rebuild
// for a new size.
func (a *Animation) OnResize(f func(w, h int)) { a.onResize = f }

// Resize rebuilds the grid for a w x h surface. On error the previous grid
// and size stay in place.
func (a *Animation) Resize(w, h int) error {
	return a.scene.Rebuild(func() (*rain.Grid, error) {
		g, err := a.builder.Build(w, h, a.drawer)
		if err != nil {
			return nil, err
		}
		a.w, a.h = w, h
		if a.onResize != nil {
			a.onResize(w, h)
		}
		return g, nil
	})
}

// Step renders one frame, first picking up a reloaded wallpaper. It has
// the StepFunc signature.
func (a *Animation) Step(delta time.Duration) error {
	if v := a.builder.Wallpaper.Version(); v != a.version {
		a.version = v
		err := a.scene.Rebuild(func() (*rain.Grid, error) {
			return a.builder.Build(a.w, a.h, a.drawer)
		})
		if err != nil {
			return err
		}
	}
	return a.scene.Step(delta)
}

// Grid returns the grid currently being drawn.
func (a *Animation) Grid() *rain.Grid { return a.scene.Grid() }
