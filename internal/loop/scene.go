package loop

import (
	"sync"
	"time"

	"matrix-rain/internal/rain"
)

// Canvas is a surface a frame is composed on and then shown.
type Canvas interface {
	Fill(bg rain.RGB)
	Present() error
}

// Scene composes one frame: clear to the background, update and draw the
// grid, present.
type Scene struct {
	mu         sync.Mutex
	canvas     Canvas
	grid       *rain.Grid
	background rain.RGB
}

// NewScene binds a grid to the canvas its drawer paints on.
func NewScene(c Canvas, g *rain.Grid, background rain.RGB) *Scene {
	return &Scene{canvas: c, grid: g, background: background}
}

// Step renders one frame. It has the StepFunc signature.
func (s *Scene) Step(delta time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.canvas.Fill(s.background)
	s.grid.Update(delta)
	return s.canvas.Present()
}

// Rebuild runs build between frames and swaps in the grid it returns. On
// error the current grid is kept.
func (s *Scene) Rebuild(build func() (*rain.Grid, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := build()
	if err != nil {
		return err
	}
	s.grid = g
	return nil
}

// Grid returns the grid currently being drawn.
func (s *Scene) Grid() *rain.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}
