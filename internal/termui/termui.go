// Package termui runs the rain in the local terminal through tcell.
package termui

import (
	"context"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"matrix-rain/internal/loop"
	"matrix-rain/internal/rain"
)

// Canvas draws glyphs onto a tcell screen.
type Canvas struct {
	screen tcell.Screen
	style  tcell.Style
}

// NewCanvas wraps an initialised screen.
func NewCanvas(s tcell.Screen) *Canvas {
	return &Canvas{screen: s, style: tcell.StyleDefault}
}

func rgb(c rain.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Fill clears the screen to bg.
func (c *Canvas) Fill(bg rain.RGB) {
	col := rgb(bg)
	c.style = tcell.StyleDefault.Background(col).Foreground(col)
	c.screen.Fill(' ', c.style)
}

// DrawGlyph sets one cell. tcell drops positions off the screen.
func (c *Canvas) DrawGlyph(x, y int, glyph rune, col rain.RGB) {
	c.screen.SetContent(x, y, glyph, nil, c.style.Foreground(rgb(col)))
}

// Present shows the composed frame.
func (c *Canvas) Present() error {
	c.screen.Show()
	return nil
}

// App is the terminal frontend: a frame loop plus keyboard and resize
// handling.
type App struct {
	screen   tcell.Screen
	anim     *loop.Animation
	interval time.Duration
}

// NewApp builds the first grid for the current screen size.
func NewApp(s tcell.Screen, b loop.GridBuilder, background rain.RGB, interval time.Duration) (*App, error) {
	s.HideCursor()
	c := NewCanvas(s)
	w, h := s.Size()
	anim, err := loop.NewAnimation(c, c, b, background, w, h)
	if err != nil {
		return nil, err
	}
	anim.OnResize(func(int, int) { s.Sync() })
	return &App{screen: s, anim: anim, interval: interval}, nil
}

// Grid returns the grid being animated.
func (a *App) Grid() *rain.Grid { return a.anim.Grid() }

// Run animates until ctx is cancelled or the user quits with q, Escape or
// Ctrl-C.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			// nil once the screen is finalized
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				if !a.handleEvent(ev) {
					cancel()
					return
				}
			}
		}
	}()

	return loop.New(a.interval, nil, a.anim.Step).Run(ctx)
}

// handleEvent reports false when the event asks to quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return !isQuitKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		w, h := ev.Size()
		if err := a.anim.Resize(w, h); err != nil {
			log.Printf("Keeping previous grid: %v", err)
		}
	}
	return true
}

func isQuitKey(k tcell.Key, r rune) bool {
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return r == 'q' || r == 'Q'
	}
	return false
}
