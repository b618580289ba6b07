// Package window shows the rain in a desktop window with ebiten.
package window

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"matrix-rain/internal/loop"
	"matrix-rain/internal/rain"
)

const title = "Matrix Rain"

// LoadFace opens a TrueType font for glyphs of the given size. An empty
// path uses the bundled M+ 1p font, which covers katakana.
func LoadFace(path string, size float64) (*text.GoTextFace, error) {
	data := fonts.MPlus1pRegular_ttf
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		data = b
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &text.GoTextFace{Source: src, Size: size}, nil
}

// Options configure the window.
type Options struct {
	Builder    loop.GridBuilder
	Background rain.RGB
	Face       *text.GoTextFace
	Fullscreen bool
	Clock      loop.Clock
}

// Game implements ebiten.Game. Frames are drawn on an offscreen canvas
// during Update and copied to the screen in Draw.
type Game struct {
	opts   Options
	canvas *ebiten.Image
	anim   *loop.Animation

	// size reported by the last Layout call
	outW, outH int
	// size the grid was last built or rebuilt for
	gridW, gridH int

	last    time.Time
	started bool
}

// New creates the game. The grid is built on the first Update, once the
// window size is known.
func New(opts Options) *Game {
	if opts.Clock == nil {
		opts.Clock = loop.SystemClock{}
	}
	return &Game{opts: opts}
}

// Run opens the window and blocks until the user quits.
func Run(g *Game, fps int) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(fps)
	g.setFullscreen(g.opts.Fullscreen)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *Game) setFullscreen(on bool) {
	ebiten.SetFullscreen(on)
	if on {
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
		ebiten.SetWindowTitle(title)
	}
}

// Update handles input, rebuilds on resize and steps the animation.
func (g *Game) Update() error {
	switch commandFor(ebitenKeys{}) {
	case cmdQuit:
		return ebiten.Termination
	case cmdToggleFullscreen:
		g.setFullscreen(!ebiten.IsFullscreen())
	}

	if g.outW < 1 || g.outH < 1 {
		return nil
	}
	g.ensureSize()
	if g.anim == nil {
		return nil
	}

	now := g.opts.Clock.Now()
	var delta time.Duration
	if g.started {
		delta = max(now.Sub(g.last), 0)
	}
	g.last, g.started = now, true

	if err := g.anim.Step(delta); err != nil {
		return err
	}
	if !ebiten.IsFullscreen() {
		ebiten.SetWindowTitle(windowTitle(ebiten.ActualFPS()))
	}
	return nil
}

// ensureSize builds the grid on first use and rebuilds it when the window
// size changes. A size that cannot hold a grid is logged once and the
// previous grid, if any, stays.
func (g *Game) ensureSize() {
	if g.gridW == g.outW && g.gridH == g.outH {
		return
	}
	g.gridW, g.gridH = g.outW, g.outH

	if g.anim != nil {
		if err := g.anim.Resize(g.outW, g.outH); err != nil {
			log.Printf("Keeping previous grid: %v", err)
		}
		return
	}
	anim, err := loop.NewAnimation(g, g, g.opts.Builder, g.opts.Background, g.outW, g.outH)
	if err != nil {
		log.Printf("Waiting for a larger window: %v", err)
		return
	}
	g.canvas = ebiten.NewImage(g.outW, g.outH)
	anim.OnResize(func(w, h int) {
		g.canvas.Deallocate()
		g.canvas = ebiten.NewImage(w, h)
	})
	g.anim = anim
	log.Printf("Window grid %dx%d cells", anim.Grid().Width(), anim.Grid().Length())
}

// Draw copies the last composed frame to the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas != nil {
		screen.DrawImage(g.canvas, nil)
	}
}

// Layout uses the window size as the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.outW, g.outH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Fill clears the canvas.
func (g *Game) Fill(bg rain.RGB) {
	g.canvas.Fill(toColor(bg))
}

// DrawGlyph draws glyph with its top-left corner at (x, y).
func (g *Game) DrawGlyph(x, y int, glyph rune, c rain.RGB) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(toColor(c))
	text.Draw(g.canvas, string(glyph), g.opts.Face, op)
}

// Present is a no-op; Draw shows the canvas.
func (g *Game) Present() error { return nil }

func toColor(c rain.RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

func windowTitle(fps float64) string {
	return fmt.Sprintf("%s - FPS: %.2f", title, fps)
}

type command int

const (
	cmdNone command = iota
	cmdQuit
	cmdToggleFullscreen
)

type keySource interface {
	justPressed(k ebiten.Key) bool
}

type ebitenKeys struct{}

func (ebitenKeys) justPressed(k ebiten.Key) bool { return inpututil.IsKeyJustPressed(k) }

func commandFor(keys keySource) command {
	switch {
	case keys.justPressed(ebiten.KeyEscape), keys.justPressed(ebiten.KeyQ):
		return cmdQuit
	case keys.justPressed(ebiten.KeyF):
		return cmdToggleFullscreen
	}
	return cmdNone
}
