// Package render draws rain frames on an ANSI truecolor terminal.
package render

import (
	"io"
	"strings"

	"matrix-rain/internal/rain"
)

// Cell represents a single terminal cell with full RGB color.
type Cell struct {
	Ch     rune
	Fg, Bg rain.RGB
}

// sentinel never matches a drawn cell, so the first diff after a resize
// repaints everything.
var sentinel = Cell{Ch: '\x00', Fg: rain.RGB{R: 255}, Bg: rain.RGB{B: 255}}

// Engine is a per-session double-buffer diff renderer. It is the glyph
// drawer for a terminal-sized rain grid with cell size 1.
type Engine struct {
	out           io.Writer
	width, height int
	bg            rain.RGB
	current       [][]Cell
	next          [][]Cell
	firstFrame    bool
}

// NewEngine creates a renderer for the given terminal dimensions that
// presents frames to out.
func NewEngine(out io.Writer, width, height int) *Engine {
	e := &Engine{out: out}
	e.Resize(width, height)
	return e
}

// Resize adjusts the renderer for a new terminal size.
func (e *Engine) Resize(width, height int) {
	e.width = max(width, 0)
	e.height = max(height, 0)
	e.current = e.makeBuffer(sentinel)
	e.next = e.makeBuffer(Cell{Ch: ' '})
	e.firstFrame = true
}

// Size returns the terminal dimensions in cells.
func (e *Engine) Size() (width, height int) {
	return e.width, e.height
}

func (e *Engine) makeBuffer(fill Cell) [][]Cell {
	buf := make([][]Cell, e.height)
	for y := 0; y < e.height; y++ {
		buf[y] = make([]Cell, e.width)
		for x := 0; x < e.width; x++ {
			buf[y][x] = fill
		}
	}
	return buf
}

// Fill clears the next frame to the background color.
func (e *Engine) Fill(bg rain.RGB) {
	e.bg = bg
	blank := Cell{Ch: ' ', Fg: bg, Bg: bg}
	for y := range e.next {
		row := e.next[y]
		for x := range row {
			row[x] = blank
		}
	}
}

// DrawGlyph puts glyph at column x, row y of the next frame. Positions off
// the terminal are ignored.
func (e *Engine) DrawGlyph(x, y int, glyph rune, c rain.RGB) {
	if x < 0 || y < 0 || x >= e.width || y >= e.height {
		return
	}
	e.next[y][x] = Cell{Ch: glyph, Fg: c, Bg: e.bg}
}

// Flush diffs the next frame against what the terminal shows, returns the
// escape sequences for the changed cells and swaps the buffers.
func (e *Engine) Flush() string {
	var sb strings.Builder
	sb.Grow(16384)

	lastRow, lastCol := -1, -1
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			nc := e.next[y][x]
			if e.firstFrame || nc != e.current[y][x] {
				// Only emit cursor position if not consecutive
				if y != lastRow || x != lastCol {
					sb.WriteString(MoveTo(y+1, x+1))
				}
				WriteCellSGR(&sb, nc)
				lastRow = y
				lastCol = x + 1
			}
		}
	}

	if sb.Len() > 0 {
		sb.WriteString(Reset)
	}

	e.current, e.next = e.next, e.current
	e.firstFrame = false

	return sb.String()
}

// Present flushes the frame to the output writer.
func (e *Engine) Present() error {
	out := e.Flush()
	if out == "" {
		return nil
	}
	_, err := io.WriteString(e.out, out)
	return err
}

// Snapshot returns the last presented frame as text rows, one terminal
// line per row, for printing outside a full-screen session. It is empty
// until the first Present.
func (e *Engine) Snapshot() string {
	if e.firstFrame {
		return ""
	}
	var sb strings.Builder
	for _, row := range e.current {
		for _, c := range row {
			WriteCellSGR(&sb, c)
		}
		sb.WriteString(Reset)
		sb.WriteByte('\n')
	}
	return sb.String()
}
