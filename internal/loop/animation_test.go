package loop

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"matrix-rain/internal/rain"
	"matrix-rain/internal/wallpaper"
)

func testBuilder(src *wallpaper.Source) GridBuilder {
	p := rain.DefaultParams()
	p.CellSize = 1
	p.MinDelay, p.MaxDelay = 0, 0
	return GridBuilder{Params: p, Wallpaper: src}
}

func TestAnimationResize(t *testing.T) {
	c := &fakeCanvas{}
	a, err := NewAnimation(c, c, testBuilder(wallpaper.NewSource("", rain.RGB{G: 90})), rain.RGB{}, 10, 5)
	if err != nil {
		t.Fatal(err)
	}

	var resized [2]int
	a.OnResize(func(w, h int) { resized = [2]int{w, h} })

	if err := a.Resize(20, 8); err != nil {
		t.Fatal(err)
	}
	if g := a.Grid(); g.Width() != 20 || g.Length() != 8 {
		t.Errorf("expected 20x8, got %dx%d", g.Width(), g.Length())
	}
	if resized != [2]int{20, 8} {
		t.Errorf("resize hook got %v", resized)
	}

	if err := a.Resize(0, 8); !errors.Is(err, rain.ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
	if resized != [2]int{20, 8} || a.Grid().Width() != 20 {
		t.Error("failed resize changed state")
	}
}

func writeSolidPNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// TestAnimationPicksUpReload checks that a reloaded wallpaper replaces the
// grid on the next frame.
func TestAnimationPicksUpReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.png")
	writeSolidPNG(t, path, color.RGBA{R: 80, A: 255})
	src := wallpaper.NewSource(path, rain.RGB{})

	c := &fakeCanvas{}
	a, err := NewAnimation(c, c, testBuilder(src), rain.RGB{}, 6, 6)
	if err != nil {
		t.Fatal(err)
	}
	before := a.Grid()
	if err := a.Step(16 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if a.Grid() != before {
		t.Fatal("grid rebuilt without a reload")
	}

	writeSolidPNG(t, path, color.RGBA{B: 80, A: 255})
	if err := src.Reload(); err != nil {
		t.Fatal(err)
	}
	if err := a.Step(16 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	g := a.Grid()
	if g == before {
		t.Fatal("grid not rebuilt after reload")
	}
	for i := 0; i < g.Width(); i++ {
		for row := 0; row < g.Length(); row++ {
			if cell := g.Column(i).Cell(row); cell.Seeded() && cell.Color.R != 0 {
				t.Fatalf("cell (%d,%d) still has the old red tint: %v", i, row, cell.Color)
			}
		}
	}
}
