// Package wallpaper loads the picture the rain takes its colors from.
package wallpaper

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"matrix-rain/internal/rain"
)

// Load decodes a PNG, JPEG, GIF, WebP or BMP file.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%s: empty image", path)
	}
	return img, nil
}

// Image is a wallpaper scaled to an exact surface size.
type Image struct {
	rgba *image.RGBA
}

// Scale resizes src to w x h with Catmull-Rom filtering.
func Scale(src image.Image, w, h int) *Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return &Image{rgba: dst}
}

// Fill returns a w x h wallpaper of a single color.
func Fill(w, h int, c rain.RGB) *Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = c.R
		dst.Pix[i+1] = c.G
		dst.Pix[i+2] = c.B
		dst.Pix[i+3] = 0xFF
	}
	return &Image{rgba: dst}
}

// Size returns the surface size the image was scaled to.
func (m *Image) Size() (w, h int) {
	b := m.rgba.Bounds()
	return b.Dx(), b.Dy()
}

// Sample returns the color at (x, y). Positions outside the image are a
// programming error and panic.
func (m *Image) Sample(x, y int) rain.RGB {
	if !(image.Point{x, y}).In(m.rgba.Rect) {
		panic(fmt.Sprintf("wallpaper: sample (%d,%d) outside %v", x, y, m.rgba.Rect))
	}
	i := m.rgba.PixOffset(x, y)
	p := m.rgba.Pix[i : i+3 : i+3]
	return rain.RGB{R: p[0], G: p[1], B: p[2]}
}
