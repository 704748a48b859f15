// Package frame assembles per-cycle pixel samples into a frame buffer.
package frame

import (
	"image"
	"image/color"

	"github.com/cespare/xxhash/v2"
)

// Color is an 8-bit-per-channel RGB colour.
type Color struct {
	R, G, B uint8
}

// RGBA converts to the standard library's opaque colour type.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// Sample is what a design reports on one clock phase: the scan position,
// the colour at that position and whether it is inside the visible area.
type Sample struct {
	X, Y  int
	Color Color
	Valid bool
}

// Buffer is a dense, opaque RGBA frame buffer. It is allocated once and
// never resized.
type Buffer struct {
	img *image.RGBA
}

// NewBuffer allocates a width x height buffer cleared to opaque black.
func NewBuffer(width, height int) *Buffer {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
	return &Buffer{img: img}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.img.Rect.Dx() }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.img.Rect.Dy() }

// Contains reports whether (x, y) is inside the buffer.
func (b *Buffer) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width() && y < b.Height()
}

// Pixel returns the colour at (x, y). The caller must stay in bounds.
func (b *Buffer) Pixel(x, y int) Color {
	i := b.img.PixOffset(x, y)
	p := b.img.Pix[i : i+3 : i+3]
	return Color{R: p[0], G: p[1], B: p[2]}
}

func (b *Buffer) set(x, y int, c Color) {
	i := b.img.PixOffset(x, y)
	p := b.img.Pix[i : i+3 : i+3]
	p[0] = c.R
	p[1] = c.G
	p[2] = c.B
}

// View returns a read-only view of the buffer.
func (b *Buffer) View() View {
	return View{buf: b}
}

// View is a read-only borrow of a Buffer handed to a display sink for the
// duration of one publish. Sinks must copy what they need before returning.
// View implements image.Image.
type View struct {
	buf *Buffer
}

// Width returns the frame width in pixels.
func (v View) Width() int { return v.buf.Width() }

// Height returns the frame height in pixels.
func (v View) Height() int { return v.buf.Height() }

// Pixel returns the colour at (x, y).
func (v View) Pixel(x, y int) Color { return v.buf.Pixel(x, y) }

// Pix returns the row-major RGBA bytes. The slice aliases the frame buffer:
// it must not be written to or retained past the publish.
func (v View) Pix() []byte { return v.buf.img.Pix }

// Stride returns the distance in bytes between vertically adjacent pixels.
func (v View) Stride() int { return v.buf.img.Stride }

// CopyTo copies the RGBA bytes into dst and returns the number of bytes
// copied.
func (v View) CopyTo(dst []byte) int {
	return copy(dst, v.buf.img.Pix)
}

// Digest returns a 64-bit hash of the pixel contents.
func (v View) Digest() uint64 {
	return xxhash.Sum64(v.buf.img.Pix)
}

// ColorModel implements image.Image.
func (v View) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (v View) Bounds() image.Rectangle { return v.buf.img.Rect }

// At implements image.Image.
func (v View) At(x, y int) color.Color {
	if !v.buf.Contains(x, y) {
		return color.RGBA{}
	}
	return v.buf.Pixel(x, y).RGBA()
}
