package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/clone"
)

// Frame is an immutable RGBA snapshot of one camera image.
//
// A Frame owns its pixel buffer: NewFrame always copies the source, so the
// capture layer may reuse its own buffers as soon as NewFrame returns.
// The origin of every Frame is (0,0) regardless of the source bounds.
type Frame struct {
	img *image.RGBA
}

// NewFrame copies src into a new Frame.
func NewFrame(src image.Image) *Frame {
	rgba := clone.AsRGBA(src)
	if origin := rgba.Rect.Min; origin != (image.Point{}) {
		// Pix is addressed relative to Rect.Min, so translating the
		// rectangle keeps every pixel in place.
		rgba.Rect = rgba.Rect.Sub(origin)
	}
	return &Frame{img: rgba}
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.img.Rect.Dx() }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.img.Rect.Dy() }

// Bounds returns the frame rectangle, always anchored at (0,0).
func (f *Frame) Bounds() image.Rectangle { return f.img.Rect }

// RGB returns the 8-bit color components at (x, y). Coordinates must be
// inside Bounds.
func (f *Frame) RGB(x, y int) (r, g, b uint8) {
	i := y*f.img.Stride + x*4
	p := f.img.Pix[i : i+3 : i+3]
	return p[0], p[1], p[2]
}

// Image exposes the frame as a read-only image.Image. Callers must not
// type-assert and modify the result.
func (f *Frame) Image() image.Image { return f.img }

// ShortSide returns min(width, height).
func (f *Frame) ShortSide() int {
	return min(f.Width(), f.Height())
}
