package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

// Crop extracts the region r of f as a new Frame, optionally rescaled.
//
// r must lie within the frame and be non-empty. A scale of 1 (or <= 0)
// keeps the original size; other values resize with a linear filter.
func Crop(f *Frame, r image.Rectangle, scale float64) (*Frame, error) {
	bounds := f.Bounds()
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside frame bounds %v", r, bounds)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", r)
	}

	cropped := imaging.Crop(f.Image(), r)
	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(math.Round(float64(cropped.Bounds().Dx())*scale)))
		newHeight := max(1, int(math.Round(float64(cropped.Bounds().Dy())*scale)))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Linear)
	}
	return NewFrame(cropped), nil
}

// Downscale shrinks f so its width does not exceed maxWidth, keeping the
// aspect ratio. It returns the frame to process and the scale factor that
// was applied (1 when f is already small enough or maxWidth <= 0).
func Downscale(f *Frame, maxWidth int) (*Frame, float64) {
	if maxWidth <= 0 || f.Width() <= maxWidth {
		return f, 1
	}
	s := float64(maxWidth) / float64(f.Width())
	h := max(1, int(math.Round(float64(f.Height())*s)))
	return NewFrame(imaging.Resize(f.Image(), maxWidth, h, imaging.Linear)), s
}

// Rotate returns f rotated counter-clockwise by angle degrees. Uncovered
// corners are filled with bg.
func Rotate(f *Frame, angle float64, bg color.Color) *Frame {
	return NewFrame(imaging.Rotate(f.Image(), angle, bg))
}

// EncodePNG encodes f as PNG bytes.
func EncodePNG(f *Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, f.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
