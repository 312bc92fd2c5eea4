package board

import (
	"image"
	"math"
)

// MinRadius is the smallest semi-axis, in pixels, of a usable board fit.
// Anything smaller is treated as no detection.
const MinRadius = 10.0

// Ellipse is the fitted outer edge of the double ring in image space.
//
// By convention RadiusX >= RadiusY: RadiusX lies along the direction given
// by Rotation (radians, measured from the +X image axis toward +Y).
type Ellipse struct {
	CenterX  float64 `json:"center_x"`
	CenterY  float64 `json:"center_y"`
	RadiusX  float64 `json:"radius_x"`
	RadiusY  float64 `json:"radius_y"`
	Rotation float64 `json:"rotation"`
}

// Valid reports whether both radii are finite and at least MinRadius.
func (e Ellipse) Valid() bool {
	for _, v := range [...]float64{e.CenterX, e.CenterY, e.RadiusX, e.RadiusY, e.Rotation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return e.RadiusX >= MinRadius && e.RadiusY >= MinRadius
}

// AverageRadius returns (RadiusX + RadiusY) / 2.
func (e Ellipse) AverageRadius() float64 {
	return (e.RadiusX + e.RadiusY) / 2
}

// AspectRatio returns min(rx, ry) / max(rx, ry), in (0, 1].
func (e Ellipse) AspectRatio() float64 {
	hi := math.Max(e.RadiusX, e.RadiusY)
	if hi == 0 {
		return 0
	}
	return math.Min(e.RadiusX, e.RadiusY) / hi
}

// Scale returns the ellipse expressed in an image scaled by factor s.
func (e Ellipse) Scale(s float64) Ellipse {
	return Ellipse{
		CenterX:  e.CenterX * s,
		CenterY:  e.CenterY * s,
		RadiusX:  e.RadiusX * s,
		RadiusY:  e.RadiusY * s,
		Rotation: e.Rotation,
	}
}

// Window returns the square, axis-aligned search window around the
// ellipse, with half-size max(rx, ry) * inflate, clipped to bounds.
func (e Ellipse) Window(inflate float64, bounds image.Rectangle) image.Rectangle {
	half := math.Max(e.RadiusX, e.RadiusY) * inflate
	r := image.Rect(
		int(math.Floor(e.CenterX-half)),
		int(math.Floor(e.CenterY-half)),
		int(math.Ceil(e.CenterX+half))+1,
		int(math.Ceil(e.CenterY+half))+1,
	)
	return r.Intersect(bounds)
}
