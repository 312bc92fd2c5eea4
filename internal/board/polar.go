package board

import "math"

// Point is a sub-pixel image coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PolarCoord is a board-relative position. R = 1 is the outer edge of the
// double ring; Theta is degrees clockwise from the "20" direction, in
// [0, 360).
type PolarCoord struct {
	R     float64 `json:"r"`
	Theta float64 `json:"theta"`
}

// ToPolar maps an image point to board polar coordinates.
//
// The point is translated to the ellipse centre, rotated by -e.Rotation,
// and each axis is divided by its radius so the ellipse becomes the unit
// circle. The normalized vector is then rotated back by e.Rotation, so
// theta is measured in image orientation whatever axis the fit labelled
// as major. Theta = atan2(nx, -ny) points "up" at 0 and grows clockwise on
// screen (Y grows downward). rotationOffset (degrees) is then added so that
// theta 0 lands on the physical "20" segment.
func ToPolar(p Point, e Ellipse, rotationOffset float64) PolarCoord {
	m := newMapper(e, rotationOffset)
	return m.toPolar(p)
}

// FromPolar is the exact inverse of ToPolar.
func FromPolar(pc PolarCoord, e Ellipse, rotationOffset float64) Point {
	m := newMapper(e, rotationOffset)
	return m.fromPolar(pc)
}

// NormalizeDegrees wraps a into [0, 360).
func NormalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// Mapper converts points for a fixed ellipse and rotation offset. It
// caches the rotation's sine and cosine, which matters in per-pixel loops.
type Mapper struct {
	Ellipse        Ellipse
	RotationOffset float64

	cos, sin float64
}

// NewMapper returns a Mapper for e and rotationOffset (degrees).
func NewMapper(e Ellipse, rotationOffset float64) *Mapper {
	m := newMapper(e, rotationOffset)
	return &m
}

func newMapper(e Ellipse, rotationOffset float64) Mapper {
	return Mapper{
		Ellipse:        e,
		RotationOffset: rotationOffset,
		cos:            math.Cos(e.Rotation),
		sin:            math.Sin(e.Rotation),
	}
}

// ToPolar maps p to board coordinates.
func (m *Mapper) ToPolar(p Point) PolarCoord { return m.toPolar(p) }

// FromPolar maps board coordinates back to the image.
func (m *Mapper) FromPolar(pc PolarCoord) Point { return m.fromPolar(pc) }

// Radius returns only the normalized radius of (x, y). It skips the
// angle computation.
func (m *Mapper) Radius(x, y float64) float64 {
	nx, ny := m.normalize(x, y)
	return math.Hypot(nx, ny)
}

// Score maps p directly to a dart score.
func (m *Mapper) Score(p Point) Score { return ToScore(m.toPolar(p)) }

func (m *Mapper) normalize(x, y float64) (nx, ny float64) {
	dx := x - m.Ellipse.CenterX
	dy := y - m.Ellipse.CenterY
	// Into the ellipse frame, scale to the unit circle, and back.
	u := (dx*m.cos + dy*m.sin) / m.Ellipse.RadiusX
	v := (-dx*m.sin + dy*m.cos) / m.Ellipse.RadiusY
	return u*m.cos - v*m.sin, u*m.sin + v*m.cos
}

func (m *Mapper) toPolar(p Point) PolarCoord {
	nx, ny := m.normalize(p.X, p.Y)
	r := math.Hypot(nx, ny)
	theta := math.Atan2(nx, -ny) * 180 / math.Pi
	return PolarCoord{R: r, Theta: NormalizeDegrees(theta + m.RotationOffset)}
}

func (m *Mapper) fromPolar(pc PolarCoord) Point {
	t := (pc.Theta - m.RotationOffset) * math.Pi / 180
	nx := pc.R * math.Sin(t)
	ny := -pc.R * math.Cos(t)
	u := (nx*m.cos + ny*m.sin) * m.Ellipse.RadiusX
	v := (-nx*m.sin + ny*m.cos) * m.Ellipse.RadiusY
	return Point{
		X: m.Ellipse.CenterX + u*m.cos - v*m.sin,
		Y: m.Ellipse.CenterY + u*m.sin + v*m.cos,
	}
}
