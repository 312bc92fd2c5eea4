package board

import (
	"fmt"
	"math"
)

// Ring table: fractional radii relative to the outer edge of the double
// ring (R = 1). Every band is closed on its outer edge, so each radius
// belongs to exactly one band.
const (
	RingDoubleBull  = 0.037 // r <= RingDoubleBull: inner bull, 50
	RingSingleBull  = 0.094 // r <= RingSingleBull: outer bull, 25
	RingTripleInner = 0.47  // triple band is (RingTripleInner, RingTripleOuter]
	RingTripleOuter = 0.54
	RingDoubleInner = 0.95 // double band is (RingDoubleInner, RingMiss]
	RingDoubleOuter = 1.0
	// RingMiss tolerates small fit errors at the board edge: darts up to
	// 5% outside the fitted double ring still count as doubles.
	RingMiss = 1.05
)

// SegmentAngle is the angular width of one numbered sector, in degrees.
const SegmentAngle = 360.0 / 20

// Segments lists the board numbers clockwise starting at the top.
var Segments = [20]int{20, 1, 18, 4, 13, 6, 10, 15, 2, 17, 3, 19, 7, 16, 8, 11, 14, 9, 12, 5}

// Score is the result of one dart.
//
// For numbered segments Points = Value * Multiplier. Bulls are reported
// with Value equal to the points (25 or 50); Multiplier is informational:
// 1 for the outer bull and 2 for the inner bull, so that downstream rules
// can treat the bullseye as a double.
type Score struct {
	Value      int `json:"value"`
	Multiplier int `json:"multiplier"`
	Points     int `json:"points"`
}

// Miss is the score of a dart outside the scoring area.
var Miss = Score{}

var (
	singleBull = Score{Value: 25, Multiplier: 1, Points: 25}
	doubleBull = Score{Value: 50, Multiplier: 2, Points: 50}
)

// ToScore converts a polar board position into a score.
func ToScore(pc PolarCoord) Score {
	r := pc.R
	switch {
	case math.IsNaN(r) || r > RingMiss:
		return Miss
	case r <= RingDoubleBull:
		return doubleBull
	case r <= RingSingleBull:
		return singleBull
	}

	value := Segments[SegmentIndex(pc.Theta)]
	mult := 1
	switch {
	case r > RingTripleInner && r <= RingTripleOuter:
		mult = 3
	case r > RingDoubleInner:
		mult = 2
	}
	return Score{Value: value, Multiplier: mult, Points: value * mult}
}

// SegmentIndex returns the index into Segments for theta (degrees).
// Numbers are centred in their sectors, so theta is shifted by half a
// sector before dividing.
func SegmentIndex(theta float64) int {
	shifted := NormalizeDegrees(theta + SegmentAngle/2)
	return int(math.Floor(shifted/SegmentAngle)) % len(Segments)
}

// IsMiss reports whether the dart scored nothing.
func (s Score) IsMiss() bool { return s.Points == 0 }

// IsBull reports whether the dart hit either bull.
func (s Score) IsBull() bool { return s.Value == 25 || s.Value == 50 }

// Label returns a short human label such as "T20", "D16", "S5", "BULL",
// "DBULL" or "MISS".
func (s Score) Label() string {
	switch {
	case s.IsMiss():
		return "MISS"
	case s.Value == 50:
		return "DBULL"
	case s.Value == 25:
		return "BULL"
	}
	prefix := "S"
	switch s.Multiplier {
	case 2:
		prefix = "D"
	case 3:
		prefix = "T"
	}
	return fmt.Sprintf("%s%d", prefix, s.Value)
}

// String implements fmt.Stringer.
func (s Score) String() string {
	return fmt.Sprintf("%s (%d)", s.Label(), s.Points)
}
