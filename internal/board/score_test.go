package board

import (
	"math"
	"testing"
)

// Sector i is centred on i*18 degrees.
func TestToScore_SectorMidpoints(t *testing.T) {
	for i, want := range Segments {
		theta := float64(i) * SegmentAngle
		got := ToScore(PolarCoord{R: 0.6, Theta: theta})
		if got.Value != want || got.Multiplier != 1 || got.Points != want {
			t.Errorf("theta=%.1f: got %+v, want single %d", theta, got, want)
		}
	}
}

// A sector edge at i*18+9 belongs to the next sector clockwise.
func TestToScore_SectorEdges(t *testing.T) {
	for i := range Segments {
		theta := float64(i)*SegmentAngle + SegmentAngle/2
		want := Segments[(i+1)%len(Segments)]
		if got := ToScore(PolarCoord{R: 0.6, Theta: theta}); got.Value != want {
			t.Errorf("theta=%.1f: got %d, want %d", theta, got.Value, want)
		}
	}
}

// Numbers are centred in their sectors: 20 spans [-9, 9), not [0, 18).
func TestToScore_HalfSegmentOffset(t *testing.T) {
	tests := []struct {
		theta float64
		want  int
	}{
		{0, 20},
		{8.99, 20},
		{9, 1},
		{351, 20},
		{350.99, 5},
		{359.99, 20},
		{27, 18},
		{180, 3},
	}
	for _, tt := range tests {
		got := ToScore(PolarCoord{R: 0.7, Theta: tt.theta})
		if got.Value != tt.want {
			t.Errorf("theta=%v: got %d, want %d", tt.theta, got.Value, tt.want)
		}
	}
}

func TestToScore_RingBoundaries(t *testing.T) {
	tests := []struct {
		name string
		r    float64
		mult int
	}{
		{"just outside single bull", RingSingleBull + 1e-9, 1},
		{"triple inner edge", RingTripleInner, 1},
		{"just past triple inner edge", RingTripleInner + 1e-9, 3},
		{"triple outer edge", RingTripleOuter, 3},
		{"just past triple outer edge", RingTripleOuter + 1e-9, 1},
		{"double inner edge", RingDoubleInner, 1},
		{"just past double inner edge", RingDoubleInner + 1e-9, 2},
		{"double outer edge", RingDoubleOuter, 2},
		{"edge tolerance", RingMiss, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for theta := 0.0; theta < 360; theta += 0.5 {
				got := ToScore(PolarCoord{R: tt.r, Theta: theta})
				if got.Multiplier != tt.mult {
					t.Fatalf("r=%v theta=%v: multiplier %d, want %d", tt.r, theta, got.Multiplier, tt.mult)
				}
				if got.Points != got.Value*got.Multiplier {
					t.Fatalf("r=%v theta=%v: points %d != %d*%d", tt.r, theta, got.Points, got.Value, got.Multiplier)
				}
			}
		})
	}
}

func TestToScore_BullPrecedence(t *testing.T) {
	for theta := 0.0; theta < 360; theta += 7.5 {
		for _, r := range []float64{0, RingDoubleBull / 2, RingDoubleBull} {
			if got := ToScore(PolarCoord{R: r, Theta: theta}); got.Value != 50 || got.Points != 50 {
				t.Fatalf("r=%v theta=%v: got %+v, want double bull", r, theta, got)
			}
		}
		for _, r := range []float64{RingDoubleBull + 1e-9, (RingDoubleBull + RingSingleBull) / 2, RingSingleBull} {
			if got := ToScore(PolarCoord{R: r, Theta: theta}); got.Value != 25 || got.Points != 25 {
				t.Fatalf("r=%v theta=%v: got %+v, want single bull", r, theta, got)
			}
		}
	}
}

func TestToScore_Miss(t *testing.T) {
	for _, r := range []float64{1.2, RingMiss + 1e-9, 10, math.NaN()} {
		got := ToScore(PolarCoord{R: r, Theta: 0})
		if got.Points != 0 || !got.IsMiss() {
			t.Errorf("r=%v: got %+v, want miss", r, got)
		}
	}
}

func TestScore_Label(t *testing.T) {
	tests := []struct {
		score Score
		want  string
	}{
		{Score{Value: 20, Multiplier: 3, Points: 60}, "T20"},
		{Score{Value: 16, Multiplier: 2, Points: 32}, "D16"},
		{Score{Value: 5, Multiplier: 1, Points: 5}, "S5"},
		{singleBull, "BULL"},
		{doubleBull, "DBULL"},
		{Miss, "MISS"},
	}
	for _, tt := range tests {
		if got := tt.score.Label(); got != tt.want {
			t.Errorf("Label(%+v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
