package imaging

import (
	"image"
	"testing"
)

func TestLargestBlob(t *testing.T) {
	m := squareMask(40, 40, 20, 20, 10)
	for y := 2; y < 5; y++ {
		for x := 2; x < 5; x++ {
			m.Set(x, y, true)
		}
	}

	b := LargestBlob(m, 1)
	if b == nil {
		t.Fatal("LargestBlob returned nil")
	}
	if b.Area != 100 || len(b.Points) != 100 {
		t.Errorf("Area = %d (%d points), want 100", b.Area, len(b.Points))
	}
	if b.Bounds != image.Rect(20, 20, 30, 30) {
		t.Errorf("Bounds = %v", b.Bounds)
	}
	if !b.Contains(25, 25) || b.Contains(3, 3) {
		t.Error("Contains disagrees with component membership")
	}
}

func TestLargestBlob_MinArea(t *testing.T) {
	m := squareMask(20, 20, 0, 0, 10)
	if b := LargestBlob(m, 101); b != nil {
		t.Errorf("expected nil below min area, got area %d", b.Area)
	}
	if b := LargestBlob(m, 100); b == nil {
		t.Error("component of exactly min area should be accepted")
	}
	if b := LargestBlob(NewMask(20, 20), 1); b != nil {
		t.Error("empty mask should have no blob")
	}
}

func TestLargestBlob_FourConnectivity(t *testing.T) {
	m := NewMask(4, 4)
	m.Set(0, 0, true)
	m.Set(1, 1, true)
	m.Set(2, 2, true)

	b := LargestBlob(m, 1)
	if b.Area != 1 {
		t.Errorf("diagonal pixels joined: area %d, want 1", b.Area)
	}
}

func TestLargestBlob_TieFirstDiscovered(t *testing.T) {
	m := NewMask(20, 20)
	for _, origin := range []image.Point{{12, 2}, {2, 12}} {
		for y := origin.Y; y < origin.Y+3; y++ {
			for x := origin.X; x < origin.X+3; x++ {
				m.Set(x, y, true)
			}
		}
	}
	for i := 0; i < 3; i++ {
		b := LargestBlob(m, 1)
		if b.Bounds.Min != (image.Point{12, 2}) {
			t.Fatalf("tie resolved to %v, want the row-major first component", b.Bounds.Min)
		}
	}
}

func TestBlob_Boundary(t *testing.T) {
	tests := []struct {
		name string
		mask *Mask
		want int
	}{
		{"interior square", squareMask(20, 20, 5, 5, 5), 16},
		{"touching image edge", squareMask(4, 4, 0, 0, 4), 12},
		{"single pixel", squareMask(3, 3, 1, 1, 1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := LargestBlob(tt.mask, 1)
			pts := b.Boundary()
			if len(pts) != tt.want {
				t.Errorf("Boundary: %d points, want %d", len(pts), tt.want)
			}
			for _, p := range pts {
				if !b.Contains(p.X, p.Y) {
					t.Errorf("boundary point %v outside blob", p)
				}
			}
		})
	}
}

func TestBlob_Mask(t *testing.T) {
	m := squareMask(30, 30, 1, 1, 6)
	m.Set(20, 20, true)

	bm := LargestBlob(m, 1).Mask()
	if bm.Count() != 36 {
		t.Errorf("blob mask count = %d, want 36", bm.Count())
	}
	if bm.At(20, 20) {
		t.Error("blob mask includes another component")
	}
}
