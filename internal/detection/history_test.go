package detection

import (
	"math"
	"testing"

	"github.com/ironsheep/dartcam/internal/board"
)

func TestEllipseHistory_Bounded(t *testing.T) {
	var h EllipseHistory
	if _, ok := h.Latest(); ok {
		t.Fatal("empty history should have no latest entry")
	}
	for i := 0; i < 25; i++ {
		h.Push(board.Ellipse{CenterX: float64(i), RadiusX: 50, RadiusY: 50})
	}
	if h.Len() != HistorySize {
		t.Fatalf("Len: got %d, want %d", h.Len(), HistorySize)
	}
	latest, _ := h.Latest()
	if latest.CenterX != 24 {
		t.Errorf("Latest: got centre %v, want 24", latest.CenterX)
	}
	// Oldest kept entry is 15.
	if got := h.at(0).CenterX; got != 15 {
		t.Errorf("oldest: got %v, want 15", got)
	}
	h.Reset()
	if h.Len() != 0 {
		t.Errorf("Len after Reset: got %d", h.Len())
	}
}

func TestEllipseHistory_Average(t *testing.T) {
	var h EllipseHistory
	h.Push(board.Ellipse{CenterX: 100, CenterY: 100, RadiusX: 50, RadiusY: 40})
	h.Push(board.Ellipse{CenterX: 103, CenterY: 100, RadiusX: 53, RadiusY: 40})

	plain, ok := h.Average(false)
	if !ok {
		t.Fatal("Average on non-empty history returned !ok")
	}
	if math.Abs(plain.CenterX-101.5) > 1e-9 || math.Abs(plain.RadiusX-51.5) > 1e-9 {
		t.Errorf("plain average: got %+v", plain)
	}

	// Weights 1 and 2.
	weighted, _ := h.Average(true)
	if math.Abs(weighted.CenterX-102) > 1e-9 || math.Abs(weighted.RadiusX-52) > 1e-9 {
		t.Errorf("weighted average: got %+v", weighted)
	}
}

func TestEllipseHistory_AverageRotationWraps(t *testing.T) {
	var h EllipseHistory
	// Nearly vertical axes either side of +-pi/2 describe almost the
	// same ellipse; a naive mean would give ~0.
	h.Push(board.Ellipse{RadiusX: 50, RadiusY: 40, Rotation: math.Pi/2 - 0.05})
	h.Push(board.Ellipse{RadiusX: 50, RadiusY: 40, Rotation: -math.Pi/2 + 0.05})
	avg, _ := h.Average(false)
	if math.Abs(math.Abs(avg.Rotation)-math.Pi/2) > 1e-9 {
		t.Errorf("rotation: got %v, want +-pi/2", avg.Rotation)
	}
}
