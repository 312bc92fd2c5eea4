package detection

import (
	"math"

	"github.com/ironsheep/dartcam/internal/board"
)

// HistorySize is the capacity of an EllipseHistory.
const HistorySize = 10

// EllipseHistory is a fixed-capacity ring buffer of recent accepted fits.
// Once full, each Push overwrites the oldest entry.
type EllipseHistory struct {
	items [HistorySize]board.Ellipse
	next  int
	n     int
}

// Push records e as the most recent fit.
func (h *EllipseHistory) Push(e board.Ellipse) {
	h.items[h.next] = e
	h.next = (h.next + 1) % HistorySize
	if h.n < HistorySize {
		h.n++
	}
}

// Len returns the number of stored fits.
func (h *EllipseHistory) Len() int { return h.n }

// Reset discards every stored fit.
func (h *EllipseHistory) Reset() { *h = EllipseHistory{} }

// Latest returns the most recent fit.
func (h *EllipseHistory) Latest() (board.Ellipse, bool) {
	if h.n == 0 {
		return board.Ellipse{}, false
	}
	return h.items[(h.next-1+HistorySize)%HistorySize], true
}

// at returns the i-th stored fit, oldest first.
func (h *EllipseHistory) at(i int) board.Ellipse {
	start := (h.next - h.n + HistorySize) % HistorySize
	return h.items[(start+i)%HistorySize]
}

// Average returns the mean of the stored fits. With weighted set, the
// i-th oldest fit has weight i+1 so recent fits dominate.
//
// Rotation is an axis direction with period pi, so it is averaged on the
// doubled angle to keep fits near +-pi/2 from cancelling out.
func (h *EllipseHistory) Average(weighted bool) (board.Ellipse, bool) {
	if h.n == 0 {
		return board.Ellipse{}, false
	}
	var out board.Ellipse
	var total, sinSum, cosSum float64
	for i := 0; i < h.n; i++ {
		w := 1.0
		if weighted {
			w = float64(i + 1)
		}
		e := h.at(i)
		out.CenterX += w * e.CenterX
		out.CenterY += w * e.CenterY
		out.RadiusX += w * e.RadiusX
		out.RadiusY += w * e.RadiusY
		sinSum += w * math.Sin(2*e.Rotation)
		cosSum += w * math.Cos(2*e.Rotation)
		total += w
	}
	out.CenterX /= total
	out.CenterY /= total
	out.RadiusX /= total
	out.RadiusY /= total
	out.Rotation = normalizeAxisAngle(0.5 * math.Atan2(sinSum, cosSum))
	return out, true
}
