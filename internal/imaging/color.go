package imaging

import (
	"github.com/anthonynsimon/bild/parallel"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV is a color in hue/saturation/value space.
//
//   - H: 0-360 degrees (0=red, 120=green, 240=blue)
//   - S: 0-100 percent (0=gray, 100=vivid)
//   - V: 0-100 percent (0=black, 100=full brightness)
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// ToHSV converts 8-bit RGB components to HSV.
func ToHSV(r, g, b uint8) HSV {
	c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	h, s, v := c.Hsv()
	return HSV{H: h, S: s * 100, V: v * 100}
}

// ColorThresholds defines which HSV values count as dartboard material.
//
// A dartboard is made of four surface colors: red and green rings, black
// and white (beige) sectors. A pixel is board material when it matches any
// of the four classes:
//
//   - Red:   H in [0, RedHueLow] or [RedHueHigh, 360), S >= MinSaturation, V >= MinValue
//   - Green: H in [GreenHueLow, GreenHueHigh], S >= MinSaturation, V >= MinValue
//   - Black: V <= BlackMaxValue
//   - White: V >= WhiteMinValue and S <= WhiteMaxSaturation
//
// Saturation and value thresholds are percentages (0-100).
type ColorThresholds struct {
	RedHueLow          float64 `json:"red_hue_low" validate:"gte=0,lte=360"`
	RedHueHigh         float64 `json:"red_hue_high" validate:"gte=0,lte=360"`
	GreenHueLow        float64 `json:"green_hue_low" validate:"gte=0,lte=360"`
	GreenHueHigh       float64 `json:"green_hue_high" validate:"gte=0,lte=360"`
	MinSaturation      float64 `json:"min_saturation" validate:"gte=0,lte=100"`
	MinValue           float64 `json:"min_value" validate:"gte=0,lte=100"`
	BlackMaxValue      float64 `json:"black_max_value" validate:"gte=0,lte=100"`
	WhiteMinValue      float64 `json:"white_min_value" validate:"gte=0,lte=100"`
	WhiteMaxSaturation float64 `json:"white_max_saturation" validate:"gte=0,lte=100"`
}

// DefaultColorThresholds returns thresholds tuned for a standard
// red/green/black/white bristle board under indoor lighting.
func DefaultColorThresholds() ColorThresholds {
	return ColorThresholds{
		RedHueLow:          15,
		RedHueHigh:         345,
		GreenHueLow:        80,
		GreenHueHigh:       160,
		MinSaturation:      30,
		MinValue:           20,
		BlackMaxValue:      30,
		WhiteMinValue:      70,
		WhiteMaxSaturation: 30,
	}
}

// Matches reports whether the HSV color is board material.
func (t ColorThresholds) Matches(c HSV) bool {
	chromatic := c.S >= t.MinSaturation && c.V >= t.MinValue
	switch {
	case chromatic && (c.H <= t.RedHueLow || c.H >= t.RedHueHigh):
		return true
	case chromatic && c.H >= t.GreenHueLow && c.H <= t.GreenHueHigh:
		return true
	case c.V <= t.BlackMaxValue:
		return true
	case c.V >= t.WhiteMinValue && c.S <= t.WhiteMaxSaturation:
		return true
	}
	return false
}

// ColorMask classifies every pixel of f as board material or not.
//
// The result always has the frame's dimensions; it may be all false.
// Rows are processed in parallel, each row writing only its own slice of
// the mask, so the output does not depend on scheduling.
func ColorMask(f *Frame, t ColorThresholds) *Mask {
	w, h := f.Width(), f.Height()
	m := NewMask(w, h)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := m.Bits[y*w : (y+1)*w]
			for x := 0; x < w; x++ {
				r, g, b := f.RGB(x, y)
				row[x] = t.Matches(ToHSV(r, g, b))
			}
		}
	})
	return m
}
