package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/dartcam/internal/board"
	"github.com/ironsheep/dartcam/internal/imaging"
)

// Mark is a hit to draw.
type Mark struct {
	Tip   board.Point
	Label string
}

// Style holds the overlay colors.
type Style struct {
	Ring  color.RGBA
	Spoke color.RGBA
	Mark  color.RGBA
	Text  color.RGBA
	Label color.RGBA // label background
}

// DefaultStyle returns green rings, yellow spokes and magenta marks.
func DefaultStyle() Style {
	return Style{
		Ring:  color.RGBA{0, 255, 0, 255},
		Spoke: color.RGBA{255, 255, 0, 255},
		Mark:  color.RGBA{255, 0, 255, 255},
		Text:  color.RGBA{255, 255, 255, 255},
		Label: color.RGBA{0, 0, 0, 180},
	}
}

// ParseStyle builds a Style from hex colors such as "#00FF00" or
// "#00FF0080". Empty strings keep the default.
func ParseStyle(ring, spoke, mark string) (Style, error) {
	s := DefaultStyle()
	for _, c := range []struct {
		hex string
		dst *color.RGBA
	}{{ring, &s.Ring}, {spoke, &s.Spoke}, {mark, &s.Mark}} {
		if c.hex == "" {
			continue
		}
		v, err := parseHexColor(c.hex)
		if err != nil {
			return s, fmt.Errorf("invalid color %q: %w", c.hex, err)
		}
		*c.dst = v
	}
	return s, nil
}

var ringRadii = [...]float64{
	board.RingDoubleBull,
	board.RingSingleBull,
	board.RingTripleInner,
	board.RingTripleOuter,
	board.RingDoubleInner,
	board.RingDoubleOuter,
}

// numberRadius places the sector numbers just outside the double ring.
const numberRadius = 1.12

// Annotate returns a copy of f with the ring table, sector spokes and
// numbers for ellipse e and rotationOffset drawn on top, followed by the
// given marks.
func Annotate(f *imaging.Frame, e board.Ellipse, rotationOffset float64, marks []Mark, style Style) *image.RGBA {
	bounds := f.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, f.Image(), bounds.Min, draw.Src)

	m := board.NewMapper(e, rotationOffset)
	avg := e.AverageRadius()

	for _, r := range ringRadii {
		steps := max(90, int(2*math.Pi*r*avg))
		for i := 0; i < steps; i++ {
			theta := 360 * float64(i) / float64(steps)
			plot(result, m.FromPolar(board.PolarCoord{R: r, Theta: theta}), style.Ring)
		}
	}

	steps := max(10, int(avg))
	for i := range board.Segments {
		theta := float64(i)*board.SegmentAngle + board.SegmentAngle/2
		for j := 0; j <= steps; j++ {
			r := board.RingSingleBull + (board.RingDoubleOuter-board.RingSingleBull)*float64(j)/float64(steps)
			plot(result, m.FromPolar(board.PolarCoord{R: r, Theta: theta}), style.Spoke)
		}
	}

	for i, n := range board.Segments {
		p := m.FromPolar(board.PolarCoord{R: numberRadius, Theta: float64(i) * board.SegmentAngle})
		drawLabelCentered(result, p, strconv.Itoa(n), style.Text, style.Label)
	}

	for _, mk := range marks {
		drawCross(result, mk.Tip, 5, style.Mark)
		if mk.Label != "" {
			x := int(math.Round(mk.Tip.X)) + 7
			y := int(math.Round(mk.Tip.Y)) - 7
			drawLabel(result, x, y, mk.Label, style.Text, style.Label)
		}
	}
	return result
}

func plot(img *image.RGBA, p board.Point, c color.RGBA) {
	x, y := int(math.Round(p.X)), int(math.Round(p.Y))
	if image.Pt(x, y).In(img.Rect) {
		img.SetRGBA(x, y, c)
	}
}

func drawCross(img *image.RGBA, p board.Point, size int, c color.RGBA) {
	x, y := int(math.Round(p.X)), int(math.Round(p.Y))
	for d := -size; d <= size; d++ {
		for _, q := range []image.Point{{x + d, y}, {x, y + d}} {
			if q.In(img.Rect) {
				img.SetRGBA(q.X, q.Y, c)
			}
		}
	}
}

func drawLabelCentered(img *image.RGBA, p board.Point, text string, fg, bg color.RGBA) {
	w := font.MeasureString(basicfont.Face7x13, text).Round()
	h := basicfont.Face7x13.Metrics().Height.Round()
	drawLabel(img, int(math.Round(p.X))-w/2, int(math.Round(p.Y))-h/2, text, fg, bg)
}

// drawLabel draws text with its top-left corner at (x, y) on a filled
// background box. Pixels outside the image are clipped.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Round()
	h := face.Metrics().Height.Round()

	box := image.Rect(x-1, y-1, x+w+1, y+h+1).Intersect(img.Rect)
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y + face.Metrics().Ascent.Round())},
	}
	d.DrawString(text)
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
