package detection

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/dartcam/internal/board"
	"github.com/ironsheep/dartcam/internal/imaging"
)

// HitConfig holds the frame-differencing thresholds.
type HitConfig struct {
	// Threshold is the mean absolute RGB difference (0-255) above which a
	// pixel counts as changed.
	Threshold float64

	// MinChangedPixels rejects smaller diffs as noise.
	MinChangedPixels int

	// MaxChangedFraction rejects diffs covering more than this share of
	// the searched board area (lighting change, person in view).
	MaxChangedFraction float64

	// Inflate scales the search window around the ellipse.
	Inflate float64

	// MaxRadius limits the search to pixels with normalized radius below
	// it.
	MaxRadius float64

	// NearestFraction of the changed pixels, but at least MinNearest,
	// closest to the board centre are averaged into the tip.
	NearestFraction float64
	MinNearest      int

	// BlurRadius applies a Gaussian blur to both frames before
	// differencing. 0 disables.
	BlurRadius float64
}

// DefaultHitConfig returns the standard detection thresholds.
func DefaultHitConfig() HitConfig {
	return HitConfig{
		Threshold:          28,
		MinChangedPixels:   40,
		MaxChangedFraction: 0.25,
		Inflate:            1.1,
		MaxRadius:          1.1,
		NearestFraction:    0.1,
		MinNearest:         5,
	}
}

// Hit is a detected dart.
type Hit struct {
	// Tip is the estimated landing point in image coordinates.
	Tip board.Point `json:"tip"`

	// ChangedPixels is the size of the accepted diff.
	ChangedPixels int `json:"changed_pixels"`

	// Searched is the number of pixels compared.
	Searched int `json:"searched"`

	// Window is the rectangle that was searched.
	Window image.Rectangle `json:"window"`
}

// DetectHit compares cur against ref inside the board region of e and
// returns the dart tip.
//
// Only pixels inside the window e.Window(cfg.Inflate) whose normalized
// radius is below cfg.MaxRadius are compared. A pixel has changed when the
// mean absolute difference of its R, G and B channels exceeds
// cfg.Threshold.
//
// A dart's flight is its largest visible part but the tip is what lands,
// and the tip is the part nearest the board centre. The tip is therefore
// the average of the changed pixels closest to the centre (NearestFraction
// of them, at least MinNearest) rather than the centroid of the diff.
//
// Returns ErrNoChange when fewer than MinChangedPixels changed and
// ErrNoisyDiff when more than MaxChangedFraction of the searched pixels
// changed.
func DetectHit(cur, ref *imaging.Frame, e board.Ellipse, cfg HitConfig) (*Hit, error) {
	return detect(smooth(cur, cfg.BlurRadius), smooth(ref, cfg.BlurRadius), e, cfg)
}

func smooth(f *imaging.Frame, radius float64) *imaging.Frame {
	if radius <= 0 {
		return f
	}
	return imaging.NewFrame(blur.Gaussian(f.Image(), radius))
}

func detect(cur, ref *imaging.Frame, e board.Ellipse, cfg HitConfig) (*Hit, error) {
	if cur.Bounds() != ref.Bounds() {
		return nil, fmt.Errorf("%w: reference is %v, frame is %v", ErrNoReference, ref.Bounds(), cur.Bounds())
	}

	win := e.Window(cfg.Inflate, cur.Bounds())
	if win.Empty() {
		return nil, fmt.Errorf("%w: board window outside frame", ErrNoChange)
	}
	m := board.NewMapper(e, 0)

	// Per-row results keep the merge order independent of scheduling.
	rows := make([][]image.Point, win.Dy())
	searched := make([]int, win.Dy())
	parallel.Line(win.Dy(), func(start, end int) {
		for i := start; i < end; i++ {
			y := win.Min.Y + i
			for x := win.Min.X; x < win.Max.X; x++ {
				if m.Radius(float64(x), float64(y)) >= cfg.MaxRadius {
					continue
				}
				searched[i]++
				r1, g1, b1 := cur.RGB(x, y)
				r2, g2, b2 := ref.RGB(x, y)
				diff := float64(absDiff(r1, r2)+absDiff(g1, g2)+absDiff(b1, b2)) / 3
				if diff > cfg.Threshold {
					rows[i] = append(rows[i], image.Pt(x, y))
				}
			}
		}
	})

	var changed []image.Point
	total := 0
	for i := range rows {
		changed = append(changed, rows[i]...)
		total += searched[i]
	}

	n := len(changed)
	if n < cfg.MinChangedPixels {
		return nil, fmt.Errorf("%w: %d changed pixels", ErrNoChange, n)
	}
	if total > 0 && float64(n) > cfg.MaxChangedFraction*float64(total) {
		return nil, fmt.Errorf("%w: %d of %d pixels changed", ErrNoisyDiff, n, total)
	}

	return &Hit{
		Tip:           nearestMean(changed, m, cfg),
		ChangedPixels: n,
		Searched:      total,
		Window:        win,
	}, nil
}

// nearestMean averages the changed points closest to the board centre.
func nearestMean(pts []image.Point, m *board.Mapper, cfg HitConfig) board.Point {
	type ranked struct {
		p image.Point
		r float64
	}
	rs := make([]ranked, len(pts))
	for i, p := range pts {
		rs[i] = ranked{p: p, r: m.Radius(float64(p.X), float64(p.Y))}
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].r < rs[j].r })

	k := int(math.Ceil(cfg.NearestFraction * float64(len(rs))))
	k = min(max(k, cfg.MinNearest, 1), len(rs))

	var sx, sy float64
	for _, r := range rs[:k] {
		sx += float64(r.p.X)
		sy += float64(r.p.Y)
	}
	return board.Point{X: sx / float64(k), Y: sy / float64(k)}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// HitDetector owns the reference frame used for differencing.
//
// A HitDetector is not safe for concurrent use.
type HitDetector struct {
	cfg    HitConfig
	ref    *imaging.Frame // smoothed with cfg.BlurRadius
	logger *slog.Logger
}

// NewHitDetector returns a detector with no reference frame.
func NewHitDetector(cfg HitConfig, logger *slog.Logger) *HitDetector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HitDetector{cfg: cfg, logger: logger}
}

// SetReference replaces the reference frame.
func (d *HitDetector) SetReference(f *imaging.Frame) {
	d.ref = smooth(f, d.cfg.BlurRadius)
}

// HasReference reports whether a reference frame is set.
func (d *HitDetector) HasReference() bool { return d.ref != nil }

// Detect compares f against the reference frame. See DetectHit.
func (d *HitDetector) Detect(f *imaging.Frame, e board.Ellipse) (*Hit, error) {
	if d.ref == nil {
		return nil, ErrNoReference
	}
	hit, err := detect(smooth(f, d.cfg.BlurRadius), d.ref, e, d.cfg)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("hit detected", "tip_x", hit.Tip.X, "tip_y", hit.Tip.Y, "changed", hit.ChangedPixels)
	return hit, nil
}

// Reset drops the reference frame.
func (d *HitDetector) Reset() {
	d.ref = nil
}
