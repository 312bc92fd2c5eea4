package detection

import (
	"fmt"
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/dartcam/internal/board"
)

// FitMethod selects how semi-axis lengths are estimated.
type FitMethod string

const (
	// FitPercentile takes a high percentile of the absolute projections
	// onto each principal axis. Robust to stray edge points.
	FitPercentile FitMethod = "percentile"

	// FitMoments derives the semi-axes from the eigenvalues of the point
	// covariance, assuming the points lie on the outline.
	FitMoments FitMethod = "moments"
)

const (
	// MinFitPoints is the smallest point set FitEllipse accepts.
	MinFitPoints = 6

	// DefaultMaxFitPoints caps the number of points used for a fit.
	// Larger sets are decimated with a fixed stride.
	DefaultMaxFitPoints = 500

	// DefaultFitPercentile is the projection percentile used by FitPercentile.
	DefaultFitPercentile = 0.95
)

// FitOptions tunes FitEllipse. The zero value selects the defaults.
type FitOptions struct {
	Method     FitMethod `json:"method" validate:"omitempty,oneof=percentile moments"`
	MaxPoints  int       `json:"max_points" validate:"gte=0"`
	Percentile float64   `json:"percentile" validate:"gte=0,lte=1"`
}

func (o FitOptions) withDefaults() FitOptions {
	if o.Method == "" {
		o.Method = FitPercentile
	}
	if o.MaxPoints <= 0 {
		o.MaxPoints = DefaultMaxFitPoints
	}
	if o.Percentile <= 0 || o.Percentile > 1 {
		o.Percentile = DefaultFitPercentile
	}
	return o
}

// FitEllipse fits an ellipse to the outline points of the board.
//
// The centroid and the 2x2 covariance of the points give the principal
// axes: the rotation is 0.5*atan2(2*mu11, mu20-mu02), i.e. the direction of
// the covariance's major eigenvector. Semi-axis lengths come either from the
// eigenvalues (FitMoments: a point uniformly spread on an ellipse outline
// has variance a^2/2 along its axis) or from the chosen percentile of the
// absolute projections (FitPercentile).
//
// Returns ErrTooFewPoints when fewer than MinFitPoints points are given
// and ErrDegenerateEllipse when a radius falls below board.MinRadius.
func FitEllipse(points []image.Point, opts FitOptions) (board.Ellipse, error) {
	opts = opts.withDefaults()
	if len(points) < MinFitPoints {
		return board.Ellipse{}, fmt.Errorf("%w: got %d, need %d", ErrTooFewPoints, len(points), MinFitPoints)
	}
	pts := decimate(points, opts.MaxPoints)

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	data := mat.NewDense(len(pts), 2, nil)
	for i, p := range pts {
		xs[i], ys[i] = float64(p.X), float64(p.Y)
		data.Set(i, 0, xs[i])
		data.Set(i, 1, ys[i])
	}
	cx, cy := stat.Mean(xs, nil), stat.Mean(ys, nil)

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)
	mu20, mu02, mu11 := cov.At(0, 0), cov.At(1, 1), cov.At(0, 1)
	theta := normalizeAxisAngle(0.5 * math.Atan2(2*mu11, mu20-mu02))

	var rx, ry float64
	switch opts.Method {
	case FitMoments:
		var eig mat.EigenSym
		if !eig.Factorize(&cov, false) {
			return board.Ellipse{}, fmt.Errorf("%w: covariance factorization failed", ErrDegenerateEllipse)
		}
		vals := eig.Values(nil) // ascending
		rx = math.Sqrt(2 * math.Max(vals[1], 0))
		ry = math.Sqrt(2 * math.Max(vals[0], 0))
	default:
		rx, ry = percentileExtents(xs, ys, cx, cy, theta, opts.Percentile)
		if ry > rx {
			rx, ry = ry, rx
			theta = normalizeAxisAngle(theta + math.Pi/2)
		}
	}

	e := board.Ellipse{CenterX: cx, CenterY: cy, RadiusX: rx, RadiusY: ry, Rotation: theta}
	if !e.Valid() {
		return board.Ellipse{}, fmt.Errorf("%w: radii %.1f x %.1f", ErrDegenerateEllipse, rx, ry)
	}
	return e, nil
}

// percentileExtents projects the centered points onto the axes at angle
// theta and returns the p-quantile of the absolute projections per axis.
func percentileExtents(xs, ys []float64, cx, cy, theta, p float64) (float64, float64) {
	c, s := math.Cos(theta), math.Sin(theta)
	us := make([]float64, len(xs))
	vs := make([]float64, len(xs))
	for i := range xs {
		dx, dy := xs[i]-cx, ys[i]-cy
		us[i] = math.Abs(dx*c + dy*s)
		vs[i] = math.Abs(-dx*s + dy*c)
	}
	sort.Float64s(us)
	sort.Float64s(vs)
	return stat.Quantile(p, stat.Empirical, us, nil), stat.Quantile(p, stat.Empirical, vs, nil)
}

// decimate keeps every k-th point so at most limit points remain. Points
// are first ordered by angle about their centroid, so the stride walks
// along the outline rather than across rows of a row-major boundary. A
// fixed stride keeps fits reproducible.
func decimate(points []image.Point, limit int) []image.Point {
	if len(points) <= limit {
		return points
	}
	var sx, sy float64
	for _, p := range points {
		sx += float64(p.X)
		sy += float64(p.Y)
	}
	cx, cy := sx/float64(len(points)), sy/float64(len(points))

	type polarPoint struct {
		p           image.Point
		angle, dist float64
	}
	ordered := make([]polarPoint, len(points))
	for i, p := range points {
		dx, dy := float64(p.X)-cx, float64(p.Y)-cy
		ordered[i] = polarPoint{p: p, angle: math.Atan2(dy, dx), dist: dx*dx + dy*dy}
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		switch {
		case a.angle != b.angle:
			return a.angle < b.angle
		case a.dist != b.dist:
			return a.dist < b.dist
		case a.p.Y != b.p.Y:
			return a.p.Y < b.p.Y
		}
		return a.p.X < b.p.X
	})

	stride := (len(points) + limit - 1) / limit
	out := make([]image.Point, 0, len(points)/stride+1)
	for i := 0; i < len(ordered); i += stride {
		out = append(out, ordered[i].p)
	}
	return out
}

// normalizeAxisAngle maps an axis direction (period pi) into (-pi/2, pi/2].
func normalizeAxisAngle(a float64) float64 {
	for a <= -math.Pi/2 {
		a += math.Pi
	}
	for a > math.Pi/2 {
		a -= math.Pi
	}
	return a
}
