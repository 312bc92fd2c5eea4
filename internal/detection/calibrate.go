package detection

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/ironsheep/dartcam/internal/board"
	"github.com/ironsheep/dartcam/internal/imaging"
)

// CalibrationConfig holds every threshold used by the calibration
// pipeline.
type CalibrationConfig struct {
	Colors      imaging.ColorThresholds
	KernelSize  int
	MinBlobArea int
	Fit         FitOptions

	// MaxWidth bounds the width of the frame that is segmented. Wider
	// frames are downscaled first and the fit is scaled back. 0 disables.
	MaxWidth int

	// Plausibility checks, as fractions.
	MinAspect         float64 // min(rx,ry)/max(rx,ry)
	MinRadiusFraction float64 // average radius vs. shorter frame side
	MaxRadiusFraction float64
	MaxCenterOffset   float64 // per axis, vs. frame dimension

	// MinQuality is the lowest quality score accepted.
	MinQuality float64

	// Stabilize returns the history average instead of the latest fit;
	// Weighted biases that average toward recent fits.
	Stabilize bool
	Weighted  bool
}

// DefaultCalibrationConfig returns the standard calibration thresholds.
func DefaultCalibrationConfig() CalibrationConfig {
	return CalibrationConfig{
		Colors:            imaging.DefaultColorThresholds(),
		KernelSize:        imaging.DefaultKernelSize,
		MinBlobArea:       imaging.DefaultMinBlobArea,
		Fit:               FitOptions{Method: FitPercentile},
		MaxWidth:          640,
		MinAspect:         0.6,
		MinRadiusFraction: 0.10,
		MaxRadiusFraction: 0.50,
		MaxCenterOffset:   0.40,
		MinQuality:        0.5,
		Stabilize:         true,
		Weighted:          true,
	}
}

// CalibrationResult describes one successful calibration attempt.
type CalibrationResult struct {
	// Ellipse is the value to use: the history average when stabilizing,
	// otherwise the fit itself.
	Ellipse board.Ellipse `json:"ellipse"`

	// Fit is the ellipse fitted on this frame alone.
	Fit board.Ellipse `json:"fit"`

	// Quality is in [0, 1]; see Calibrator.Calibrate.
	Quality float64 `json:"quality"`

	// Samples is the number of fits in the history after this attempt.
	Samples int `json:"samples"`
}

// CalibrationState is a confirmed calibration. Ellipse is nil until the
// operator confirms a fit.
type CalibrationState struct {
	Ellipse        *board.Ellipse `json:"ellipse,omitempty"`
	RotationOffset float64        `json:"rotation_offset"`
	Calibrated     bool           `json:"calibrated"`
}

// Mapper returns a polar mapper for the state, or nil when uncalibrated.
func (s CalibrationState) Mapper() *board.Mapper {
	if !s.Calibrated || s.Ellipse == nil {
		return nil
	}
	return board.NewMapper(*s.Ellipse, s.RotationOffset)
}

// Calibrator locates the board in frames and keeps the short history of
// accepted fits used for smoothing.
//
// A Calibrator is not safe for concurrent use; the engine serializes
// access to it.
type Calibrator struct {
	cfg     CalibrationConfig
	history EllipseHistory
	logger  *slog.Logger
}

// NewCalibrator returns a Calibrator using cfg. A nil logger discards
// output.
func NewCalibrator(cfg CalibrationConfig, logger *slog.Logger) *Calibrator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Calibrator{cfg: cfg, logger: logger}
}

// Calibrate runs the board detection pipeline on f:
//
//  1. Downscale to MaxWidth
//  2. Classify board-colored pixels (imaging.ColorMask)
//  3. Close the mask with KernelSize
//  4. Keep the largest 4-connected blob of at least MinBlobArea pixels
//  5. Fit an ellipse to the blob's boundary pixels
//  6. Scale back to frame coordinates and validate
//
// The quality score combines the ellipse aspect ratio and how close the
// centre is to the middle of the frame:
//
//	quality = 0.6*aspect + 0.4*(1 - offset/MaxCenterOffset)
//
// An accepted fit is pushed onto the history. Failures leave the history
// untouched and return one of ErrNoBoardDetected, ErrDegenerateEllipse,
// ErrImplausibleEllipse or ErrLowConfidence. With ErrLowConfidence the
// result still carries the fit and its quality so it can be reported.
func (c *Calibrator) Calibrate(f *imaging.Frame) (CalibrationResult, error) {
	work, scale := imaging.Downscale(f, c.cfg.MaxWidth)

	mask := imaging.ColorMask(work, c.cfg.Colors)
	mask = imaging.Close(mask, c.cfg.KernelSize)

	minArea := max(1, int(math.Round(float64(c.cfg.MinBlobArea)*scale*scale)))
	blob := imaging.LargestBlob(mask, minArea)
	if blob == nil {
		return CalibrationResult{}, fmt.Errorf("%w: no blob of %d px", ErrNoBoardDetected, minArea)
	}

	fit, err := FitEllipse(blob.Boundary(), c.cfg.Fit)
	if err != nil {
		return CalibrationResult{}, err
	}
	if scale != 1 {
		fit = fit.Scale(1 / scale)
	}

	quality, err := c.validate(fit, f.Width(), f.Height())
	res := CalibrationResult{Ellipse: fit, Fit: fit, Quality: quality, Samples: c.history.Len()}
	if err != nil {
		c.logger.Debug("calibration rejected", "error", err, "quality", quality)
		return res, err
	}

	c.history.Push(fit)
	res.Samples = c.history.Len()
	if c.cfg.Stabilize {
		res.Ellipse, _ = c.history.Average(c.cfg.Weighted)
	}
	c.logger.Debug("calibration accepted",
		"center_x", fit.CenterX, "center_y", fit.CenterY,
		"radius_x", fit.RadiusX, "radius_y", fit.RadiusY,
		"quality", quality, "samples", res.Samples)
	return res, nil
}

// validate applies the plausibility checks and returns the quality score.
func (c *Calibrator) validate(e board.Ellipse, width, height int) (float64, error) {
	aspect := e.AspectRatio()
	offX := math.Abs(e.CenterX-float64(width)/2) / float64(width)
	offY := math.Abs(e.CenterY-float64(height)/2) / float64(height)
	offset := math.Max(offX, offY)

	quality := 0.6 * aspect
	if c.cfg.MaxCenterOffset > 0 {
		quality += 0.4 * (1 - offset/c.cfg.MaxCenterOffset)
	}
	quality = math.Max(0, math.Min(1, quality))

	short := float64(min(width, height))
	ratio := e.AverageRadius() / short
	switch {
	case aspect < c.cfg.MinAspect:
		return quality, fmt.Errorf("%w: aspect %.2f below %.2f", ErrImplausibleEllipse, aspect, c.cfg.MinAspect)
	case ratio < c.cfg.MinRadiusFraction || ratio > c.cfg.MaxRadiusFraction:
		return quality, fmt.Errorf("%w: radius is %.0f%% of frame", ErrImplausibleEllipse, ratio*100)
	case offset > c.cfg.MaxCenterOffset:
		return quality, fmt.Errorf("%w: centre offset %.0f%%", ErrImplausibleEllipse, offset*100)
	case quality < c.cfg.MinQuality:
		return quality, fmt.Errorf("%w: quality %.2f below %.2f", ErrLowConfidence, quality, c.cfg.MinQuality)
	}
	return quality, nil
}

// HistoryLen returns the number of accepted fits held for smoothing.
func (c *Calibrator) HistoryLen() int { return c.history.Len() }

// Current returns the ellipse the calibrator would report now: the
// history average when stabilizing, otherwise the latest fit.
func (c *Calibrator) Current() (board.Ellipse, bool) {
	if c.cfg.Stabilize {
		return c.history.Average(c.cfg.Weighted)
	}
	return c.history.Latest()
}

// Confirm fixes e and rotationOffset (degrees) as the session calibration.
func (c *Calibrator) Confirm(e board.Ellipse, rotationOffset float64) CalibrationState {
	return CalibrationState{
		Ellipse:        &e,
		RotationOffset: board.NormalizeDegrees(rotationOffset),
		Calibrated:     true,
	}
}

// Reset discards the fit history.
func (c *Calibrator) Reset() {
	c.history.Reset()
}
