package detection

import (
	"errors"
	"fmt"
)

// Calibration errors.
var (
	// ErrNoBoardDetected is returned when no board-coloured blob of
	// sufficient area is found in the frame.
	ErrNoBoardDetected = errors.New("no board detected")

	// ErrDegenerateEllipse is returned when a fit produced a non-finite or
	// implausibly small ellipse.
	ErrDegenerateEllipse = errors.New("degenerate ellipse")

	// ErrTooFewPoints is returned when the board outline has too few
	// points to fit an ellipse. It matches ErrDegenerateEllipse.
	ErrTooFewPoints = fmt.Errorf("%w: too few outline points", ErrDegenerateEllipse)

	// ErrImplausibleEllipse is returned when a fitted ellipse fails the
	// geometric plausibility checks (aspect, size, centring).
	ErrImplausibleEllipse = errors.New("implausible ellipse")

	// ErrLowConfidence is returned when a plausible ellipse scores below
	// the configured minimum quality.
	ErrLowConfidence = errors.New("calibration confidence too low")
)

// Hit detection errors.
var (
	// ErrNoReference is returned by HitDetector.Detect before a reference
	// frame has been captured.
	ErrNoReference = errors.New("no reference frame")

	// ErrNoChange is returned when the frame difference is below the
	// minimum changed-pixel count.
	ErrNoChange = errors.New("no change against reference")

	// ErrNoisyDiff is returned when too large a share of the board changed,
	// typically a person in front of the camera or a lighting change.
	ErrNoisyDiff = errors.New("frame difference too noisy")
)
