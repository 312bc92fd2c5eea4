// Package detection locates the dartboard in a frame and finds dart tips.
//
// # Calibration
//
// Calibrator.Calibrate segments board-colored pixels (imaging.ColorMask),
// closes small gaps (imaging.Close), keeps the largest connected component
// and fits an ellipse to its outline:
//
//  1. Downscale: frames wider than MaxWidth are resized first and the fit is
//     scaled back to full resolution
//  2. Segmentation: HSV thresholds for red, green, black and white material
//  3. Component: the largest 4-connected blob of at least MinBlobArea pixels
//  4. Fit: centroid plus covariance principal axes (FitEllipse)
//  5. Validation: aspect ratio, radius and centre plausibility, then a
//     quality score in [0,1]
//
// Accepted fits go into a fixed-size EllipseHistory. With Stabilize set the
// calibrator reports the (optionally recency-weighted) history average,
// which damps jitter between frames.
//
// # Hit Detection
//
// HitDetector compares each frame against a reference frame of the empty
// board. Pixels inside the inflated board ellipse whose mean absolute RGB
// difference exceeds the threshold are collected; too few means no change,
// too many means lighting or occlusion noise. The dart tip is the mean of
// the changed pixels closest to the board centre, since the tip is the part
// of a dart nearest the bull while shaft and flight point outward.
//
// # Errors
//
// Every failure is a sentinel error checked with errors.Is. None of them is
// fatal: callers log the error and move on to the next frame.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Ellipse rotation is measured in radians from the +X axis toward +Y.
package detection
