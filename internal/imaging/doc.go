// Package imaging provides the pixel-level stages of the dartboard pipeline:
// frames, HSV color classification, binary masks, morphology, connected
// components and the crop/resize helpers used by calibration and
// orientation.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Rectangles follow
// image.Rectangle: Min is inclusive, Max is exclusive. Every Frame is
// anchored at (0,0) whatever the bounds of the image it was built from.
//
// # Ownership
//
// A Frame is immutable once built and may be shared between goroutines.
// Masks are plain values owned by the stage that produced them; operations
// such as Close and ColorMask always allocate a new Mask instead of
// modifying their input.
//
// # Concurrency
//
// ColorMask splits rows across goroutines with bild's parallel package.
// Each row writes only its own slice of the output, so results do not
// depend on scheduling. FrameCache is safe for concurrent use.
//
// # Color Representation
//
// HSV values use H in degrees (0-360) and S, V as percentages (0-100),
// computed with go-colorful.
package imaging
