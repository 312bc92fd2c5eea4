// Package board models the geometry of a dartboard as seen by a camera and
// converts image points into dart scores.
//
// # Coordinate Systems
//
// Image space uses the standard convention: origin at the top-left, X
// increasing rightward, Y increasing downward.
//
// Board space is polar. R is the distance from the bull normalized so that
// R = 1.0 is exactly the outer edge of the double ring. Theta is measured in
// degrees clockwise from the calibrated "20" direction, in [0, 360).
//
// An Ellipse describes the board outline in image space. Camera perspective
// turns the circular board into an ellipse; ToPolar undoes that by rotating
// the point into the ellipse's axes and scaling each axis by its radius, which
// maps the ellipse onto the unit circle.
//
// # Scoring
//
// ToScore applies the fixed ring table (see the Ring* constants) and the
// clockwise segment sequence 20, 1, 18, 4, 13, 6, 10, 15, 2, 17, 3, 19, 7,
// 16, 8, 11, 14, 9, 12, 5. Segment numbers are centred in their sectors, so
// the sector index is computed from theta shifted by half a sector.
package board
