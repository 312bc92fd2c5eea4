// Package overlay draws the calibrated board geometry and scored hits onto
// a frame, for operator feedback and debug dumps.
//
// Annotate never modifies its input; it returns a new RGBA image with the
// six ring outlines, the twenty sector spokes, the sector numbers just
// outside the double ring and a labelled cross for each Mark. Colours come
// from a Style, which ParseStyle builds from "#RRGGBB" strings.
package overlay
