//go:build !gocv

package source

import (
	"context"

	"github.com/ironsheep/dartcam/internal/imaging"
)

// Camera is unavailable in builds without the gocv tag.
type Camera struct{}

// OpenCamera always fails with ErrCameraUnavailable. Rebuild with
// -tags gocv for live capture.
func OpenCamera(id, width, height int) (*Camera, error) {
	return nil, ErrCameraUnavailable
}

// Next always fails with ErrCameraUnavailable.
func (c *Camera) Next(ctx context.Context) (*imaging.Frame, error) {
	return nil, ErrCameraUnavailable
}

// Close is a no-op.
func (c *Camera) Close() error { return nil }
