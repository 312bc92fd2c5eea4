//go:build gocv

package source

import (
	"context"
	"fmt"
	"io"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ironsheep/dartcam/internal/imaging"
)

// Camera reads frames from a capture device through OpenCV.
type Camera struct {
	mu  sync.Mutex
	cap *gocv.VideoCapture
	mat gocv.Mat
}

// OpenCamera opens capture device id. Width and height request a capture
// size; zero keeps the device default.
func OpenCamera(id, width, height int) (*Camera, error) {
	vc, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrCameraUnavailable, id, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: device %d not opened", ErrCameraUnavailable, id)
	}
	if width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(width))
	}
	if height > 0 {
		vc.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	return &Camera{cap: vc, mat: gocv.NewMat()}, nil
}

// Next grabs one frame. It returns io.EOF when the device stops delivering.
func (c *Camera) Next(ctx context.Context) (*imaging.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if ok := c.cap.Read(&c.mat); !ok {
		return nil, io.EOF
	}
	if c.mat.Empty() {
		return nil, fmt.Errorf("camera returned an empty frame")
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert camera frame: %w", err)
	}
	return imaging.NewFrame(img), nil
}

// Close releases the device.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mat.Close()
	return c.cap.Close()
}
