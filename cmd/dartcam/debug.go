package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ironsheep/dartcam/internal/engine"
	"github.com/ironsheep/dartcam/internal/imaging"
	"github.com/ironsheep/dartcam/internal/overlay"
)

// frameTap remembers the last frame handed to the engine, so score
// callbacks can annotate the frame that produced the hit.
type frameTap struct {
	src engine.FrameSource

	mu   sync.Mutex
	last *imaging.Frame
}

func (t *frameTap) Next(ctx context.Context) (*imaging.Frame, error) {
	f, err := t.src.Next(ctx)
	if err == nil {
		t.mu.Lock()
		t.last = f
		t.mu.Unlock()
	}
	return f, err
}

func (t *frameTap) Last() *imaging.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

type debugDumper struct {
	dir    string
	style  overlay.Style
	logger *slog.Logger
}

func newDebugDumper(dir string, style overlay.Style, logger *slog.Logger) (*debugDumper, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create debug directory: %w", err)
	}
	return &debugDumper{dir: dir, style: style, logger: logger}, nil
}

// dump saves f annotated with the board geometry and the hit.
func (d *debugDumper) dump(f *imaging.Frame, snap engine.Snapshot, ev engine.ScoreEvent) {
	if f == nil || snap.Ellipse == nil {
		return
	}
	marks := []overlay.Mark{{Tip: ev.Tip, Label: ev.Label}}
	img := overlay.Annotate(f, *snap.Ellipse, snap.RotationOffset, marks, d.style)

	path := filepath.Join(d.dir, fmt.Sprintf("%s-%s.png", ev.ID, ev.Label))
	if err := imaging.SavePNG(path, img); err != nil {
		d.logger.Warn("failed to save debug frame", "path", path, "error", err)
		return
	}
	d.logger.Debug("debug frame saved", "path", path, "score", ev.Score.Points, "radius", ev.Polar.R)
}
