package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ironsheep/dartcam/internal/imaging"
)

// ErrCameraUnavailable is returned when the binary was built without
// camera support or the device cannot be opened.
var ErrCameraUnavailable = errors.New("camera unavailable")

// ErrNoFrames is returned by NewDirSource when the directory holds no
// image files.
var ErrNoFrames = errors.New("no image files found")

// DirOptions tunes a DirSource.
type DirOptions struct {
	// Loop restarts from the first file instead of returning io.EOF.
	Loop bool
	// FPS throttles Next to at most this many frames per second. Zero
	// returns frames as fast as they decode.
	FPS float64
	// Cache keeps decoded frames in memory. Useful with Loop.
	Cache bool
}

// DirSource replays image files from a directory.
type DirSource struct {
	dir   string
	files []string
	opts  DirOptions
	cache *imaging.FrameCache

	mu   sync.Mutex
	next int
	last time.Time
	path string
}

// NewDirSource lists the image files in dir. Files are returned in lexical
// order of their names, so zero-padded sequence numbers replay in capture
// order.
func NewDirSource(dir string, opts DirOptions) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsImageFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFrames, dir)
	}
	sort.Strings(files)

	s := &DirSource{dir: dir, files: files, opts: opts}
	if opts.Cache {
		s.cache = imaging.NewFrameCache()
	}
	return s, nil
}

// Len returns the number of frames in one pass.
func (s *DirSource) Len() int { return len(s.files) }

// Path returns the file of the frame most recently returned by Next.
func (s *DirSource) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Rewind starts the next pass from the first file.
func (s *DirSource) Rewind() {
	s.mu.Lock()
	s.next = 0
	s.mu.Unlock()
}

// Next returns the next frame. It returns io.EOF after the last file unless
// Loop is set, and ctx.Err() if ctx ends while waiting on the throttle.
func (s *DirSource) Next(ctx context.Context) (*imaging.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.files) {
		if !s.opts.Loop {
			return nil, io.EOF
		}
		s.next = 0
	}
	if err := s.throttle(ctx); err != nil {
		return nil, err
	}

	path := s.files[s.next]
	var (
		f   *imaging.Frame
		err error
	)
	if s.cache != nil {
		f, err = s.cache.Load(path)
	} else {
		f, err = imaging.LoadFrame(path)
	}
	if err != nil {
		return nil, err
	}
	s.next++
	s.path = path
	return f, nil
}

func (s *DirSource) throttle(ctx context.Context) error {
	if s.opts.FPS <= 0 {
		return nil
	}
	interval := time.Duration(float64(time.Second) / s.opts.FPS)
	if !s.last.IsZero() {
		if wait := interval - time.Since(s.last); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	s.last = time.Now()
	return nil
}
