package orient

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/ironsheep/dartcam/internal/board"
	"github.com/ironsheep/dartcam/internal/imaging"
)

var (
	// ErrNotFound is returned when too few numbers were read to fix the
	// orientation.
	ErrNotFound = errors.New("board orientation not found")

	// ErrUnavailable is returned by recognizers that cannot run in this
	// build.
	ErrUnavailable = errors.New("text recognition unavailable")
)

// Reading is the text recognized in one patch.
type Reading struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0.0 to 1.0
}

// Recognizer reads the single number shown in an upright patch.
type Recognizer interface {
	Recognize(patch *imaging.Frame) (Reading, error)
}

// Config tunes the orientation search.
type Config struct {
	// NumberRadius is the normalized radius of the number ring.
	NumberRadius float64 `json:"number_radius" validate:"gt=1,lte=2"`

	// PatchSize is the patch side as a fraction of the average board
	// radius.
	PatchSize float64 `json:"patch_size" validate:"gt=0,lte=1"`

	// Upscale enlarges patches before recognition.
	Upscale float64 `json:"upscale" validate:"gte=1,lte=8"`

	// MinConfidence discards weaker readings.
	MinConfidence float64 `json:"min_confidence" validate:"gte=0,lte=1"`

	// MinMatches is the number of agreeing readings required.
	MinMatches int `json:"min_matches" validate:"gte=1,lte=20"`
}

// DefaultConfig returns settings for a standard board.
func DefaultConfig() Config {
	return Config{
		NumberRadius:  1.18,
		PatchSize:     0.22,
		Upscale:       3,
		MinConfidence: 0.3,
		MinMatches:    3,
	}
}

// Orienter implements the engine's orientation search.
type Orienter struct {
	cfg    Config
	rec    Recognizer
	logger *slog.Logger
}

// New returns an Orienter reading numbers with rec.
func New(rec Recognizer, cfg Config, logger *slog.Logger) *Orienter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orienter{cfg: cfg, rec: rec, logger: logger}
}

// FindOffset returns the rotation offset, in degrees, that maps theta 0 to
// the "20" segment for board e in frame f.
func (o *Orienter) FindOffset(f *imaging.Frame, e board.Ellipse) (float64, error) {
	numbers, err := o.ReadNumbers(f, e)
	if err != nil {
		return 0, err
	}
	shift, matches := BestShift(numbers)
	o.logger.Debug("orientation search", "numbers", numbers, "shift", shift, "matches", matches)
	if matches < o.cfg.MinMatches {
		return 0, fmt.Errorf("%w: %d of %d readings agree", ErrNotFound, matches, o.cfg.MinMatches)
	}
	return float64(shift) * board.SegmentAngle, nil
}

// ReadNumbers returns the number read at each sector centre, measured
// with no rotation offset. Index i is the sector centred at i*18 degrees
// clockwise from image-up. Unreadable sectors are 0.
func (o *Orienter) ReadNumbers(f *imaging.Frame, e board.Ellipse) ([20]int, error) {
	var numbers [20]int
	m := board.NewMapper(e, 0)
	side := o.cfg.PatchSize * e.AverageRadius()
	if side < 4 {
		return numbers, fmt.Errorf("%w: board too small for number patches", ErrNotFound)
	}

	read := 0
	for i := range numbers {
		theta := float64(i) * board.SegmentAngle
		c := m.FromPolar(board.PolarCoord{R: o.cfg.NumberRadius, Theta: theta})
		rect := image.Rect(
			int(math.Round(c.X-side/2)), int(math.Round(c.Y-side/2)),
			int(math.Round(c.X+side/2)), int(math.Round(c.Y+side/2)),
		)
		if !rect.In(f.Bounds()) {
			continue
		}
		patch, err := imaging.Crop(f, rect, o.cfg.Upscale)
		if err != nil {
			continue
		}
		// Numbers are printed radially; turning the patch back by theta
		// stands them upright.
		patch = imaging.Rotate(patch, theta, color.Black)

		rd, err := o.rec.Recognize(patch)
		if errors.Is(err, ErrUnavailable) {
			return numbers, err
		}
		if err != nil || rd.Confidence < o.cfg.MinConfidence {
			continue
		}
		if n, ok := parseNumber(rd.Text); ok {
			numbers[i] = n
			read++
		}
	}
	o.logger.Debug("number ring read", "readings", read)
	return numbers, nil
}

// BestShift returns the shift s maximizing the number of sectors i with
// numbers[i] == board.Segments[(i+s) mod 20], and that count. Ties keep
// the smallest shift.
func BestShift(numbers [20]int) (shift, matches int) {
	for s := range board.Segments {
		n := 0
		for i, v := range numbers {
			if v != 0 && v == board.Segments[(i+s)%len(board.Segments)] {
				n++
			}
		}
		if n > matches {
			shift, matches = s, n
		}
	}
	return shift, matches
}

func parseNumber(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 || n > 20 {
		return 0, false
	}
	return n, true
}
