package detection

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/dartcam/internal/board"
	"github.com/ironsheep/dartcam/internal/imaging"
)

var (
	hitEllipse = board.Ellipse{CenterX: 120, CenterY: 120, RadiusX: 80, RadiusY: 80}
	boardGrey  = color.RGBA{128, 128, 128, 255}
)

// throwDart paints a vertical dart above the centre of hitEllipse: a
// 3 px shaft from y=96 (tip) up to y=72 and a 10x10 flight above it.
func throwDart(f *imaging.Frame) *imaging.Frame {
	f = paintRect(f, 119, 72, 122, 97, dartYellow)
	return paintRect(f, 115, 62, 125, 72, dartYellow)
}

func TestDetectHit_TipNearestCentre(t *testing.T) {
	ref := createUniformFrame(240, 240, boardGrey)
	cur := throwDart(ref)

	hit, err := DetectHit(cur, ref, hitEllipse, DefaultHitConfig())
	if err != nil {
		t.Fatalf("DetectHit failed: %v", err)
	}
	if hit.ChangedPixels != 3*25+100 {
		t.Errorf("changed pixels: got %d, want %d", hit.ChangedPixels, 3*25+100)
	}
	// The 18 nearest points are the bottom six shaft rows, y = 91..96.
	if math.Abs(hit.Tip.X-120) > 1e-9 || math.Abs(hit.Tip.Y-93.5) > 1e-9 {
		t.Errorf("tip: got (%.2f, %.2f), want (120, 93.5)", hit.Tip.X, hit.Tip.Y)
	}
	got := board.NewMapper(hitEllipse, 0).Score(hit.Tip)
	if want := (board.Score{Value: 20, Multiplier: 1, Points: 20}); got != want {
		t.Errorf("score: got %+v, want %+v", got, want)
	}
}

func TestDetectHit_NoChange(t *testing.T) {
	ref := createUniformFrame(240, 240, boardGrey)
	if _, err := DetectHit(ref, ref, hitEllipse, DefaultHitConfig()); !errors.Is(err, ErrNoChange) {
		t.Fatalf("got %v, want ErrNoChange", err)
	}
}

func TestDetectHit_IgnoresOutsideBoard(t *testing.T) {
	ref := createUniformFrame(240, 240, boardGrey)
	// Corner block at r > 1.1.
	cur := paintRect(ref, 0, 0, 20, 20, dartYellow)
	if _, err := DetectHit(cur, ref, hitEllipse, DefaultHitConfig()); !errors.Is(err, ErrNoChange) {
		t.Fatalf("got %v, want ErrNoChange", err)
	}
}

func TestDetectHit_SmallNoise(t *testing.T) {
	ref := createUniformFrame(240, 240, boardGrey)
	cur := paintRect(ref, 140, 140, 145, 145, dartYellow) // 25 px
	if _, err := DetectHit(cur, ref, hitEllipse, DefaultHitConfig()); !errors.Is(err, ErrNoChange) {
		t.Fatalf("got %v, want ErrNoChange", err)
	}
}

func TestDetectHit_GlobalLightingChange(t *testing.T) {
	ref := createUniformFrame(240, 240, boardGrey)
	cur := createUniformFrame(240, 240, color.RGBA{200, 200, 200, 255})
	if _, err := DetectHit(cur, ref, hitEllipse, DefaultHitConfig()); !errors.Is(err, ErrNoisyDiff) {
		t.Fatalf("got %v, want ErrNoisyDiff", err)
	}
}

func TestDetectHit_BelowThreshold(t *testing.T) {
	ref := createUniformFrame(240, 240, boardGrey)
	cur := paintRect(ref, 100, 100, 120, 120, color.RGBA{150, 150, 150, 255}) // diff 22
	if _, err := DetectHit(cur, ref, hitEllipse, DefaultHitConfig()); !errors.Is(err, ErrNoChange) {
		t.Fatalf("got %v, want ErrNoChange", err)
	}
}

func TestDetectHit_Blur(t *testing.T) {
	ref := createUniformFrame(240, 240, boardGrey)
	cur := throwDart(ref)
	cfg := DefaultHitConfig()
	cfg.BlurRadius = 1

	hit, err := DetectHit(cur, ref, hitEllipse, cfg)
	if err != nil {
		t.Fatalf("DetectHit failed: %v", err)
	}
	if math.Abs(hit.Tip.X-120) > 1.5 || math.Abs(hit.Tip.Y-93.5) > 3 {
		t.Errorf("tip: got (%.2f, %.2f), want near (120, 93.5)", hit.Tip.X, hit.Tip.Y)
	}
}

func TestHitDetector(t *testing.T) {
	d := NewHitDetector(DefaultHitConfig(), nil)
	ref := createUniformFrame(240, 240, boardGrey)
	cur := throwDart(ref)

	if _, err := d.Detect(cur, hitEllipse); !errors.Is(err, ErrNoReference) {
		t.Fatalf("got %v, want ErrNoReference", err)
	}

	d.SetReference(ref)
	if !d.HasReference() {
		t.Fatal("HasReference should be true after SetReference")
	}
	if _, err := d.Detect(cur, hitEllipse); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	// After the dart becomes part of the reference, the same frame is
	// no longer a hit.
	d.SetReference(cur)
	if _, err := d.Detect(cur, hitEllipse); !errors.Is(err, ErrNoChange) {
		t.Errorf("got %v, want ErrNoChange", err)
	}

	d.Reset()
	if d.HasReference() {
		t.Error("Reset should drop the reference")
	}
}

func TestHitDetector_SizeMismatch(t *testing.T) {
	d := NewHitDetector(DefaultHitConfig(), nil)
	d.SetReference(createUniformFrame(100, 100, boardGrey))
	if _, err := d.Detect(createUniformFrame(240, 240, boardGrey), hitEllipse); !errors.Is(err, ErrNoReference) {
		t.Fatalf("got %v, want ErrNoReference", err)
	}
}
