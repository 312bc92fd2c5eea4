package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestNewFrame_Copies(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, color.RGBA{10, 20, 30, 255})

	f := NewFrame(src)
	src.Set(1, 1, color.RGBA{99, 99, 99, 255})

	if r, g, b := f.RGB(1, 1); r != 10 || g != 20 || b != 30 {
		t.Errorf("RGB(1,1) = (%d,%d,%d), want (10,20,30)", r, g, b)
	}
	if f.Width() != 4 || f.Height() != 3 || f.ShortSide() != 3 {
		t.Errorf("size %dx%d short %d", f.Width(), f.Height(), f.ShortSide())
	}
}

func TestNewFrame_NormalizesOrigin(t *testing.T) {
	img := createPatternImage(100, 100)
	sub := img.SubImage(image.Rect(50, 50, 80, 70))

	f := NewFrame(sub)
	if f.Bounds() != image.Rect(0, 0, 30, 20) {
		t.Fatalf("Bounds = %v, want (0,0)-(30,20)", f.Bounds())
	}
	// The bottom-right quadrant of the pattern is white.
	if r, g, b := f.RGB(0, 0); r != 255 || g != 255 || b != 255 {
		t.Errorf("RGB(0,0) = (%d,%d,%d), want white", r, g, b)
	}
	if f.Image().Bounds().Min != (image.Point{}) {
		t.Errorf("Image() origin = %v", f.Image().Bounds().Min)
	}
}

func TestNewFrame_ConvertsPaletted(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.RGBA{0, 255, 0, 255}})
	pal.SetColorIndex(1, 0, 1)

	f := NewFrame(pal)
	if r, g, b := f.RGB(1, 0); r != 0 || g != 255 || b != 0 {
		t.Errorf("RGB(1,0) = (%d,%d,%d), want green", r, g, b)
	}
}
