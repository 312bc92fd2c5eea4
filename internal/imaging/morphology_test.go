package imaging

import "testing"

func squareMask(w, h, x0, y0, size int) *Mask {
	m := NewMask(w, h)
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			m.Set(x, y, true)
		}
	}
	return m
}

func TestDilate(t *testing.T) {
	m := NewMask(10, 10)
	m.Set(5, 5, true)
	if got := Dilate(m, 3).Count(); got != 9 {
		t.Errorf("Dilate single pixel k=3: %d set, want 9", got)
	}
	if got := Dilate(m, 5).Count(); got != 25 {
		t.Errorf("Dilate single pixel k=5: %d set, want 25", got)
	}
	if m.Count() != 1 {
		t.Error("Dilate modified its input")
	}
}

func TestDilate_NoWrap(t *testing.T) {
	m := NewMask(10, 10)
	m.Set(0, 0, true)
	d := Dilate(m, 3)
	if got := d.Count(); got != 4 {
		t.Errorf("corner dilate: %d set, want 4", got)
	}
	if d.At(9, 0) || d.At(0, 9) || d.At(9, 9) {
		t.Error("dilation wrapped around the image edge")
	}
}

func TestErode(t *testing.T) {
	m := squareMask(10, 10, 2, 2, 5)
	if got := Erode(m, 3).Count(); got != 9 {
		t.Errorf("Erode 5x5 k=3: %d set, want 9", got)
	}

	// Out-of-range neighbors are ignored, so a full mask stays full.
	full := squareMask(5, 5, 0, 0, 5)
	if got := Erode(full, 3).Count(); got != 25 {
		t.Errorf("Erode full mask: %d set, want 25", got)
	}
}

func TestClose_FillsPinholes(t *testing.T) {
	tests := []struct {
		name string
		k    int
	}{
		{"k=3", 3},
		{"even k rounds up", 2},
		{"default kernel", 0},
		{"k=5", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := squareMask(20, 20, 5, 5, 10)
			m.Set(9, 9, false)
			m.Set(10, 12, false)

			c := Close(m, tt.k)
			if got := c.Count(); got != 100 {
				t.Errorf("Close: %d set, want 100", got)
			}
			if !c.At(9, 9) || !c.At(10, 12) {
				t.Error("pinholes not filled")
			}
			if c.At(4, 5) || c.At(15, 15) {
				t.Error("outline grew")
			}
			if m.Count() != 98 {
				t.Error("Close modified its input")
			}
		})
	}
}

func TestClose_MergesFragments(t *testing.T) {
	m := NewMask(20, 10)
	for x := 2; x < 18; x++ {
		if x == 9 {
			continue // one-pixel gap
		}
		for y := 3; y < 6; y++ {
			m.Set(x, y, true)
		}
	}
	if b := LargestBlob(m, 1); b.Area != 3*8 {
		t.Fatalf("before close: largest area %d", b.Area)
	}
	if b := LargestBlob(Close(m, 3), 1); b.Area != 3*16 {
		t.Errorf("after close: largest area %d, want %d", b.Area, 3*16)
	}
}
