package imaging

// DefaultKernelSize is the closing kernel used when none is configured.
const DefaultKernelSize = 5

// Dilate returns a new mask where each pixel is set if any pixel in the
// k×k neighborhood of the input is set. Neighbors outside the image are
// ignored, never wrapped.
func Dilate(m *Mask, k int) *Mask {
	return separable(m, k, false)
}

// Erode returns a new mask where each pixel is set only if every in-range
// pixel in the k×k neighborhood of the input is set.
func Erode(m *Mask, k int) *Mask {
	return separable(m, k, true)
}

// Close performs a morphological closing, erode(dilate(m, k), k). It fills
// pinholes and merges nearby fragments without growing the outer outline.
// Even kernel sizes are rounded up to the next odd size; k < 1 is treated
// as DefaultKernelSize.
func Close(m *Mask, k int) *Mask {
	return Erode(Dilate(m, k), k)
}

// separable applies a square max (erode=false) or min (erode=true) filter
// as a horizontal pass followed by a vertical pass. Each pass keeps a
// running count of set pixels inside the window, so cost is independent
// of k.
func separable(m *Mask, k int, erode bool) *Mask {
	if k < 1 {
		k = DefaultKernelSize
	}
	if k%2 == 0 {
		k++
	}
	r := k / 2
	w, h := m.Width, m.Height

	tmp := NewMask(w, h)
	for y := 0; y < h; y++ {
		row := m.Bits[y*w : (y+1)*w]
		out := tmp.Bits[y*w : (y+1)*w]
		filterLine(len(row), r, erode, func(i int) bool { return row[i] }, func(i int, v bool) { out[i] = v })
	}

	res := NewMask(w, h)
	for x := 0; x < w; x++ {
		filterLine(h, r, erode,
			func(i int) bool { return tmp.Bits[i*w+x] },
			func(i int, v bool) { res.Bits[i*w+x] = v })
	}
	return res
}

// filterLine runs a 1-D window of radius r over n samples.
func filterLine(n, r int, erode bool, get func(int) bool, put func(int, bool)) {
	set := 0
	// Prime the window for i=0: samples [0, r].
	for j := 0; j <= r && j < n; j++ {
		if get(j) {
			set++
		}
	}
	for i := 0; i < n; i++ {
		lo := max(i-r, 0)
		hi := min(i+r, n-1)
		if erode {
			put(i, set == hi-lo+1)
		} else {
			put(i, set > 0)
		}
		// Slide: drop i-r, add i+r+1.
		if out := i - r; out >= 0 && get(out) {
			set--
		}
		if in := i + r + 1; in < n && get(in) {
			set++
		}
	}
}
