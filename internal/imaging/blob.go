package imaging

import "image"

// DefaultMinBlobArea is the smallest component, in pixels, accepted as a
// dartboard candidate.
const DefaultMinBlobArea = 1000

// Blob is a 4-connected component of a Mask.
type Blob struct {
	// Points lists every pixel of the component in discovery order.
	Points []image.Point

	// Bounds is the bounding box; Max is exclusive.
	Bounds image.Rectangle

	// Area is the pixel count (len(Points)).
	Area int

	width, height int
	labels        []bool // membership, row-major over the source mask
}

// LargestBlob returns the largest 4-connected component of m, or nil when
// no component reaches minArea pixels.
//
// Components are discovered by a row-major scan of unvisited set pixels
// and grown with an iterative stack-based flood fill, so very large
// components cannot overflow the goroutine stack. When two components have
// the same size the first one discovered wins, which makes the result a
// pure function of the mask.
func LargestBlob(m *Mask, minArea int) *Blob {
	w, h := m.Width, m.Height
	visited := make([]bool, w*h)

	var best *Blob
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !m.Bits[i] || visited[i] {
				continue
			}
			pts, bounds := floodFill(m, visited, x, y)
			if len(pts) < minArea {
				continue
			}
			if best == nil || len(pts) > best.Area {
				best = &Blob{Points: pts, Bounds: bounds, Area: len(pts), width: w, height: h}
			}
		}
	}
	if best != nil {
		best.labels = make([]bool, w*h)
		for _, p := range best.Points {
			best.labels[p.Y*w+p.X] = true
		}
	}
	return best
}

// floodFill collects the 4-connected component containing (startX, startY).
func floodFill(m *Mask, visited []bool, startX, startY int) ([]image.Point, image.Rectangle) {
	w, h := m.Width, m.Height
	minX, minY, maxX, maxY := startX, startY, startX, startY

	pts := make([]image.Point, 0, 64)
	stack := []image.Point{{X: startX, Y: startY}}
	visited[startY*w+startX] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pts = append(pts, p)

		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)

		for _, d := range neighbors4 {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			j := ny*w + nx
			if visited[j] || !m.Bits[j] {
				continue
			}
			visited[j] = true
			stack = append(stack, image.Point{X: nx, Y: ny})
		}
	}
	return pts, image.Rect(minX, minY, maxX+1, maxY+1)
}

var neighbors4 = [4]image.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

// Contains reports whether (x, y) belongs to the blob.
func (b *Blob) Contains(x, y int) bool {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return false
	}
	return b.labels[y*b.width+x]
}

// Boundary returns the blob pixels that have at least one 4-neighbor
// outside the blob (or outside the image), in row-major order.
func (b *Blob) Boundary() []image.Point {
	out := make([]image.Point, 0, b.Area/8+4)
	for y := b.Bounds.Min.Y; y < b.Bounds.Max.Y; y++ {
		for x := b.Bounds.Min.X; x < b.Bounds.Max.X; x++ {
			if !b.Contains(x, y) {
				continue
			}
			for _, d := range neighbors4 {
				if !b.Contains(x+d.X, y+d.Y) {
					out = append(out, image.Point{X: x, Y: y})
					break
				}
			}
		}
	}
	return out
}

// Mask renders the blob as a standalone mask.
func (b *Blob) Mask() *Mask {
	m := NewMask(b.width, b.height)
	copy(m.Bits, b.labels)
	return m
}
