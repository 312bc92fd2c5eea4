package detection

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/dartcam/internal/imaging"
)

var (
	background = color.RGBA{60, 90, 200, 255}
	boardBlack = color.RGBA{20, 20, 20, 255}
	boardWhite = color.RGBA{235, 230, 215, 255}
	dartYellow = color.RGBA{240, 220, 40, 255}
)

// createBoardImage paints a blue scene with a black/white sectored
// ellipse of the given radii centred at (cx, cy).
func createBoardImage(width, height int, cx, cy, rx, ry float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			if (dx*dx)/(rx*rx)+(dy*dy)/(ry*ry) > 1 {
				img.SetRGBA(x, y, background)
				continue
			}
			deg := math.Atan2(dx, -dy) * 180 / math.Pi
			if deg < 0 {
				deg += 360
			}
			if int((deg+9)/18)%2 == 0 {
				img.SetRGBA(x, y, boardBlack)
			} else {
				img.SetRGBA(x, y, boardWhite)
			}
		}
	}
	return img
}

func createBoardFrame(t *testing.T, width, height int, cx, cy, rx, ry float64) *imaging.Frame {
	t.Helper()
	return imaging.NewFrame(createBoardImage(width, height, cx, cy, rx, ry))
}

// createUniformFrame returns a frame filled with c.
func createUniformFrame(width, height int, c color.RGBA) *imaging.Frame {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return imaging.NewFrame(img)
}

// paintRect fills [x0,x1) x [y0,y1) of a copy of f with c.
func paintRect(f *imaging.Frame, x0, y0, x1, y1 int, c color.RGBA) *imaging.Frame {
	img := image.NewRGBA(f.Bounds())
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			r, g, b := f.RGB(x, y)
			img.SetRGBA(x, y, color.RGBA{r, g, b, 255})
		}
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return imaging.NewFrame(img)
}

// ellipsePoints samples n points uniformly in parameter on an ellipse
// outline.
func ellipsePoints(n int, cx, cy, rx, ry, rot float64) []image.Point {
	pts := make([]image.Point, 0, n)
	c, s := math.Cos(rot), math.Sin(rot)
	for i := 0; i < n; i++ {
		t := 2 * math.Pi * float64(i) / float64(n)
		u, v := rx*math.Cos(t), ry*math.Sin(t)
		pts = append(pts, image.Pt(int(math.Round(cx+u*c-v*s)), int(math.Round(cy+u*s+v*c))))
	}
	return pts
}
