package imaging

import (
	"image"
	"image/color"
	"math"
	"reflect"
	"testing"
)

func TestCanny_SquareOutline(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 120, 120))
	fillGray(mask, image.Rect(30, 30, 90, 90))

	edges := Canny(mask, 50, 150)

	if edges.Bounds() != mask.Bounds() {
		t.Fatalf("bounds: got %v, want %v", edges.Bounds(), mask.Bounds())
	}
	for _, v := range edges.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("non-binary edge value %d", v)
		}
	}

	// Left and top edges land just outside the region, right and bottom just inside
	for i := 31; i < 89; i++ {
		if got := edgeColumns(edges, i); !reflect.DeepEqual(got, []int{29, 89}) {
			t.Errorf("row %d: edges at x=%v, want [29 89]", i, got)
		}
		if got := edgeRows(edges, i); !reflect.DeepEqual(got, []int{29, 89}) {
			t.Errorf("column %d: edges at y=%v, want [29 89]", i, got)
		}
	}

	// The top-left corner turns diagonally through (30,30)
	for _, p := range []image.Point{{31, 29}, {30, 30}, {29, 31}} {
		if edges.GrayAt(p.X, p.Y).Y != 255 {
			t.Errorf("corner pixel %v missing", p)
		}
	}
	for _, p := range []image.Point{{29, 29}, {30, 29}, {29, 30}} {
		if edges.GrayAt(p.X, p.Y).Y != 0 {
			t.Errorf("corner pixel %v should be suppressed", p)
		}
	}
}

func TestCanny_RotatedOutline(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
	}{
		{"axis aligned", 0},
		{"20 degrees", 20},
		{"45 degrees", 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := image.NewGray(image.Rect(0, 0, 200, 200))
			fillRotatedSquare(mask, image.Pt(100, 100), 100, tt.angle)

			edges := Canny(mask, 50, 150)

			// Closed: the background cannot reach the center without crossing an edge
			if reachableFromCorner(edges, image.Pt(100, 100)) {
				t.Error("outline has a gap")
			}

			// Thin: every edge pixel sits on the square boundary
			sin, cos := math.Sincos(tt.angle * math.Pi / 180)
			for y := 0; y < 200; y++ {
				for x := 0; x < 200; x++ {
					if edges.GrayAt(x, y).Y == 0 {
						continue
					}
					dx, dy := float64(x)+0.5-100, float64(y)+0.5-100
					u, v := dx*cos+dy*sin, -dx*sin+dy*cos
					if d := math.Abs(math.Max(math.Abs(u), math.Abs(v)) - 50); d > 1 {
						t.Fatalf("edge pixel (%d,%d) is %.1f px off the boundary", x, y, d)
					}
				}
			}
		})
	}
}

func TestCanny_Uniform(t *testing.T) {
	for _, v := range []uint8{0, 128, 255} {
		mask := image.NewGray(image.Rect(0, 0, 40, 40))
		for i := range mask.Pix {
			mask.Pix[i] = v
		}

		if n := countNonZero(Canny(mask, 50, 150)); n != 0 {
			t.Errorf("uniform %d: got %d edge pixels, want 0", v, n)
		}
	}
}

func TestCanny_Thresholds(t *testing.T) {
	// A 0->30 step has a gradient of 120: weak at 50/150, strong at 10/100
	mask := image.NewGray(image.Rect(0, 0, 100, 100))
	fillGrayValue(mask, image.Rect(50, 0, 100, 100), 30)

	tests := []struct {
		name      string
		low, high int
		want      int
	}{
		{"weak only", 50, 150, 0},
		{"strong", 10, 100, 100},
		{"below low", 120, 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := Canny(mask, tt.low, tt.high)
			if got := countNonZero(edges); got != tt.want {
				t.Errorf("got %d edge pixels, want %d", got, tt.want)
			}
		})
	}
}

func TestCanny_HysteresisFollowsWeakEdges(t *testing.T) {
	// Strong step in the top half, weak step below it on the same column
	mask := image.NewGray(image.Rect(0, 0, 100, 100))
	fillGray(mask, image.Rect(50, 0, 100, 50))
	fillGrayValue(mask, image.Rect(50, 50, 100, 100), 30)

	edges := Canny(mask, 50, 150)

	if edges.GrayAt(49, 10).Y != 255 {
		t.Error("strong edge missing at (49,10)")
	}
	// Far more than one pixel away from any strong seed
	for _, y := range []int{60, 80, 95} {
		if edges.GrayAt(49, y).Y != 255 {
			t.Errorf("weak edge connected to a strong one missing at (49,%d)", y)
		}
	}
}

func TestCanny_OffsetBounds(t *testing.T) {
	full := image.NewGray(image.Rect(0, 0, 120, 120))
	fillGray(full, image.Rect(30, 30, 90, 90))
	sub := full.SubImage(image.Rect(10, 10, 110, 110)).(*image.Gray)

	edges := Canny(sub, 50, 150)

	if edges.Bounds() != sub.Bounds() {
		t.Fatalf("bounds: got %v, want %v", edges.Bounds(), sub.Bounds())
	}
	if edges.GrayAt(29, 60).Y != 255 || edges.GrayAt(89, 60).Y != 255 {
		t.Error("edges not reported in the mask's coordinate space")
	}
	if edges.GrayAt(60, 60).Y != 0 {
		t.Error("interior of the square should not be an edge")
	}
}

func TestCanny_TinyMasks(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
	}{
		{"empty", image.Rectangle{}},
		{"single pixel", image.Rect(0, 0, 1, 1)},
		{"single row", image.Rect(0, 0, 5, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := image.NewGray(tt.bounds)
			fillGray(mask, tt.bounds)

			edges := Canny(mask, 50, 150)
			if edges.Bounds() != tt.bounds {
				t.Errorf("bounds: got %v, want %v", edges.Bounds(), tt.bounds)
			}
			if n := countNonZero(edges); n != 0 {
				t.Errorf("got %d edge pixels, want 0", n)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want int
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{15, 0, 10, 10},
		{10, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%d, %d, %d): got %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

// Helper functions

// countNonZero counts the foreground pixels of a mask
func countNonZero(m *image.Gray) int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// fillGray sets every pixel of r to 255
func fillGray(m *image.Gray, r image.Rectangle) {
	fillGrayValue(m, r, 255)
}

// fillGrayValue sets every pixel of r to v
func fillGrayValue(m *image.Gray, r image.Rectangle, v uint8) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

// fillRotatedSquare sets the pixels whose centers fall inside a square of the given
// side, centered at c and rotated by angle degrees
func fillRotatedSquare(m *image.Gray, c image.Point, side, angle float64) {
	sin, cos := math.Sincos(angle * math.Pi / 180)
	half := side / 2
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx, dy := float64(x)+0.5-float64(c.X), float64(y)+0.5-float64(c.Y)
			u, v := dx*cos+dy*sin, -dx*sin+dy*cos
			if math.Abs(u) < half && math.Abs(v) < half {
				m.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
}

// edgeColumns lists the x of every edge pixel in row y
func edgeColumns(m *image.Gray, y int) []int {
	var xs []int
	for x := m.Bounds().Min.X; x < m.Bounds().Max.X; x++ {
		if m.GrayAt(x, y).Y != 0 {
			xs = append(xs, x)
		}
	}
	return xs
}

// edgeRows lists the y of every edge pixel in column x
func edgeRows(m *image.Gray, x int) []int {
	var ys []int
	for y := m.Bounds().Min.Y; y < m.Bounds().Max.Y; y++ {
		if m.GrayAt(x, y).Y != 0 {
			ys = append(ys, y)
		}
	}
	return ys
}

// reachableFromCorner reports whether target can be reached from the top-left pixel
// through 4-connected non-edge pixels
func reachableFromCorner(edges *image.Gray, target image.Point) bool {
	b := edges.Bounds()
	seen := map[image.Point]bool{b.Min: true}
	stack := []image.Point{b.Min}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p == target {
			return true
		}
		for _, d := range []image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			q := p.Add(d)
			if !q.In(b) || seen[q] || edges.GrayAt(q.X, q.Y).Y != 0 {
				continue
			}
			seen[q] = true
			stack = append(stack, q)
		}
	}
	return false
}
