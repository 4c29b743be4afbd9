package detection

import "image"

// neighbors lists the 8 neighbor offsets in clockwise order (image coordinates, y down),
// starting east.
var neighbors = [8]image.Point{
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
	{-1, 0},  // W
	{-1, -1}, // NW
	{0, -1},  // N
	{1, -1},  // NE
}

const dirWest = 4

// FindContours extracts the outermost boundary of every foreground region in a mask.
//
// Any non-zero pixel is foreground. Regions are 8-connected; a region is external when
// it touches the background that reaches the image border, so regions nested inside
// the hole of another region are skipped. Holes never produce contours.
//
// Parameters:
//   - mask: Binary image, typically a cleaned color mask or an edge map.
//
// Returns:
//   - [][]image.Point: One contour per external region, in raster order of each region's
//     top-left pixel. Points are in the mask's coordinate space.
//
// # Algorithm
//
//  1. Padding: Copy the mask into a grid with a one-pixel zero border
//  2. Outside: Flood the background from the border using 4-connectivity
//  3. Labeling: Group foreground pixels into 8-connected regions, noting
//     whether each region touches the outside
//  4. Border Following: Trace each external region from its top-left pixel
//     (Suzuki-Abe border following)
//  5. Chain Compression: Keep only points where the trace changes direction, so
//     straight horizontal, vertical and diagonal runs collapse to their end points
//
// A single isolated pixel yields a one-point contour.
func FindContours(mask *image.Gray) [][]image.Point {
	b := mask.Bounds()
	g := newGrid(mask)

	outside := g.floodOutside()
	labels := make([]int32, len(g.fg))
	contours := make([][]image.Point, 0)

	var label int32
	for i, on := range g.fg {
		if !on || labels[i] != 0 {
			continue
		}
		label++
		if !g.labelRegion(labels, outside, i, label) {
			continue
		}

		start := image.Pt(i%g.w, i/g.w)
		traced := g.traceBorder(start)

		// Back to mask coordinates
		offset := b.Min.Sub(image.Pt(1, 1))
		contour := compressChain(traced)
		for j := range contour {
			contour[j] = contour[j].Add(offset)
		}
		contours = append(contours, contour)
	}

	return contours
}

// grid is a zero-padded foreground map. Every foreground cell has all 8 neighbors
// inside the grid.
type grid struct {
	w, h int
	fg   []bool
}

func newGrid(mask *image.Gray) *grid {
	b := mask.Bounds()
	g := &grid{w: b.Dx() + 2, h: b.Dy() + 2}
	g.fg = make([]bool, g.w*g.h)

	for y := 0; y < b.Dy(); y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()]
		for x, v := range row {
			if v != 0 {
				g.fg[(y+1)*g.w+x+1] = true
			}
		}
	}
	return g
}

func (g *grid) at(p image.Point) bool {
	return g.fg[p.Y*g.w+p.X]
}

// floodOutside marks the background cells 4-connected to the padding border.
func (g *grid) floodOutside() []bool {
	outside := make([]bool, len(g.fg))
	stack := []int{0}
	outside[0] = true

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%g.w, i/g.w

		for _, n := range [4]image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := x+n.X, y+n.Y
			if nx < 0 || nx >= g.w || ny < 0 || ny >= g.h {
				continue
			}
			j := ny*g.w + nx
			if g.fg[j] || outside[j] {
				continue
			}
			outside[j] = true
			stack = append(stack, j)
		}
	}
	return outside
}

// labelRegion flood-fills the 8-connected region containing start with label and
// reports whether any of its pixels has an outside 4-neighbor.
func (g *grid) labelRegion(labels []int32, outside []bool, start int, label int32) bool {
	stack := []int{start}
	labels[start] = label
	external := false

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if outside[i-1] || outside[i+1] || outside[i-g.w] || outside[i+g.w] {
			external = true
		}

		for _, n := range neighbors {
			j := i + n.Y*g.w + n.X
			if !g.fg[j] || labels[j] != 0 {
				continue
			}
			labels[j] = label
			stack = append(stack, j)
		}
	}
	return external
}

// traceBorder follows the outer border of the region whose top-left pixel is start.
// The west neighbor of start is background by construction.
func (g *grid) traceBorder(start image.Point) []image.Point {
	// Clockwise from west for the first foreground neighbor
	first := -1
	for k := 1; k <= 8; k++ {
		d := (dirWest + k) % 8
		if g.at(start.Add(neighbors[d])) {
			first = d
			break
		}
	}
	if first < 0 {
		return []image.Point{start}
	}

	last := start.Add(neighbors[first])
	prev, cur := last, start
	border := []image.Point{start}

	for {
		// Counterclockwise around cur, starting after the direction back to prev
		back := direction(cur, prev)
		var next image.Point
		for k := 1; k <= 8; k++ {
			d := (back - k + 8) % 8
			if q := cur.Add(neighbors[d]); g.at(q) {
				next = q
				break
			}
		}

		if next == start && cur == last {
			break
		}
		border = append(border, next)
		prev, cur = cur, next
	}

	return border
}

// compressChain drops every point whose incoming and outgoing directions match.
// The first point is always kept.
func compressChain(border []image.Point) []image.Point {
	n := len(border)
	if n <= 2 {
		return append([]image.Point(nil), border...)
	}

	out := []image.Point{border[0]}
	for i := 1; i < n; i++ {
		in := direction(border[i-1], border[i])
		next := direction(border[i], border[(i+1)%n])
		if in != next {
			out = append(out, border[i])
		}
	}
	return out
}

// direction returns the index in neighbors of the step from a to an adjacent point b.
func direction(a, b image.Point) int {
	d := b.Sub(a)
	for i, n := range neighbors {
		if n == d {
			return i
		}
	}
	return -1
}
