package detection

import (
	"image"
	"math"
	"sort"
)

// ConvexHull returns the convex hull of a point set using Andrew's monotone chain.
//
// Duplicate and collinear points are dropped, so a hull of an axis-aligned square
// contour has exactly its 4 corners. Fewer than three distinct points are returned
// as-is (deduplicated). The input slice is not modified.
func ConvexHull(pts []image.Point) []image.Point {
	sorted := append([]image.Point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	// Remove duplicates
	uniq := sorted[:0]
	for i, p := range sorted {
		if i == 0 || p != sorted[i-1] {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) < 3 {
		return uniq
	}

	hull := make([]image.Point, 0, 2*len(uniq))

	// Lower chain
	for _, p := range uniq {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Upper chain
	lower := len(hull) + 1
	for i := len(uniq) - 2; i >= 0; i-- {
		p := uniq[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Last point repeats the first
	return hull[:len(hull)-1]
}

// cross returns the z component of (a-o) x (b-o). Positive means a counterclockwise
// turn in a y-up frame.
func cross(o, a, b image.Point) int64 {
	return int64(a.X-o.X)*int64(b.Y-o.Y) - int64(a.Y-o.Y)*int64(b.X-o.X)
}

// ArcLength returns the length of a polyline, including the closing segment when
// closed is true.
func ArcLength(curve []image.Point, closed bool) float64 {
	if len(curve) < 2 {
		return 0
	}

	length := 0.0
	for i := 1; i < len(curve); i++ {
		length += dist(curve[i-1], curve[i])
	}
	if closed {
		length += dist(curve[len(curve)-1], curve[0])
	}
	return length
}

// ApproxPolyDP simplifies a curve with the Ramer-Douglas-Peucker algorithm.
//
// Parameters:
//   - curve: Ordered points, for example a contour or its convex hull.
//   - epsilon: Maximum distance in pixels between the curve and its approximation.
//   - closed: Whether the last point connects back to the first.
//
// Returns:
//   - []image.Point: The retained vertices, in curve order.
//
// # Algorithm
//
// An open curve keeps its end points and recursively keeps the point farthest from
// the chord between them whenever that distance exceeds epsilon.
//
// A closed curve has no natural end points, so two anchors are chosen first: the
// point farthest from curve[0], then the point farthest from that one. The curve is
// split at the anchors into two open chains, each chain is simplified, and the
// results are joined. A closed result whose anchors coincide collapses to one point.
func ApproxPolyDP(curve []image.Point, epsilon float64, closed bool) []image.Point {
	n := len(curve)
	if n <= 2 {
		return append([]image.Point(nil), curve...)
	}
	if !closed {
		return simplify(curve, epsilon)
	}

	b := farthestFrom(curve, curve[0])
	a := farthestFrom(curve, curve[b])
	if curve[a] == curve[b] {
		return []image.Point{curve[a]}
	}

	// Chains a..b and b..a, both inclusive, walking forward around the curve
	chain := func(from, to int) []image.Point {
		out := []image.Point{curve[from]}
		for i := from; i != to; {
			i = (i + 1) % n
			out = append(out, curve[i])
		}
		return out
	}

	first := simplify(chain(a, b), epsilon)
	second := simplify(chain(b, a), epsilon)

	result := append([]image.Point(nil), first...)
	return append(result, second[1:len(second)-1]...)
}

// simplify runs Douglas-Peucker on an open chain, keeping both end points.
func simplify(chain []image.Point, epsilon float64) []image.Point {
	if len(chain) <= 2 {
		return append([]image.Point(nil), chain...)
	}

	first, last := chain[0], chain[len(chain)-1]
	maxDist, index := -1.0, 0
	for i := 1; i < len(chain)-1; i++ {
		if d := segmentDistance(chain[i], first, last); d > maxDist {
			maxDist, index = d, i
		}
	}

	if maxDist <= epsilon {
		return []image.Point{first, last}
	}

	left := simplify(chain[:index+1], epsilon)
	right := simplify(chain[index:], epsilon)
	return append(left[:len(left)-1], right...)
}

// segmentDistance returns the perpendicular distance from p to the line through a
// and b, or the distance to a when a and b coincide.
func segmentDistance(p, a, b image.Point) float64 {
	if a == b {
		return dist(p, a)
	}
	num := math.Abs(float64(cross(a, b, p)))
	return num / dist(a, b)
}

func farthestFrom(curve []image.Point, p image.Point) int {
	best, bestDist := 0, -1.0
	for i, q := range curve {
		if d := dist(p, q); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func dist(a, b image.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// BoundingRect returns the smallest axis-aligned rectangle containing every point.
// Both edges are inclusive of the extreme points, so Dx() is max-min+1.
// An empty input yields the zero rectangle.
func BoundingRect(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}

	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
