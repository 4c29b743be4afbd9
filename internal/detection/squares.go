package detection

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("detection: invalid config")

// Square represents an accepted square-like region in a single frame.
//
// Squares carry no identity; a new set is produced for every frame.
type Square struct {
	// Center is the center of the bounding box: (x + w/2, y + h/2), integer division.
	Center image.Point

	// Width is the bounding box width in pixels (max x - min x + 1).
	Width int

	// Height is the bounding box height in pixels (max y - min y + 1).
	Height int

	// Bounds is the bounding box of the approximated polygon.
	Bounds image.Rectangle

	// Polygon is the approximated quadrilateral, in hull order.
	Polygon []image.Point
}

// Config holds the shape filter thresholds.
type Config struct {
	// Epsilon is the polygon approximation tolerance as a fraction of hull perimeter.
	Epsilon float64 `yaml:"epsilon"`

	// Vertices is the exact vertex count an approximated polygon must have.
	Vertices int `yaml:"vertices"`

	// MinAspect and MaxAspect bound width/height, inclusive.
	MinAspect float64 `yaml:"min_aspect"`
	MaxAspect float64 `yaml:"max_aspect"`

	// MinSize is the minimum width and height in pixels, inclusive.
	MinSize int `yaml:"min_size"`
}

// DefaultConfig returns the thresholds for roughly square quadrilaterals at least
// 50 pixels on a side.
func DefaultConfig() Config {
	return Config{
		Epsilon:   0.02,
		Vertices:  4,
		MinAspect: 0.8,
		MaxAspect: 1.2,
		MinSize:   50,
	}
}

// Validate reports whether the thresholds describe a usable filter.
func (c Config) Validate() error {
	switch {
	case c.Epsilon <= 0 || c.Epsilon >= 1:
		return fmt.Errorf("%w: epsilon must be in (0, 1), got %g", ErrInvalidConfig, c.Epsilon)
	case c.Vertices < 3:
		return fmt.Errorf("%w: vertices must be at least 3, got %d", ErrInvalidConfig, c.Vertices)
	case c.MinAspect <= 0 || c.MinAspect > c.MaxAspect:
		return fmt.Errorf("%w: aspect band [%g, %g] is empty", ErrInvalidConfig, c.MinAspect, c.MaxAspect)
	case c.MinSize < 1:
		return fmt.Errorf("%w: min size must be positive, got %d", ErrInvalidConfig, c.MinSize)
	}
	return nil
}

// Filter selects the contours that look like squares.
//
// Parameters:
//   - contours: Candidate boundaries, typically from FindContours.
//   - cfg: Shape thresholds; see DefaultConfig.
//
// Returns:
//   - []Square: One entry per accepted contour, in input order. Overlapping contours
//     are not merged, so the same object may be reported more than once.
//
// # Algorithm
//
//  1. Convex Hull: Bridge gaps left by a partly missing or occluded edge
//  2. Approximation: Douglas-Peucker on the closed hull with tolerance
//     Epsilon x hull perimeter
//  3. Vertex Check: Reject unless exactly Vertices corners remain
//  4. Bounding Box: Axis-aligned box of the approximated polygon
//  5. Shape Check: Reject unless MinAspect <= w/h <= MaxAspect and both w and h
//     are at least MinSize
//
// Filter is pure: it holds no state and never modifies its input.
func Filter(contours [][]image.Point, cfg Config) []Square {
	squares := make([]Square, 0)

	for _, contour := range contours {
		if len(contour) == 0 {
			continue
		}

		hull := ConvexHull(contour)
		approx := ApproxPolyDP(hull, cfg.Epsilon*ArcLength(hull, true), true)
		if len(approx) != cfg.Vertices {
			continue
		}

		r := BoundingRect(approx)
		w, h := r.Dx(), r.Dy()
		aspect := float64(w) / float64(h)
		if aspect < cfg.MinAspect || aspect > cfg.MaxAspect {
			continue
		}
		if w < cfg.MinSize || h < cfg.MinSize {
			continue
		}

		squares = append(squares, Square{
			Center:  image.Pt(r.Min.X+w/2, r.Min.Y+h/2),
			Width:   w,
			Height:  h,
			Bounds:  r,
			Polygon: approx,
		})
	}

	return squares
}

// Detect runs both contour passes and filters the combined set.
//
// Contours from the edge map come first, then contours from the mask itself. The two
// passes are independent, so a solid square usually appears in both.
func Detect(mask, edges *image.Gray, cfg Config) []Square {
	contours := FindContours(edges)
	contours = append(contours, FindContours(mask)...)
	return Filter(contours, cfg)
}
