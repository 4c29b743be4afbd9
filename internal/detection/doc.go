// Package detection finds square-like regions in binary masks.
//
// The package works on masks produced by the imaging package: any non-zero pixel is
// foreground. It has no notion of color or of frames over time.
//
// # Pipeline
//
//  1. Contours: FindContours traces the outer boundary of each foreground region
//  2. Geometry: ConvexHull, ArcLength, ApproxPolyDP and BoundingRect reduce each
//     boundary to a small polygon and its box
//  3. Filtering: Filter keeps polygons with the configured vertex count, aspect band
//     and minimum size
//
// Detect combines the three steps over two sources, an edge map and the mask it was
// computed from, and concatenates the results without deduplication.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Contours and detections are expressed in the mask's own coordinate space, so masks
// with a non-zero Bounds().Min produce offset points.
//
// # Limitations
//
//   - Regions nested inside the hole of another region are ignored
//   - Squares rotated near 45 degrees still pass, since the aspect check uses the
//     axis-aligned bounding box
//   - Touching squares merge into one region and are usually rejected
package detection
