// Package imaging provides the per-frame pixel operations of the square detector.
//
// Functions work on standard Go image types. InRangeHSV, Close, Canny and CloneFrame
// return a fresh image and never modify their input. Blur returns its input as-is
// when sigma is not positive. DrawPolygon, FillCircle and DrawLabel draw into the
// image they are given. The coordinate system has (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward.
//
// # Pipeline Stages
//
// The detector calls these functions in a fixed order for every frame:
//
//  1. Blur (optional): Gaussian pre-blur of the color frame
//  2. InRangeHSV: threshold the frame against an HSV range into a binary mask
//  3. Close: morphological closing (dilate then erode) of the mask
//  4. Canny: edge map of the cleaned mask
//  5. DrawPolygon / FillCircle / DrawLabel: annotate accepted detections
//
// # HSV Scale
//
// HSV values use the 8-bit scale common to computer-vision tooling:
//   - H: 0-179 (degrees / 2)
//   - S: 0-255
//   - V: 0-255
//
// # Masks
//
// Masks are *image.Gray with exactly two values: 0 (background) and 255
// (foreground). Functions that produce masks preserve the bounds of their input.
package imaging
