package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Dilate grows the foreground of a mask with a square kernel of side kernelSize.
// Each output pixel is the maximum of its kernelSize x kernelSize neighborhood;
// pixels outside the image replicate the nearest edge pixel.
func Dilate(mask *image.Gray, kernelSize int) *image.Gray {
	return toGray(effect.Dilate(mask, kernelRadius(kernelSize)), mask.Bounds())
}

// Erode shrinks the foreground of a mask with a square kernel of side kernelSize.
// Each output pixel is the minimum of its kernelSize x kernelSize neighborhood.
func Erode(mask *image.Gray, kernelSize int) *image.Gray {
	return toGray(effect.Erode(mask, kernelRadius(kernelSize)), mask.Bounds())
}

// Close performs a morphological closing: iterations dilations followed by the same
// number of erosions.
//
// Closing merges fragments separated by gaps narrower than the kernel and fills
// pinholes, while leaving the outline of large regions where it was.
//
// Parameters:
//   - mask: Binary source mask.
//   - kernelSize: Side of the square structuring element. Must be odd and >= 1.
//   - iterations: Number of dilate and erode passes. Must be >= 1.
//
// Returns:
//   - *image.Gray: The closed mask, same bounds as the input.
//   - error: Non-nil if kernelSize or iterations is invalid.
func Close(mask *image.Gray, kernelSize, iterations int) (*image.Gray, error) {
	if kernelSize < 1 || kernelSize%2 == 0 {
		return nil, fmt.Errorf("kernel size must be a positive odd number, got %d", kernelSize)
	}
	if iterations < 1 {
		return nil, fmt.Errorf("iterations must be at least 1, got %d", iterations)
	}

	out := mask
	for i := 0; i < iterations; i++ {
		out = Dilate(out, kernelSize)
	}
	for i := 0; i < iterations; i++ {
		out = Erode(out, kernelSize)
	}
	return out, nil
}

// kernelRadius converts a kernel side to the radius bild expects (side = 2r+1).
func kernelRadius(kernelSize int) float64 {
	return float64(kernelSize-1) / 2
}

// toGray copies the red channel of a bild result back into a mask with the given bounds.
func toGray(src *image.RGBA, bounds image.Rectangle) *image.Gray {
	dst := image.NewGray(bounds)
	w, h := bounds.Dx(), bounds.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Pix[y*dst.Stride+x] = src.Pix[y*src.Stride+x*4]
		}
	}
	return dst
}
