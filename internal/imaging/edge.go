package imaging

import "image"

// Edge pixel states during suppression and hysteresis.
const (
	edgeNone uint8 = iota
	edgeWeak
	edgeStrong
)

// tan(22.5°) in 15-bit fixed point; sector tests stay in integers.
const (
	cannyShift = 15
	tan22      = 13573
)

// Canny computes the edge map of a mask.
//
// The detector runs on the cleaned color mask to recover a thin outline of every
// foreground region, which the contour pass then traces like any other region.
//
// Parameters:
//   - mask: Source mask. Values are used as intensities, so binary and graded masks
//     both work.
//   - low: Lower hysteresis threshold. Pixels whose gradient does not exceed it are
//     never edges. Default: 50.
//   - high: Upper hysteresis threshold. Pixels whose gradient exceeds it seed edges.
//     Default: 150.
//
// Returns a binary *image.Gray with the bounds of mask where edge pixels are 255.
//
// # Algorithm
//
//  1. Gradient: 3x3 Sobel in x and y with replicated borders,
//     magnitude = |Gx| + |Gy|
//
//  2. Non-maximum suppression: a pixel survives only if its magnitude is a local
//     maximum across the edge, compared with the two neighbors along the gradient
//     quantized to 0°, 45°, 90° or 135°. Ties on a horizontal or vertical step keep
//     the first pixel of the pair, so a binary step yields a one-pixel line.
//
//  3. Hysteresis: survivors above high are strong, the rest above low are weak.
//     Edges grow from every strong pixel through 8-connected weak pixels; weak
//     pixels not reached are dropped.
//
// No smoothing is applied. A 0->255 step has a magnitude of 1020 on its straight
// runs and at least 510 at corners, well above the default thresholds, so the
// outline of each region is closed.
func Canny(mask *image.Gray, low, high int) *image.Gray {
	b := mask.Bounds()
	out := image.NewGray(b)
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return out
	}

	g := sobel(mask)
	state := g.suppress(int32(low), int32(high))

	// Grow from strong pixels through connected weak ones
	stack := make([]int, 0, w+h)
	for i, s := range state {
		if s == edgeStrong {
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		out.Pix[y*out.Stride+x] = 255

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == edgeWeak {
					state[j] = edgeStrong
					stack = append(stack, j)
				}
			}
		}
	}

	return out
}

// gradient holds per-pixel Sobel responses in row-major order.
type gradient struct {
	w, h   int
	gx, gy []int32
	mag    []int32
}

func sobel(mask *image.Gray) *gradient {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	g := &gradient{
		w: w, h: h,
		gx:  make([]int32, w*h),
		gy:  make([]int32, w*h),
		mag: make([]int32, w*h),
	}

	at := func(x, y int) int32 {
		x = clamp(x, 0, w-1)
		y = clamp(y, 0, h-1)
		return int32(mask.Pix[y*mask.Stride+x])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)

			i := y*w + x
			g.gx[i], g.gy[i] = gx, gy
			g.mag[i] = abs32(gx) + abs32(gy)
		}
	}
	return g
}

// magAt returns the magnitude at (x, y), or 0 outside the image.
func (g *gradient) magAt(x, y int) int32 {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return 0
	}
	return g.mag[y*g.w+x]
}

// suppress applies non-maximum suppression and classifies the survivors.
func (g *gradient) suppress(low, high int32) []uint8 {
	state := make([]uint8, g.w*g.h)

	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			i := y*g.w + x
			m := g.mag[i]
			if m <= low {
				continue
			}

			xs, ys := int64(abs32(g.gx[i])), int64(abs32(g.gy[i]))
			tg22x := xs * tan22
			ys <<= cannyShift

			var peak bool
			switch {
			case ys < tg22x:
				// Gradient near horizontal: compare left and right
				peak = m > g.magAt(x-1, y) && m >= g.magAt(x+1, y)
			case ys > tg22x+xs<<(cannyShift+1):
				// Gradient near vertical: compare above and below
				peak = m > g.magAt(x, y-1) && m >= g.magAt(x, y+1)
			default:
				// Diagonal. With y pointing down, matching signs run from
				// top-left to bottom-right.
				s := 1
				if (g.gx[i] < 0) != (g.gy[i] < 0) {
					s = -1
				}
				peak = m > g.magAt(x-s, y-1) && m > g.magAt(x+s, y+1)
			}

			if !peak {
				continue
			}
			if m > high {
				state[i] = edgeStrong
			} else {
				state[i] = edgeWeak
			}
		}
	}
	return state
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// clamp constrains v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
