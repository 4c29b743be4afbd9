package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/gift"
	"github.com/lucasb-eyer/go-colorful"
)

// HSV is a color in 8-bit HSV space.
//
// The ranges follow the convention used by OpenCV for 8-bit images:
//   - H: 0-179, hue in degrees divided by two (0=red, 60=green, 120=blue)
//   - S: 0-255, saturation (0=gray, 255=vivid)
//   - V: 0-255, value (0=black, 255=full brightness)
type HSV struct {
	H uint8 `yaml:"h"`
	S uint8 `yaml:"s"`
	V uint8 `yaml:"v"`
}

// HSVRange is an inclusive box in HSV space.
type HSVRange struct {
	Lower HSV `yaml:"lower"`
	Upper HSV `yaml:"upper"`
}

// OrangeRange returns the default HSV bounds for orange objects.
//
// The bounds isolate saturated, reasonably bright hues between red and yellow.
// Strongly colored lighting shifts hue and may require tuning.
func OrangeRange() HSVRange {
	return HSVRange{
		Lower: HSV{H: 10, S: 100, V: 90},
		Upper: HSV{H: 25, S: 255, V: 255},
	}
}

// Validate reports whether every lower component is at most its upper component
// and hue stays inside 0-179.
func (r HSVRange) Validate() error {
	if r.Upper.H > 179 {
		return fmt.Errorf("hue upper bound %d exceeds 179", r.Upper.H)
	}
	if r.Lower.H > r.Upper.H || r.Lower.S > r.Upper.S || r.Lower.V > r.Upper.V {
		return fmt.Errorf("lower bound (%d,%d,%d) exceeds upper bound (%d,%d,%d)",
			r.Lower.H, r.Lower.S, r.Lower.V, r.Upper.H, r.Upper.S, r.Upper.V)
	}
	return nil
}

// Contains reports whether c lies inside the range, bounds included.
func (r HSVRange) Contains(c HSV) bool {
	return c.H >= r.Lower.H && c.H <= r.Upper.H &&
		c.S >= r.Lower.S && c.S <= r.Upper.S &&
		c.V >= r.Lower.V && c.V <= r.Upper.V
}

// ToHSV converts a color to 8-bit HSV.
//
// The conversion goes through go-colorful, which returns hue in degrees [0,360)
// and saturation/value in [0,1]. Those are rescaled and rounded:
//
//	H = round(h / 2)   (180 wraps to 0)
//	S = round(s * 255)
//	V = round(v * 255)
//
// Alpha is ignored; the color is read as if fully opaque.
func ToHSV(c color.Color) HSV {
	r, g, b, _ := c.RGBA()
	col := colorful.Color{
		R: float64(r>>8) / 255.0,
		G: float64(g>>8) / 255.0,
		B: float64(b>>8) / 255.0,
	}
	h, s, v := col.Hsv()

	hue := int(math.Round(h / 2))
	if hue >= 180 {
		hue -= 180
	}

	return HSV{
		H: uint8(hue),
		S: uint8(math.Round(s * 255)),
		V: uint8(math.Round(v * 255)),
	}
}

// InRangeHSV classifies every pixel of img against an HSV range.
//
// Parameters:
//   - img: Source frame in any color model.
//   - rng: Inclusive HSV bounds.
//
// Returns a binary mask with the bounds of img: 255 where the pixel's HSV value
// lies inside rng, 0 elsewhere.
func InRangeHSV(img image.Image, rng HSVRange) *image.Gray {
	bounds := img.Bounds()
	mask := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if rng.Contains(ToHSV(img.At(x, y))) {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return mask
}

// Blur applies a Gaussian blur with the given sigma.
// A sigma of zero or less returns img unchanged.
func Blur(img image.Image, sigma float64) image.Image {
	if sigma <= 0 {
		return img
	}

	g := gift.New(gift.GaussianBlur(float32(sigma)))
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}
