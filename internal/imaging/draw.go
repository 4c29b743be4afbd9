package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// CloneFrame returns a drawable copy of a frame so annotations never touch the source.
func CloneFrame(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// ParseHexColor parses "#RRGGBB" or "#RGB" (leading '#' optional) into an opaque color.
func ParseHexColor(hex string) (color.RGBA, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// DrawPolygon draws the closed outline through pts with the given line thickness.
// Segments are clipped to the destination bounds.
func DrawPolygon(dst draw.Image, pts []image.Point, c color.Color, thickness int) {
	if len(pts) == 0 {
		return
	}
	for i := range pts {
		drawLine(dst, pts[i], pts[(i+1)%len(pts)], c, thickness)
	}
}

// FillCircle paints a filled disc of the given radius centered on center.
func FillCircle(dst draw.Image, center image.Point, radius int, c color.Color) {
	bounds := dst.Bounds()
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			p := image.Pt(center.X+dx, center.Y+dy)
			if p.In(bounds) {
				dst.Set(p.X, p.Y, c)
			}
		}
	}
}

// drawLine rasterizes a segment with Bresenham's algorithm, stamping a square brush
// of side thickness at each step.
func drawLine(dst draw.Image, a, b image.Point, c color.Color, thickness int) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy

	x, y := a.X, a.Y
	for {
		stamp(dst, x, y, c, thickness)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// stamp paints a thickness x thickness square anchored so that even widths lean
// toward the top-left.
func stamp(dst draw.Image, x, y int, c color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	bounds := dst.Bounds()
	off := thickness / 2
	for py := y - off; py < y-off+thickness; py++ {
		for px := x - off; px < x-off+thickness; px++ {
			if image.Pt(px, py).In(bounds) {
				dst.Set(px, py, c)
			}
		}
	}
}

// DrawLabel draws a small text label with a background box at the given position.
// Only digits, ',', 'x', '(' and ')' have glyphs; other runes leave a blank cell.
func DrawLabel(dst draw.Image, x, y int, text string, fg, bg color.Color) {
	// Simple 3x5 pixel font
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
		'x': {"000", "101", "010", "101", "000"},
		'(': {"010", "100", "100", "100", "010"},
		')': {"010", "001", "001", "001", "010"},
	}

	bounds := dst.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if p := image.Pt(x+dx, y+dy); p.In(bounds) {
				dst.Set(p.X, p.Y, bg)
			}
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				if p := image.Pt(cx+col, y+row); p.In(bounds) {
					dst.Set(p.X, p.Y, fg)
				}
			}
		}
		cx += charWidth
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
