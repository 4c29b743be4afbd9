// Package pipeline turns camera frames into square detections and drives the
// capture, process and display loop.
package pipeline

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/squarecam/internal/detection"
	"github.com/ironsheep/squarecam/internal/imaging"
)

// Config holds every per-frame processing parameter.
type Config struct {
	// Color is the inclusive HSV band treated as foreground.
	Color imaging.HSVRange `yaml:"color"`

	// BlurSigma applies a Gaussian pre-blur before thresholding; 0 disables it.
	BlurSigma float64 `yaml:"blur_sigma"`

	// KernelSize and Iterations configure the morphological closing.
	KernelSize int `yaml:"kernel_size"`
	Iterations int `yaml:"iterations"`

	// CannyLow and CannyHigh are the hysteresis thresholds of the edge pass.
	CannyLow  int `yaml:"canny_low"`
	CannyHigh int `yaml:"canny_high"`

	// Shape holds the square filter thresholds.
	Shape detection.Config `yaml:"shape"`

	// Annotate controls how detections are drawn.
	Annotate AnnotateConfig `yaml:"annotate"`
}

// AnnotateConfig controls the overlay drawn on the original frame.
type AnnotateConfig struct {
	OutlineColor     string `yaml:"outline_color"`
	OutlineThickness int    `yaml:"outline_thickness"`
	CenterColor      string `yaml:"center_color"`
	CenterRadius     int    `yaml:"center_radius"`

	// Labels draws "(x,y) wxh" next to every center.
	Labels bool `yaml:"labels"`
}

// DefaultConfig returns the orange-square pipeline: OpenCV-scaled HSV bounds
// (10,100,90)-(25,255,255), a 3x3 closing, Canny 50/150, green outlines and red centers.
func DefaultConfig() Config {
	return Config{
		Color:      imaging.OrangeRange(),
		KernelSize: 3,
		Iterations: 1,
		CannyLow:   50,
		CannyHigh:  150,
		Shape:      detection.DefaultConfig(),
		Annotate: AnnotateConfig{
			OutlineColor:     "#00FF00",
			OutlineThickness: 2,
			CenterColor:      "#FF0000",
			CenterRadius:     5,
		},
	}
}

// Validate checks every stage's parameters.
func (c Config) Validate() error {
	if err := c.Color.Validate(); err != nil {
		return err
	}
	if c.BlurSigma < 0 {
		return fmt.Errorf("blur_sigma must not be negative, got %g", c.BlurSigma)
	}
	if c.KernelSize < 1 || c.KernelSize%2 == 0 {
		return fmt.Errorf("kernel_size must be a positive odd number, got %d", c.KernelSize)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}
	if c.CannyLow < 0 || c.CannyHigh <= c.CannyLow {
		return fmt.Errorf("canny thresholds must satisfy 0 <= low < high, got %d/%d", c.CannyLow, c.CannyHigh)
	}
	if err := c.Shape.Validate(); err != nil {
		return err
	}
	if _, err := imaging.ParseHexColor(c.Annotate.OutlineColor); err != nil {
		return fmt.Errorf("outline_color: %w", err)
	}
	if _, err := imaging.ParseHexColor(c.Annotate.CenterColor); err != nil {
		return fmt.Errorf("center_color: %w", err)
	}
	if c.Annotate.OutlineThickness < 1 {
		return fmt.Errorf("outline_thickness must be at least 1, got %d", c.Annotate.OutlineThickness)
	}
	if c.Annotate.CenterRadius < 0 {
		return fmt.Errorf("center_radius must not be negative, got %d", c.Annotate.CenterRadius)
	}
	return nil
}

// Result holds every intermediate image of one processed frame.
type Result struct {
	// Annotated is a copy of the frame with detections drawn on it.
	Annotated *image.NRGBA

	// Mask is the raw HSV threshold, before closing.
	Mask *image.Gray

	// Cleaned is the mask after morphological closing.
	Cleaned *image.Gray

	// Edges is the Canny edge map of Cleaned.
	Edges *image.Gray

	// Detections lists edge-pass squares first, then fill-pass squares.
	Detections []detection.Square
}

// Processor runs the per-frame stages. It keeps no state between frames.
type Processor struct {
	cfg     Config
	outline color.RGBA
	center  color.RGBA
}

// NewProcessor validates cfg and prepares the drawing colors.
func NewProcessor(cfg Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	outline, _ := imaging.ParseHexColor(cfg.Annotate.OutlineColor)
	center, _ := imaging.ParseHexColor(cfg.Annotate.CenterColor)
	return &Processor{cfg: cfg, outline: outline, center: center}, nil
}

// Process runs one frame through the pipeline.
//
// # Stages
//
//  1. Segmentation: optional blur, then HSV in-range threshold
//  2. Cleanup: morphological closing of the mask
//  3. Edges: Canny on the cleaned mask
//  4. Detection: external contours of the edge map, then of the cleaned mask,
//     filtered for squares
//  5. Annotation: outline and center dot per detection on a copy of the frame
//
// The input frame is never modified.
func (p *Processor) Process(frame image.Image) (*Result, error) {
	mask := imaging.InRangeHSV(imaging.Blur(frame, p.cfg.BlurSigma), p.cfg.Color)

	cleaned, err := imaging.Close(mask, p.cfg.KernelSize, p.cfg.Iterations)
	if err != nil {
		return nil, fmt.Errorf("close mask: %w", err)
	}

	edges := imaging.Canny(cleaned, p.cfg.CannyLow, p.cfg.CannyHigh)
	squares := detection.Detect(cleaned, edges, p.cfg.Shape)

	annotated := imaging.CloneFrame(frame)
	for _, sq := range squares {
		p.annotate(annotated, sq)
	}

	return &Result{
		Annotated:  annotated,
		Mask:       mask,
		Cleaned:    cleaned,
		Edges:      edges,
		Detections: squares,
	}, nil
}

func (p *Processor) annotate(dst *image.NRGBA, sq detection.Square) {
	a := p.cfg.Annotate
	imaging.DrawPolygon(dst, sq.Polygon, p.outline, a.OutlineThickness)
	imaging.FillCircle(dst, sq.Center, a.CenterRadius, p.center)

	if a.Labels {
		label := fmt.Sprintf("(%d,%d) %dx%d", sq.Center.X, sq.Center.Y, sq.Width, sq.Height)
		imaging.DrawLabel(dst, sq.Center.X+a.CenterRadius+3, sq.Center.Y-3, label,
			color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 180})
	}
}

// FormatDetection renders the stdout line for one detection.
func FormatDetection(sq detection.Square) string {
	return fmt.Sprintf("Detected square: Center (%d, %d), Size (%dx%d)", sq.Center.X, sq.Center.Y, sq.Width, sq.Height)
}
