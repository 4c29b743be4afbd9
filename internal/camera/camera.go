// Package camera delivers frames from a webcam or a still image.
//
// Every backend implements Source. Open picks a backend from Config; failures are
// reported once and never retried.
//
// # Backends
//
//   - gocv: OpenCV VideoCapture, compiled in with the "gocv" build tag
//   - v4l2: Video4Linux2 streaming on Linux, YUYV or MJPEG
//   - still: a single image file, returned once or replayed
//   - auto: still when an image path is set, else gocv, then v4l2
package camera

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"strings"
	"time"
)

// Source yields frames until it fails or runs out.
//
// Read returns io.EOF when a finite source is exhausted and an error wrapping
// ErrFrameRead when capture fails. Close releases the device and may be called once.
type Source interface {
	Read() (image.Image, error)
	Close() error
}

// Backend names accepted in Config.Backend.
const (
	BackendAuto  = "auto"
	BackendGoCV  = "gocv"
	BackendV4L2  = "v4l2"
	BackendStill = "still"
)

// Capture API names accepted in Config.API for the gocv backend.
const (
	APIAny          = "any"
	APIDShow        = "dshow"
	APIV4L2         = "v4l2"
	APIMSMF         = "msmf"
	APIAVFoundation = "avfoundation"
)

// Config selects and tunes a frame source.
type Config struct {
	// Backend is one of auto, gocv, v4l2, still.
	Backend string `yaml:"backend"`

	// Device is the camera index for gocv, and the /dev/videoN number for v4l2
	// when Path is empty.
	Device int `yaml:"device"`

	// Path is the V4L2 device node, e.g. /dev/video0.
	Path string `yaml:"path"`

	// API is the gocv capture API; empty selects the platform default.
	API string `yaml:"api"`

	// Width and Height request a capture size; zero keeps the device default
	// (gocv) or the largest supported size (v4l2).
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Format selects the V4L2 pixel format: yuyv or mjpeg. Empty prefers yuyv.
	Format string `yaml:"format"`

	// Image is a still image path used by the still backend.
	Image string `yaml:"image"`

	// Loop replays the still image forever instead of ending after one frame.
	Loop bool `yaml:"loop"`

	// Timeout bounds the wait for a single V4L2 frame.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the first camera with the platform's preferred API.
func DefaultConfig() Config {
	return Config{
		Backend: BackendAuto,
		Device:  0,
		Timeout: 5 * time.Second,
	}
}

// Validate checks the backend, API and size settings.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendGoCV, BackendV4L2:
	case BackendStill:
		if c.Image == "" {
			return fmt.Errorf("still backend requires an image path")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.API != "" {
		if _, err := ParseAPI(c.API); err != nil {
			return err
		}
	}
	if c.Device < 0 {
		return fmt.Errorf("device index must not be negative, got %d", c.Device)
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("capture size must not be negative, got %dx%d", c.Width, c.Height)
	}
	switch strings.ToLower(c.Format) {
	case "", "yuyv", "mjpeg":
	default:
		return fmt.Errorf("unsupported pixel format %q (use yuyv or mjpeg)", c.Format)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// ParseAPI normalizes a capture API name. An empty name resolves to the default
// for the running platform.
func ParseAPI(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return DefaultAPI(runtime.GOOS), nil
	case APIAny, APIDShow, APIV4L2, APIMSMF, APIAVFoundation:
		return name, nil
	}
	return "", fmt.Errorf("unknown capture API %q", name)
}

// DefaultAPI returns the capture API preferred on goos: DirectShow on Windows,
// V4L2 on Linux, AVFoundation on macOS, and any elsewhere.
func DefaultAPI(goos string) string {
	switch goos {
	case "windows":
		return APIDShow
	case "linux":
		return APIV4L2
	case "darwin":
		return APIAVFoundation
	default:
		return APIAny
	}
}

// Open starts the source described by cfg.
//
// Any failure is returned wrapped in ErrDeviceOpen; a backend that is not compiled
// in also matches ErrBackendUnavailable.
func Open(cfg Config) (Source, error) {
	var (
		src Source
		err error
	)

	switch cfg.Backend {
	case BackendStill:
		src, err = openStill(cfg)
	case BackendGoCV:
		src, err = openGoCV(cfg)
	case BackendV4L2:
		src, err = openV4L2(cfg)
	case BackendAuto, "":
		src, err = openAuto(cfg)
	default:
		err = fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceOpen, err)
	}
	return src, nil
}

func openAuto(cfg Config) (Source, error) {
	if cfg.Image != "" {
		return openStill(cfg)
	}

	src, err := openGoCV(cfg)
	if err == nil || !errors.Is(err, ErrBackendUnavailable) {
		return src, err
	}
	return openV4L2(cfg)
}
