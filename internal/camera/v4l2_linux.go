//go:build linux

package camera

import (
	"fmt"
	"image"
	"sort"
	"strings"
	"time"

	"github.com/blackjack/webcam"

	"github.com/ironsheep/squarecam/internal/log"
)

// v4l2Source streams frames from a Video4Linux2 device.
type v4l2Source struct {
	cam     *webcam.Webcam
	format  webcam.PixelFormat
	w, h    uint32
	timeout uint32
}

type byArea []webcam.FrameSize

func (s byArea) Len() int      { return len(s) }
func (s byArea) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byArea) Less(i, j int) bool {
	return s[i].MaxWidth*s[i].MaxHeight < s[j].MaxWidth*s[j].MaxHeight
}

func openV4L2(cfg Config) (Source, error) {
	path := cfg.Path
	if path == "" {
		path = fmt.Sprintf("/dev/video%d", cfg.Device)
	}

	cam, err := webcam.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	src, err := startV4L2(cam, cfg)
	if err != nil {
		cam.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.With("backend", BackendV4L2).Info("stream started",
		"path", path,
		"format", formatName(uint32(src.format)),
		"width", src.w,
		"height", src.h,
	)
	return src, nil
}

func startV4L2(cam *webcam.Webcam, cfg Config) (*v4l2Source, error) {
	format, err := selectFormat(cam.GetSupportedFormats(), cfg.Format)
	if err != nil {
		return nil, err
	}

	frames := byArea(cam.GetSupportedFrameSizes(format))
	sort.Sort(frames)

	var w, h uint32
	switch {
	case cfg.Width > 0 && cfg.Height > 0:
		w, h = uint32(cfg.Width), uint32(cfg.Height)
	case len(frames) > 0:
		w, h = frames[len(frames)-1].MaxWidth, frames[len(frames)-1].MaxHeight
	default:
		return nil, fmt.Errorf("no frame sizes reported for %s", formatName(uint32(format)))
	}

	f, w, h, err := cam.SetImageFormat(format, w, h)
	if err != nil {
		return nil, fmt.Errorf("set image format: %w", err)
	}
	if err := cam.StartStreaming(); err != nil {
		return nil, fmt.Errorf("start streaming: %w", err)
	}

	timeout := uint32(cfg.Timeout / time.Second)
	if timeout == 0 {
		timeout = 1
	}

	return &v4l2Source{cam: cam, format: f, w: w, h: h, timeout: timeout}, nil
}

// selectFormat picks the configured pixel format, or YUYV then MJPEG when none is set.
func selectFormat(available map[webcam.PixelFormat]string, want string) (webcam.PixelFormat, error) {
	candidates := []uint32{fmtYUYV, fmtMJPEG}
	switch strings.ToLower(want) {
	case "yuyv":
		candidates = []uint32{fmtYUYV}
	case "mjpeg":
		candidates = []uint32{fmtMJPEG}
	}

	for _, c := range candidates {
		if _, ok := available[webcam.PixelFormat(c)]; ok {
			return webcam.PixelFormat(c), nil
		}
	}

	names := make([]string, 0, len(available))
	for _, desc := range available {
		names = append(names, desc)
	}
	sort.Strings(names)
	return 0, fmt.Errorf("no supported pixel format (device offers: %s)", strings.Join(names, ", "))
}

func (s *v4l2Source) Read() (image.Image, error) {
	err := s.cam.WaitForFrame(s.timeout)
	switch err.(type) {
	case nil:
	case *webcam.Timeout:
		return nil, fmt.Errorf("%w: no frame within %ds", ErrFrameRead, s.timeout)
	default:
		return nil, fmt.Errorf("%w: %w", ErrFrameRead, err)
	}

	frame, err := s.cam.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrameRead, err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrFrameRead)
	}

	// The buffer is reused by the driver on the next read
	fc := make([]byte, len(frame))
	copy(fc, frame)

	img, err := decodeFrame(fc, int(s.w), int(s.h), uint32(s.format))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrameRead, err)
	}
	return img, nil
}

func (s *v4l2Source) Close() error {
	if err := s.cam.StopStreaming(); err != nil {
		log.Warn("stop streaming failed", "error", err)
	}
	return s.cam.Close()
}
