//go:build gocv

package camera

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/squarecam/internal/log"
)

// gocvSource reads frames through OpenCV's VideoCapture.
type gocvSource struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

var captureAPIs = map[string]gocv.VideoCaptureAPI{
	APIAny:          gocv.VideoCaptureAny,
	APIDShow:        gocv.VideoCaptureDshow,
	APIV4L2:         gocv.VideoCaptureV4L2,
	APIMSMF:         gocv.VideoCaptureMSMF,
	APIAVFoundation: gocv.VideoCaptureAVFoundation,
}

func openGoCV(cfg Config) (Source, error) {
	name, err := ParseAPI(cfg.API)
	if err != nil {
		return nil, err
	}

	capture, err := gocv.OpenVideoCaptureWithAPI(cfg.Device, captureAPIs[name])
	if err != nil {
		return nil, fmt.Errorf("open capture device %d (%s): %w", cfg.Device, name, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("capture device %d (%s) did not open", cfg.Device, name)
	}

	if cfg.Width > 0 && cfg.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}

	log.With("backend", BackendGoCV).Info("capture opened",
		"device", cfg.Device,
		"api", name,
		"width", capture.Get(gocv.VideoCaptureFrameWidth),
		"height", capture.Get(gocv.VideoCaptureFrameHeight),
	)

	return &gocvSource{capture: capture, mat: gocv.NewMat()}, nil
}

func (s *gocvSource) Read() (image.Image, error) {
	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, ErrFrameRead
	}

	img, err := s.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrameRead, err)
	}
	return img, nil
}

func (s *gocvSource) Close() error {
	if err := s.mat.Close(); err != nil {
		s.capture.Close()
		return err
	}
	return s.capture.Close()
}
