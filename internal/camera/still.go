package camera

import (
	"image"
	"io"

	"github.com/ironsheep/squarecam/internal/imaging"
	"github.com/ironsheep/squarecam/internal/log"
)

// stillSource serves one decoded image as a frame.
type stillSource struct {
	frame image.Image
	loop  bool
	done  bool
}

func openStill(cfg Config) (Source, error) {
	img, err := imaging.LoadFrame(cfg.Image)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	log.With("backend", BackendStill).Info("still image loaded", "path", cfg.Image, "width", b.Dx(), "height", b.Dy(), "loop", cfg.Loop)
	return newStillSource(img, cfg.Loop), nil
}

func newStillSource(img image.Image, loop bool) *stillSource {
	return &stillSource{frame: img, loop: loop}
}

// Read returns the image, then io.EOF unless looping. Every call hands out a fresh
// copy so callers may draw on it.
func (s *stillSource) Read() (image.Image, error) {
	if s.done {
		return nil, io.EOF
	}
	if !s.loop {
		s.done = true
	}
	return imaging.CloneFrame(s.frame), nil
}

func (s *stillSource) Close() error {
	s.done = true
	return nil
}
