package display

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ironsheep/squarecam/internal/imaging"
	"github.com/ironsheep/squarecam/internal/log"
)

// Headless is a Display without windows. It counts the images shown per window and
// can write them to a directory.
type Headless struct {
	mu     sync.Mutex
	dir    string
	every  int
	shown  map[string]int
	closed bool
}

// NewHeadless creates a headless display. When dir is non-empty it is created and
// every every-th image of each window is saved there as <window>-<n>.png.
func NewHeadless(dir string, every int) (*Headless, error) {
	if every < 1 {
		every = 1
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	return &Headless{dir: dir, every: every, shown: make(map[string]int)}, nil
}

// Show records the image and saves a snapshot when one is due.
func (h *Headless) Show(window string, img image.Image) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return fmt.Errorf("display closed")
	}

	n := h.shown[window]
	h.shown[window] = n + 1

	if h.dir == "" || n%h.every != 0 {
		return nil
	}

	path := filepath.Join(h.dir, fmt.Sprintf("%s-%06d.png", slug(window), n))
	if err := imaging.SaveFrame(img, path); err != nil {
		return fmt.Errorf("snapshot %q: %w", window, err)
	}
	log.Debug("snapshot saved", "window", window, "path", path)
	return nil
}

// WaitKey never reports a key.
func (h *Headless) WaitKey(int) int {
	return NoKey
}

// Shown returns how many images a window has received.
func (h *Headless) Shown(window string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shown[window]
}

// Close marks the display closed; later Show calls fail.
func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// slug turns a window title into a file name stem: "Orange Mask" -> "orange-mask".
func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
