// Package display shows pipeline images in named windows.
//
// With the "gocv" build tag, windows are OpenCV HighGUI windows and WaitKey reports
// key presses. Otherwise, or when Config.Headless is set, a headless display is used:
// it accepts every image, optionally writes snapshots to disk, and never reports a key.
package display

import (
	"fmt"
	"image"
	"strings"
)

// NoKey is returned by WaitKey when no key was pressed.
const NoKey = -1

// Display shows images in named windows and polls the keyboard.
type Display interface {
	// Show replaces the content of the named window, creating it on first use.
	Show(window string, img image.Image) error

	// WaitKey waits up to delay milliseconds for a key and returns its code, or NoKey.
	WaitKey(delay int) int

	// Close destroys every window. It may be called once.
	Close() error
}

// Windows names the three pipeline windows.
type Windows struct {
	Original string `yaml:"original"`
	Mask     string `yaml:"mask"`
	Edges    string `yaml:"edges"`
}

// DefaultWindows returns the standard window titles.
func DefaultWindows() Windows {
	return Windows{
		Original: "Original Frame",
		Mask:     "Orange Mask",
		Edges:    "Edge Detection",
	}
}

// Config selects and tunes the display.
type Config struct {
	// Headless disables windows even when they are available.
	Headless bool `yaml:"headless"`

	// Windows holds the window titles.
	Windows Windows `yaml:"windows"`

	// SnapshotDir, when set, makes the headless display save every SnapshotEvery-th
	// image of each window as PNG.
	SnapshotDir   string `yaml:"snapshot_dir"`
	SnapshotEvery int    `yaml:"snapshot_every"`
}

// DefaultConfig returns a windowed display with the standard titles.
func DefaultConfig() Config {
	return Config{
		Windows:       DefaultWindows(),
		SnapshotEvery: 1,
	}
}

// Validate checks window titles and snapshot settings.
func (c Config) Validate() error {
	names := map[string]bool{}
	for _, name := range []string{c.Windows.Original, c.Windows.Mask, c.Windows.Edges} {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("window titles must not be empty")
		}
		if names[name] {
			return fmt.Errorf("duplicate window title %q", name)
		}
		names[name] = true
	}
	if c.SnapshotEvery < 1 {
		return fmt.Errorf("snapshot_every must be at least 1, got %d", c.SnapshotEvery)
	}
	return nil
}

// Open returns the display described by cfg.
func Open(cfg Config) (Display, error) {
	if cfg.Headless {
		return NewHeadless(cfg.SnapshotDir, cfg.SnapshotEvery)
	}
	return openWindows(cfg)
}
