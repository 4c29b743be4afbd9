// Package config loads squarecam configuration from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/squarecam/internal/camera"
	"github.com/ironsheep/squarecam/internal/display"
	"github.com/ironsheep/squarecam/internal/pipeline"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the top-level squarecam configuration.
type Config struct {
	Camera   camera.Config   `yaml:"camera"`
	Pipeline pipeline.Config `yaml:"pipeline"`
	Display  display.Config  `yaml:"display"`
	Run      RunConfig       `yaml:"run"`
	LogLevel string          `yaml:"log_level"`
}

// RunConfig controls the main loop.
type RunConfig struct {
	// QuitKey is the single ASCII character that ends the loop.
	QuitKey string `yaml:"quit_key"`

	// WaitMillis is the key poll delay per frame.
	WaitMillis int `yaml:"wait_ms"`

	// MaxFrames stops after this many frames; 0 runs until input ends.
	MaxFrames int `yaml:"max_frames"`
}

// Default returns the built-in configuration: camera 0, orange squares, three windows.
func Default() *Config {
	return &Config{
		Camera:   camera.DefaultConfig(),
		Pipeline: pipeline.DefaultConfig(),
		Display:  display.DefaultConfig(),
		Run: RunConfig{
			QuitKey:    string(pipeline.DefaultQuitKey),
			WaitMillis: 1,
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults restores defaults that an explicit empty value in the file would
// otherwise clear.
func (c *Config) applyDefaults() {
	if c.Camera.Backend == "" {
		c.Camera.Backend = camera.BackendAuto
	}
	if c.Run.QuitKey == "" {
		c.Run.QuitKey = string(pipeline.DefaultQuitKey)
	}
	if c.Run.WaitMillis <= 0 {
		c.Run.WaitMillis = 1
	}
	if c.Display.SnapshotEvery <= 0 {
		c.Display.SnapshotEvery = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	w := display.DefaultWindows()
	if c.Display.Windows.Original == "" {
		c.Display.Windows.Original = w.Original
	}
	if c.Display.Windows.Mask == "" {
		c.Display.Windows.Mask = w.Mask
	}
	if c.Display.Windows.Edges == "" {
		c.Display.Windows.Edges = w.Edges
	}
}

// Validate checks every section. Errors wrap ErrInvalid.
func (c *Config) Validate() error {
	if err := c.Camera.Validate(); err != nil {
		return fmt.Errorf("%w: camera: %w", ErrInvalid, err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("%w: pipeline: %w", ErrInvalid, err)
	}
	if err := c.Display.Validate(); err != nil {
		return fmt.Errorf("%w: display: %w", ErrInvalid, err)
	}
	if len([]rune(c.Run.QuitKey)) != 1 {
		return fmt.Errorf("%w: run: quit_key must be a single character, got %q", ErrInvalid, c.Run.QuitKey)
	}
	// Key codes are compared on their low byte
	if r := []rune(c.Run.QuitKey)[0]; r > 0x7F {
		return fmt.Errorf("%w: run: quit_key must be an ASCII character, got %q", ErrInvalid, c.Run.QuitKey)
	}
	if c.Run.MaxFrames < 0 {
		return fmt.Errorf("%w: run: max_frames must not be negative, got %d", ErrInvalid, c.Run.MaxFrames)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level must be debug, info, warn or error, got %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// RunOptions converts the run and display sections into loop options.
func (c *Config) RunOptions() pipeline.RunOptions {
	return pipeline.RunOptions{
		Windows:    c.Display.Windows,
		QuitKey:    []rune(c.Run.QuitKey)[0],
		WaitMillis: c.Run.WaitMillis,
		MaxFrames:  c.Run.MaxFrames,
	}
}
