package camera

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// createTestImageFile writes a solid color PNG and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backend != BackendAuto {
		t.Errorf("Backend: got %q, want %q", cfg.Backend, BackendAuto)
	}
	if cfg.Device != 0 {
		t.Errorf("Device: got %d, want 0", cfg.Device)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout: got %s, want 5s", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"gocv backend", func(c *Config) { c.Backend = BackendGoCV }, false},
		{"v4l2 with path", func(c *Config) { c.Backend = BackendV4L2; c.Path = "/dev/video2" }, false},
		{"still with image", func(c *Config) { c.Backend = BackendStill; c.Image = "x.png" }, false},
		{"still without image", func(c *Config) { c.Backend = BackendStill }, true},
		{"unknown backend", func(c *Config) { c.Backend = "firewire" }, true},
		{"known api", func(c *Config) { c.API = "MSMF" }, false},
		{"unknown api", func(c *Config) { c.API = "quicktime" }, true},
		{"negative device", func(c *Config) { c.Device = -1 }, true},
		{"negative width", func(c *Config) { c.Width = -640 }, true},
		{"mjpeg format", func(c *Config) { c.Format = "mjpeg" }, false},
		{"unknown format", func(c *Config) { c.Format = "h264" }, true},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDefaultAPI(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"windows", APIDShow},
		{"linux", APIV4L2},
		{"darwin", APIAVFoundation},
		{"freebsd", APIAny},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			if got := DefaultAPI(tt.goos); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAPI(t *testing.T) {
	got, err := ParseAPI(" DShow ")
	if err != nil || got != APIDShow {
		t.Errorf("ParseAPI(\" DShow \"): got %q, %v", got, err)
	}

	got, err = ParseAPI("")
	if err != nil {
		t.Fatalf("empty name: unexpected error %v", err)
	}
	if got == "" {
		t.Error("empty name should resolve to a platform default")
	}

	if _, err := ParseAPI("bogus"); err == nil {
		t.Error("expected error for unknown API")
	}
}

func TestOpen_Still(t *testing.T) {
	path := createTestImageFile(t, 64, 48, color.RGBA{255, 128, 0, 255})

	src, err := Open(Config{Backend: BackendStill, Image: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	frame, err := src.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if frame.Bounds().Dx() != 64 || frame.Bounds().Dy() != 48 {
		t.Errorf("frame size: got %v, want 64x48", frame.Bounds())
	}

	if _, err := src.Read(); !errors.Is(err, io.EOF) {
		t.Errorf("second Read: got %v, want io.EOF", err)
	}
}

func TestOpen_AutoPrefersStillImage(t *testing.T) {
	path := createTestImageFile(t, 10, 10, color.White)

	src, err := Open(Config{Backend: BackendAuto, Image: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if _, ok := src.(*stillSource); !ok {
		t.Errorf("auto with an image should open a still source, got %T", src)
	}
}

func TestOpen_Failures(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing image", Config{Backend: BackendStill, Image: "/nonexistent/frame.png"}},
		{"unknown backend", Config{Backend: "firewire"}},
		{"missing v4l2 node", Config{Backend: BackendV4L2, Path: "/nonexistent/video9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Open(tt.cfg)
			if err == nil {
				src.Close()
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrDeviceOpen) {
				t.Errorf("error should wrap ErrDeviceOpen: %v", err)
			}
		})
	}
}

func TestStillSource_Loop(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	src := newStillSource(img, true)

	for i := 0; i < 5; i++ {
		frame, err := src.Read()
		if err != nil {
			t.Fatalf("Read %d failed: %v", i, err)
		}
		if frame.Bounds() != img.Bounds() {
			t.Errorf("Read %d bounds: got %v", i, frame.Bounds())
		}
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := src.Read(); !errors.Is(err, io.EOF) {
		t.Errorf("Read after Close: got %v, want io.EOF", err)
	}
}

func TestStillSource_ReturnsCopies(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src := newStillSource(img, true)

	frame, _ := src.Read()
	frame.(interface{ Set(x, y int, c color.Color) }).Set(0, 0, color.White)

	if img.RGBAAt(0, 0) != (color.RGBA{}) {
		t.Error("drawing on a frame modified the stored image")
	}
}
