package main

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/squarecam/internal/camera"
	"github.com/ironsheep/squarecam/internal/imaging"
)

// writeSquareFrame saves a blue frame with a 100px orange square at (70,50)
func writeSquareFrame(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 240, 200))
	sq := image.Rect(70, 50, 170, 150)
	for y := 0; y < 200; y++ {
		for x := 0; x < 240; x++ {
			if image.Pt(x, y).In(sq) {
				img.Set(x, y, color.RGBA{255, 128, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{20, 40, 200, 255})
			}
		}
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := imaging.SaveFrame(img, path); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}
	return path
}

func noEnv(string) string { return "" }

func TestRun_StillImage(t *testing.T) {
	frame := writeSquareFrame(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"-image", frame, "-headless"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code: got %d, want 0 (stderr: %s)", code, stderr.String())
	}

	want := "Detected square: Center (120, 100), Size (100x100)"
	if !strings.Contains(stdout.String(), want) {
		t.Errorf("stdout missing %q:\n%s", want, stdout.String())
	}
	if strings.Contains(stdout.String(), "level=") {
		t.Error("log output leaked to stdout")
	}
}

func TestRun_Snapshots(t *testing.T) {
	frame := writeSquareFrame(t)
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	code := run([]string{"-image", frame, "-headless", "-snapshots", dir}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code: got %d, want 0 (stderr: %s)", code, stderr.String())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read snapshot dir: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d snapshots, want 3 (one per window)", len(entries))
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if code := run([]string{"-version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code: got %d, want 0", code)
	}
	if !strings.HasPrefix(stdout.String(), "squarecam "+Version) {
		t.Errorf("unexpected version output: %q", stdout.String())
	}
}

func TestRun_Failures(t *testing.T) {
	badConfig := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(badConfig, []byte("run: {quit_key: quit}\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"-bogus"}, 2},
		{"missing config file", []string{"-config", "/nonexistent/squarecam.yaml"}, 1},
		{"invalid config", []string{"-config", badConfig}, 1},
		{"unknown backend", []string{"-backend", "firewire"}, 1},
		{"missing image", []string{"-image", "/nonexistent/frame.png", "-headless"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != tt.want {
				t.Errorf("exit code: got %d, want %d (stderr: %s)", code, tt.want, stderr.String())
			}
			if stdout.Len() != 0 {
				t.Errorf("unexpected stdout: %q", stdout.String())
			}
		})
	}
}

func TestRun_HelpExitsCleanly(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if code := run([]string{"-help"}, &stdout, &stderr); code != 0 {
		t.Errorf("exit code: got %d, want 0", code)
	}
	if !strings.Contains(stderr.String(), "SQUARECAM_LOG_LEVEL") {
		t.Error("usage should mention SQUARECAM_LOG_LEVEL")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	opts := &options{
		image:     "frame.png",
		backend:   camera.BackendStill,
		device:    2,
		headless:  true,
		snapshots: "out",
		frames:    5,
		logLevel:  "warn",
	}

	cfg, err := loadConfig(opts, noEnv)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Camera.Image != "frame.png" || cfg.Camera.Backend != camera.BackendStill || cfg.Camera.Device != 2 {
		t.Errorf("camera: got %+v", cfg.Camera)
	}
	if !cfg.Display.Headless || cfg.Display.SnapshotDir != "out" {
		t.Errorf("display: got %+v", cfg.Display)
	}
	if cfg.Run.MaxFrames != 5 {
		t.Errorf("max frames: got %d, want 5", cfg.Run.MaxFrames)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level: got %q, want warn", cfg.LogLevel)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "squarecam.yaml")
	if err := os.WriteFile(path, []byte("log_level: error\ncamera: {device: 3}\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	env := func(key string) string {
		if key == "SQUARECAM_LOG_LEVEL" {
			return "debug"
		}
		return ""
	}

	tests := []struct {
		name       string
		opts       options
		getenv     func(string) string
		wantLevel  string
		wantDevice int
	}{
		{"defaults", options{device: -1}, noEnv, "info", 0},
		{"file", options{configPath: path, device: -1}, noEnv, "error", 3},
		{"env over file", options{configPath: path, device: -1}, env, "debug", 3},
		{"flag over env", options{configPath: path, device: 1, logLevel: "warn"}, env, "warn", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(&tt.opts, tt.getenv)
			if err != nil {
				t.Fatalf("loadConfig failed: %v", err)
			}
			if cfg.LogLevel != tt.wantLevel {
				t.Errorf("log level: got %q, want %q", cfg.LogLevel, tt.wantLevel)
			}
			if cfg.Camera.Device != tt.wantDevice {
				t.Errorf("device: got %d, want %d", cfg.Camera.Device, tt.wantDevice)
			}
		})
	}
}
