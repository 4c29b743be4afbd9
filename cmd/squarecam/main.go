// Command squarecam watches a camera for orange squares.
//
// Usage:
//
//	squarecam                          # camera 0, three preview windows
//	squarecam -config squarecam.yaml   # settings from YAML
//	squarecam -image frame.png -headless -snapshots out/
//
// Each detection is printed to stdout; logs go to stderr. Press q in any window
// to quit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/squarecam/internal/camera"
	"github.com/ironsheep/squarecam/internal/config"
	"github.com/ironsheep/squarecam/internal/display"
	"github.com/ironsheep/squarecam/internal/log"
	"github.com/ironsheep/squarecam/internal/pipeline"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// options holds command line overrides. Zero values leave the config untouched.
type options struct {
	configPath string
	image      string
	backend    string
	device     int
	headless   bool
	snapshots  string
	frames     int
	logLevel   string
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("squarecam", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to squarecam.yaml config file")
	fs.StringVar(&opts.image, "image", "", "use a still image instead of a camera")
	fs.StringVar(&opts.backend, "backend", "", "capture backend: auto, gocv, v4l2, still")
	fs.IntVar(&opts.device, "device", -1, "camera index")
	fs.BoolVar(&opts.headless, "headless", false, "run without preview windows")
	fs.StringVar(&opts.snapshots, "snapshots", "", "headless: write shown frames to this directory")
	fs.IntVar(&opts.frames, "frames", 0, "stop after this many frames (0 = no limit)")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&opts.version, "version", false, "print version information")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "squarecam - detect orange squares in a camera feed")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage: squarecam [options]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Environment variables:")
		fmt.Fprintln(stderr, "  SQUARECAM_LOG_LEVEL=debug    Enable debug logging")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// loadConfig builds the effective configuration: defaults, then the config file,
// then the environment, then flags.
func loadConfig(opts *options, getenv func(string) string) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if level := getenv("SQUARECAM_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.image != "" {
		cfg.Camera.Image = opts.image
	}
	if opts.backend != "" {
		cfg.Camera.Backend = opts.backend
	}
	if opts.device >= 0 {
		cfg.Camera.Device = opts.device
	}
	if opts.headless {
		cfg.Display.Headless = true
	}
	if opts.snapshots != "" {
		cfg.Display.SnapshotDir = opts.snapshots
	}
	if opts.frames > 0 {
		cfg.Run.MaxFrames = opts.frames
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "squarecam %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	}

	cfg, err := loadConfig(opts, os.Getenv)
	if err != nil {
		fmt.Fprintf(stderr, "squarecam: %v\n", err)
		return 1
	}

	log.InitWriter(stderr, cfg.LogLevel)
	log.Debug("starting", "version", Version, "commit", GitCommit, "backend", cfg.Camera.Backend)

	proc, err := pipeline.NewProcessor(cfg.Pipeline)
	if err != nil {
		log.Error("invalid pipeline", "error", err)
		return 1
	}

	src, err := camera.Open(cfg.Camera)
	if err != nil {
		log.Error("could not open webcam", "error", err)
		return 1
	}

	disp, err := display.Open(cfg.Display)
	if err != nil {
		src.Close()
		log.Error("could not open display", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(src, disp, proc, stdout, cfg.RunOptions())
	err = runner.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, camera.ErrFrameRead):
		// Logged by the runner; losing the camera ends the session normally
	default:
		log.Error("squarecam: fatal", "error", err)
		return 1
	}
	return 0
}
