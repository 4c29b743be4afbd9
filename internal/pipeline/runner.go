package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/ironsheep/squarecam/internal/camera"
	"github.com/ironsheep/squarecam/internal/display"
	"github.com/ironsheep/squarecam/internal/log"
)

// DefaultQuitKey ends the loop when pressed in any window.
const DefaultQuitKey = 'q'

// RunOptions controls the loop around the processor.
type RunOptions struct {
	// Windows names the three output windows.
	Windows display.Windows

	// QuitKey ends the loop when WaitKey reports it.
	QuitKey rune

	// WaitMillis is the key poll delay per frame.
	WaitMillis int

	// MaxFrames stops the loop after this many frames; 0 means no limit.
	MaxFrames int
}

// DefaultRunOptions returns the standard windows, 'q' to quit and a 1 ms key poll.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		Windows:    display.DefaultWindows(),
		QuitKey:    DefaultQuitKey,
		WaitMillis: 1,
	}
}

// Runner owns a frame source and a display for the duration of one Run.
type Runner struct {
	src  camera.Source
	disp display.Display
	proc *Processor
	out  io.Writer
	opts RunOptions

	release sync.Once
	frames  int
}

// NewRunner wires a source, a processor and a display. Detection lines go to out.
// The runner takes ownership of src and disp and closes both when Run returns.
func NewRunner(src camera.Source, disp display.Display, proc *Processor, out io.Writer, opts RunOptions) *Runner {
	return &Runner{
		src:  src,
		disp: disp,
		proc: proc,
		out:  out,
		opts: opts,
	}
}

// Run captures, processes and displays frames until one of:
//   - the source fails: returns an error wrapping camera.ErrFrameRead
//   - the source is exhausted (io.EOF): returns nil
//   - the quit key is pressed: returns nil
//   - ctx is cancelled: returns nil
//   - MaxFrames frames have been processed: returns nil
//
// Processing and display errors are returned as-is. The source and display are
// released exactly once, whichever way Run ends.
func (r *Runner) Run(ctx context.Context) error {
	defer r.close()

	for {
		if ctx.Err() != nil {
			log.Info("interrupted", "frames", r.frames)
			return nil
		}
		if r.opts.MaxFrames > 0 && r.frames >= r.opts.MaxFrames {
			log.Info("frame limit reached", "frames", r.frames)
			return nil
		}

		frame, err := r.src.Read()
		if errors.Is(err, io.EOF) {
			log.Info("end of input", "frames", r.frames)
			return nil
		}
		if err != nil {
			log.Error("failed to capture frame", "frames", r.frames, "error", err)
			if !errors.Is(err, camera.ErrFrameRead) {
				err = fmt.Errorf("%w: %w", camera.ErrFrameRead, err)
			}
			return err
		}

		res, err := r.proc.Process(frame)
		if err != nil {
			return fmt.Errorf("process frame %d: %w", r.frames, err)
		}
		r.frames++

		for _, sq := range res.Detections {
			fmt.Fprintln(r.out, FormatDetection(sq))
		}
		log.Debug("frame processed", "frame", r.frames, "detections", len(res.Detections))

		if err := r.show(res); err != nil {
			return err
		}

		if key := r.disp.WaitKey(r.opts.WaitMillis); key != display.NoKey && rune(key&0xFF) == r.opts.QuitKey {
			log.Info("quit key pressed", "frames", r.frames)
			return nil
		}
	}
}

// Frames returns how many frames have been processed.
func (r *Runner) Frames() int {
	return r.frames
}

func (r *Runner) show(res *Result) error {
	views := []struct {
		window string
		img    image.Image
	}{
		{r.opts.Windows.Original, res.Annotated},
		{r.opts.Windows.Mask, res.Mask},
		{r.opts.Windows.Edges, res.Edges},
	}

	for _, v := range views {
		if err := r.disp.Show(v.window, v.img); err != nil {
			return fmt.Errorf("show %q: %w", v.window, err)
		}
	}
	return nil
}

// close releases the source and display once.
func (r *Runner) close() {
	r.release.Do(func() {
		if err := r.src.Close(); err != nil {
			log.Warn("closing source failed", "error", err)
		}
		if err := r.disp.Close(); err != nil {
			log.Warn("closing display failed", "error", err)
		}
	})
}
