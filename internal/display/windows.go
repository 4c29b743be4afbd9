//go:build gocv

package display

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// windows shows images in OpenCV HighGUI windows.
type windows struct {
	byName map[string]*gocv.Window
	order  []string
}

func openWindows(Config) (Display, error) {
	return &windows{byName: make(map[string]*gocv.Window)}, nil
}

func (w *windows) Show(name string, img image.Image) error {
	mat, err := toMat(img)
	if err != nil {
		return fmt.Errorf("window %q: %w", name, err)
	}
	defer mat.Close()

	win, ok := w.byName[name]
	if !ok {
		win = gocv.NewWindow(name)
		w.byName[name] = win
		w.order = append(w.order, name)
	}
	win.IMShow(mat)
	return nil
}

// WaitKey pumps the HighGUI event loop through the first window.
func (w *windows) WaitKey(delay int) int {
	if len(w.order) == 0 {
		return NoKey
	}
	return w.byName[w.order[0]].WaitKey(delay)
}

func (w *windows) Close() error {
	var first error
	for _, name := range w.order {
		if err := w.byName[name].Close(); err != nil && first == nil {
			first = err
		}
	}
	w.byName = map[string]*gocv.Window{}
	w.order = nil
	return first
}

// toMat converts an image into a BGR or single-channel Mat.
func toMat(img image.Image) (gocv.Mat, error) {
	if gray, ok := img.(*image.Gray); ok {
		return gocv.ImageGrayToMatGray(gray)
	}
	return gocv.ImageToMatRGB(img)
}
