package imaging

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// LoadFrame reads a still image from disk so it can stand in for a camera frame.
//
// Parameters:
//   - path: Absolute or relative file path. Supported formats are PNG, JPEG, GIF,
//     BMP and TIFF.
//
// Returns:
//   - image.Image: The decoded image with EXIF orientation applied.
//   - error: Non-nil if the file cannot be opened or decoded.
func LoadFrame(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load frame: %w", err)
	}
	return img, nil
}

// SaveFrame writes an image to disk. The format is chosen from the file extension;
// ".png", ".jpg", ".jpeg", ".gif", ".bmp" and ".tif" are supported.
func SaveFrame(img image.Image, path string) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("unsupported output format %q", strings.ToLower(filepath.Ext(path)))
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save frame: %w", err)
	}
	return nil
}
