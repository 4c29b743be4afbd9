package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// V4L2 fourcc codes for the pixel formats the v4l2 backend decodes.
const (
	fmtYUYV  uint32 = 0x56595559
	fmtMJPEG uint32 = 0x47504a4d
)

// formatName returns the short name used in configuration for a fourcc.
func formatName(format uint32) string {
	switch format {
	case fmtYUYV:
		return "yuyv"
	case fmtMJPEG:
		return "mjpeg"
	default:
		return fmt.Sprintf("%#x", format)
	}
}

// decodeFrame converts a raw V4L2 buffer into an image.
func decodeFrame(frame []byte, w, h int, format uint32) (image.Image, error) {
	switch format {
	case fmtYUYV:
		return decodeYUYV(frame, w, h)
	case fmtMJPEG:
		return decodeMJPEG(frame)
	default:
		return nil, fmt.Errorf("unsupported pixel format %s", formatName(format))
	}
}

// decodeYUYV unpacks 4:2:2 YUYV (Y0 Cb Y1 Cr per pixel pair) into a YCbCr image
// without copying through RGB.
func decodeYUYV(frame []byte, w, h int) (*image.YCbCr, error) {
	if w <= 0 || h <= 0 || w%2 != 0 {
		return nil, fmt.Errorf("invalid YUYV frame size %dx%d", w, h)
	}
	if len(frame) < w*h*2 {
		return nil, fmt.Errorf("short YUYV frame: got %d bytes, want %d", len(frame), w*h*2)
	}

	img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio422)
	for i := range img.Cb {
		ii := i * 4
		img.Y[i*2] = frame[ii]
		img.Y[i*2+1] = frame[ii+2]
		img.Cb[i] = frame[ii+1]
		img.Cr[i] = frame[ii+3]
	}
	return img, nil
}

// decodeMJPEG decodes one motion JPEG frame. Many cameras omit the Huffman tables,
// so the standard ones are inserted before decoding when the frame has none.
func decodeMJPEG(frame []byte) (image.Image, error) {
	sos := bytes.Index(frame, sosMarker)
	if sos < 0 {
		return nil, fmt.Errorf("MJPEG frame has no start-of-scan marker")
	}
	if !bytes.Contains(frame[:sos], dhtMarker) {
		frame = addMotionDHT(frame, sos)
	}

	img, err := jpeg.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decode MJPEG frame: %w", err)
	}
	return img, nil
}

var (
	dhtMarker = []byte{0xff, 0xc4}
	sosMarker = []byte{0xff, 0xda}
)

// motionDHT holds the default JPEG Huffman tables (ITU T.81 Annex K) as a DHT
// segment body, length prefix included.
var motionDHT = []byte{1, 162, 0, 0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 1, 0, 3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 16, 0, 2, 1, 3, 3, 2, 4, 3, 5, 5, 4, 4, 0, 0, 1, 125, 1, 2, 3, 0, 4, 17, 5, 18, 33, 49, 65, 6, 19, 81, 97, 7, 34, 113, 20, 50, 129, 145, 161, 8, 35, 66, 177, 193, 21, 82, 209, 240, 36, 51, 98, 114, 130, 9, 10, 22, 23, 24, 25, 26, 37, 38, 39, 40, 41, 42, 52, 53, 54, 55, 56, 57, 58, 67, 68, 69, 70, 71, 72, 73, 74, 83, 84, 85, 86, 87, 88, 89, 90, 99, 100, 101, 102, 103, 104, 105, 106, 115, 116, 117, 118, 119, 120, 121, 122, 131, 132, 133, 134, 135, 136, 137, 138, 146, 147, 148, 149, 150, 151, 152, 153, 154, 162, 163, 164, 165, 166, 167, 168, 169, 170, 178, 179, 180, 181, 182, 183, 184, 185, 186, 194, 195, 196, 197, 198, 199, 200, 201, 202, 210, 211, 212, 213, 214, 215, 216, 217, 218, 225, 226, 227, 228, 229, 230, 231, 232, 233, 234, 241, 242, 243, 244, 245, 246, 247, 248, 249, 250, 17, 0, 2, 1, 2, 4, 4, 3, 4, 7, 5, 4, 4, 0, 1, 2, 119, 0, 1, 2, 3, 17, 4, 5, 33, 49, 6, 18, 65, 81, 7, 97, 113, 19, 34, 50, 129, 8, 20, 66, 145, 161, 177, 193, 9, 35, 51, 82, 240, 21, 98, 114, 209, 10, 22, 36, 52, 225, 37, 241, 23, 24, 25, 26, 38, 39, 40, 41, 42, 53, 54, 55, 56, 57, 58, 67, 68, 69, 70, 71, 72, 73, 74, 83, 84, 85, 86, 87, 88, 89, 90, 99, 100, 101, 102, 103, 104, 105, 106, 115, 116, 117, 118, 119, 120, 121, 122, 130, 131, 132, 133, 134, 135, 136, 137, 138, 146, 147, 148, 149, 150, 151, 152, 153, 154, 162, 163, 164, 165, 166, 167, 168, 169, 170, 178, 179, 180, 181, 182, 183, 184, 185, 186, 194, 195, 196, 197, 198, 199, 200, 201, 202, 210, 211, 212, 213, 214, 215, 216, 217, 218, 226, 227, 228, 229, 230, 231, 232, 233, 234, 242, 243, 244, 245, 246, 247, 248, 249, 250}

// addMotionDHT inserts the default Huffman tables right before the start of scan
// at offset sos.
func addMotionDHT(frame []byte, sos int) []byte {
	out := make([]byte, 0, len(frame)+len(dhtMarker)+len(motionDHT))
	out = append(out, frame[:sos]...)
	out = append(out, dhtMarker...)
	out = append(out, motionDHT...)
	return append(out, frame[sos:]...)
}
