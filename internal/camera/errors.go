package camera

import "errors"

var (
	// ErrDeviceOpen is returned by Open when no backend can deliver frames.
	ErrDeviceOpen = errors.New("camera: could not open device")

	// ErrFrameRead is returned by Source.Read when a frame cannot be captured.
	// The source is not usable afterwards.
	ErrFrameRead = errors.New("camera: failed to capture frame")

	// ErrBackendUnavailable means the requested backend is not compiled into this
	// binary or not supported on this platform.
	ErrBackendUnavailable = errors.New("camera: backend unavailable")
)
