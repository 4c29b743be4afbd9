//go:build !linux

package camera

import "fmt"

func openV4L2(Config) (Source, error) {
	return nil, fmt.Errorf("%w: v4l2 requires linux", ErrBackendUnavailable)
}
