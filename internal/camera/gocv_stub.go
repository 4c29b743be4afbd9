//go:build !gocv

package camera

import "fmt"

func openGoCV(Config) (Source, error) {
	return nil, fmt.Errorf("%w: gocv (rebuild with -tags gocv)", ErrBackendUnavailable)
}
