//go:build !gocv

package display

import "github.com/ironsheep/squarecam/internal/log"

func openWindows(cfg Config) (Display, error) {
	log.Warn("windows unavailable in this build (rebuild with -tags gocv), running headless")
	return NewHeadless(cfg.SnapshotDir, cfg.SnapshotEvery)
}
