//go:build statsview
// +build statsview

package statsview

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"nescore/internal/logger"
)

const logTag = "statsview"

// Launch starts the stats server on addr in a new goroutine
func Launch(addr string, log *logger.Logger) {
	if addr == "" {
		addr = DefaultAddress
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go func() {
		if err := mgr.Start(); err != nil {
			log.Warnf(logTag, "stats server stopped: %v", err)
		}
	}()
	log.Infof(logTag, "stats server available at http://%s%s", addr, path)
}

// Available reports whether Launch does anything in this build
func Available() bool {
	return true
}
