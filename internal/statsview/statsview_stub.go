//go:build !statsview
// +build !statsview

package statsview

import "nescore/internal/logger"

// Launch logs that the stats server is not part of this build
func Launch(addr string, log *logger.Logger) {
	log.Warnf("statsview", "stats server requested on %s but the binary was built without the statsview tag", addr)
}

// Available reports whether Launch does anything in this build
func Available() bool {
	return false
}
