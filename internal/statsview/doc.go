// Package statsview serves runtime statistics over HTTP. It is only
// functional when built with the statsview tag:
//
//	go build -tags statsview ./cmd/nescore
//
// The charts are then at http://<addr>/debug/statsview and the standard
// pprof handlers at http://<addr>/debug/pprof/.
package statsview

// DefaultAddress is used when no address is configured
const DefaultAddress = "localhost:12600"

const path = "/debug/statsview"
