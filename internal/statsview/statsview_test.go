//go:build !statsview
// +build !statsview

package statsview

import (
	"strings"
	"testing"

	"nescore/internal/logger"
)

func TestLaunch_WithoutTag_ShouldOnlyWarn(t *testing.T) {
	if Available() {
		t.Fatal("Available() = true without the statsview tag")
	}

	log := logger.New(logger.LevelDebug)
	Launch("localhost:0", log)

	entries := log.Entries()
	if len(entries) != 1 || entries[0].Level != logger.LevelWarn {
		t.Fatalf("entries = %v", entries)
	}
	if !strings.Contains(entries[0].Detail, "statsview tag") {
		t.Errorf("detail = %q", entries[0].Detail)
	}
}
