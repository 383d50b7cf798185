package app

import (
	"os"
	"path/filepath"
	"testing"

	"nescore/internal/cartridge"
)

// spinProgram loops at $C000
var spinProgram = []byte{0x4C, 0x00, 0xC0} // JMP $C000

// saveProgram stores $42 in battery RAM and spins
var saveProgram = []byte{
	0xA9, 0x42,       // LDA #$42
	0x8D, 0x00, 0x60, // STA $6000
	0x4C, 0x05, 0xC0, // JMP $C005
}

// writeROM builds an image and stores it in a temporary file
func writeROM(t *testing.T, b *cartridge.TestROMBuilder) string {
	t.Helper()
	data, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "test.nes")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// testConfig returns defaults with every directory inside a temporary one
func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Video.Backend = "headless"
	cfg.Paths.SaveData = filepath.Join(dir, "saves")
	cfg.Paths.Screenshots = filepath.Join(dir, "screenshots")
	cfg.Paths.Recordings = filepath.Join(dir, "recordings")
	return cfg
}
