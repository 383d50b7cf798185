package ppu

import (
	"testing"

	"nescore/internal/memory"
	"nescore/internal/region"
)

// MockCHR implements memory.CHR with 8KB of writable pattern memory
type MockCHR struct {
	data [0x2000]uint8
}

func (m *MockCHR) ReadCHR(address uint16) uint8         { return m.data[address&0x1FFF] }
func (m *MockCHR) WriteCHR(address uint16, value uint8) { m.data[address&0x1FFF] = value }

// solidTile makes every pixel of tile use colour 1
func (m *MockCHR) solidTile(table uint16, tile uint8) {
	base := table + uint16(tile)*16
	for row := uint16(0); row < 8; row++ {
		m.data[base+row] = 0xFF
		m.data[base+row+8] = 0x00
	}
}

func newTestPPU(t *testing.T) (*PPU, *memory.PPUMemory, *MockCHR) {
	t.Helper()
	mem := memory.NewPPUMemory()
	chr := &MockCHR{}
	mem.SetCHR(chr)
	return New(mem), mem, chr
}

// runFrame ticks until a frame is finished and returns it
func runFrame(t *testing.T, p *PPU) *[Width * Height]uint32 {
	t.Helper()
	for i := 0; i < 400*341; i++ {
		p.Tick()
		if p.IsFrameAvailable() {
			return p.Frame()
		}
	}
	t.Fatal("no frame after 400 scanlines")
	return nil
}

// tickTo advances to the given beam position
func tickTo(t *testing.T, p *PPU, scanline, dot int) {
	t.Helper()
	for i := 0; i < 400*341; i++ {
		if p.scanline == scanline && p.dot == dot {
			return
		}
		p.Tick()
	}
	t.Fatalf("never reached scanline %d dot %d", scanline, dot)
}

func setAddress(p *PPU, address uint16) {
	p.WriteRegister(0x2006, uint8(address>>8))
	p.WriteRegister(0x2006, uint8(address))
}

// writeOAM loads entries from sprite 0 on and hides the remaining sprites
// below the screen
func writeOAM(p *PPU, entries ...uint8) {
	p.WriteRegister(0x2003, 0)
	for i := 0; i < 256; i++ {
		v := uint8(0xFF)
		if i < len(entries) {
			v = entries[i]
		}
		p.WriteOAM(v)
	}
}

func palParams() *region.Parameters {
	return region.Params(region.PAL)
}
