package nes

import "nescore/internal/ppu"

const (
	// lines after the beam passes a pixel during which the photodiode still
	// sees it
	zapperPersistence = 20

	// minimum luma, out of 255, counted as light
	zapperThreshold = 0x80
)

// senseLight is the light sensor handed to an attached zapper
func (n *NES) senseLight(x, y int) bool {
	if x < 0 || x >= ppu.Width || y < 0 || y >= ppu.Height {
		return false
	}
	beam := n.ppu.Snapshot()
	if beam.Scanline < y || beam.Scanline > y+zapperPersistence {
		return false
	}
	if beam.Scanline == y && beam.Dot <= x {
		return false
	}
	return luma(n.ppu.Pixel(x, y)) >= zapperThreshold
}

func luma(c uint32) uint32 {
	r := (c >> 16) & 0xFF
	g := (c >> 8) & 0xFF
	b := c & 0xFF
	return (r*299 + g*587 + b*114) / 1000
}
