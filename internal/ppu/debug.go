package ppu

import "fmt"

// Debug frame layout: both pattern tables side by side on top, the 32
// palette entries in two rows of 16 swatches below them.
const (
	patternTableSize = 128
	swatchSize       = 16
	paletteTop       = patternTableSize + 8
)

// RenderDebugFrame draws the pattern tables (coloured with background
// palette 0) and palette RAM into buf, independently of the main
// framebuffer. buf must hold at least Width*Height pixels.
func (p *PPU) RenderDebugFrame(buf []uint32) error {
	if len(buf) < Width*Height {
		return fmt.Errorf("debug frame buffer holds %d pixels, need %d", len(buf), Width*Height)
	}
	black := p.colors[0][0x0F]
	for i := range buf[:Width*Height] {
		buf[i] = black
	}

	var colors [4]uint32
	for i := range colors {
		colors[i] = p.colors[0][p.memory.ReadPalette(uint8(i))&0x3F]
	}

	for table := 0; table < 2; table++ {
		for tile := 0; tile < 256; tile++ {
			base := uint16(table*0x1000 + tile*16)
			originX := table*patternTableSize + tile%16*8
			originY := tile / 16 * 8
			for row := 0; row < 8; row++ {
				lo := p.memory.Read(base + uint16(row))
				hi := p.memory.Read(base + uint16(row) + 8)
				for col := 0; col < 8; col++ {
					shift := 7 - col
					pixel := (lo>>shift)&0x01 | (hi>>shift)&0x01<<1
					buf[(originY+row)*Width+originX+col] = colors[pixel]
				}
			}
		}
	}

	for i := 0; i < 32; i++ {
		c := p.colors[0][p.memory.ReadPalette(uint8(i))&0x3F]
		originX := i % 16 * swatchSize
		originY := paletteTop + i/16*swatchSize
		for y := 0; y < swatchSize; y++ {
			for x := 0; x < swatchSize; x++ {
				buf[(originY+y)*Width+originX+x] = c
			}
		}
	}
	return nil
}
