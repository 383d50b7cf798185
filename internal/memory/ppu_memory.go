package memory

import "nescore/internal/cartridge"

// CHR is the PPU view of the mapper
type CHR interface {
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
}

// PowerUpPalette is the palette RAM content observed after power on
var PowerUpPalette = [32]uint8{
	0x09, 0x01, 0x00, 0x01, 0x00, 0x02, 0x02, 0x0D,
	0x08, 0x10, 0x08, 0x24, 0x00, 0x00, 0x04, 0x2C,
	0x09, 0x01, 0x34, 0x03, 0x00, 0x04, 0x00, 0x14,
	0x08, 0x3A, 0x00, 0x02, 0x00, 0x20, 0x2C, 0x08,
}

// nametable areas selected by each of the four logical nametables
var mirrorAreas = map[cartridge.Mirroring][4]uint16{
	cartridge.MirrorHorizontal:    {0, 0, 1, 1},
	cartridge.MirrorVertical:      {0, 1, 0, 1},
	cartridge.MirrorFourScreen:    {0, 1, 2, 3},
	cartridge.MirrorSingleScreen0: {0, 0, 0, 0},
	cartridge.MirrorSingleScreen1: {1, 1, 1, 1},
}

// PPUMemory is the PPU address space:
//
//	$0000-$1FFF  pattern tables (cartridge CHR)
//	$2000-$2FFF  nametables, mirrored into $3000-$3EFF
//	$3F00-$3F1F  palette RAM, mirrored up to $3FFF
//
// Nametable RAM is 4KB so that four-screen boards get their own two
// kilobytes; the other modes only use the first two areas.
type PPUMemory struct {
	vram    [0x1000]uint8
	palette [32]uint8
	chr     CHR

	mirroring cartridge.Mirroring
	areas     [4]uint16
}

// NewPPUMemory creates the address space in its power-up state
func NewPPUMemory() *PPUMemory {
	pm := &PPUMemory{}
	pm.SetMirroring(cartridge.MirrorHorizontal)
	pm.Reset()
	return pm
}

// SetCHR attaches the pattern table source. nil reads as zero.
func (pm *PPUMemory) SetCHR(chr CHR) {
	pm.chr = chr
}

func (pm *PPUMemory) SetMirroring(m cartridge.Mirroring) {
	areas, ok := mirrorAreas[m]
	if !ok {
		panic("memory: unknown mirroring mode")
	}
	pm.mirroring = m
	pm.areas = areas
}

func (pm *PPUMemory) Mirroring() cartridge.Mirroring {
	return pm.mirroring
}

// Reset clears the nametables and reloads the power-up palette
func (pm *PPUMemory) Reset() {
	pm.vram = [0x1000]uint8{}
	pm.palette = PowerUpPalette
}

// Read reads from PPU memory space ($0000-$3FFF)
func (pm *PPUMemory) Read(address uint16) uint8 {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		if pm.chr == nil {
			return 0
		}
		return pm.chr.ReadCHR(address)
	case address < 0x3F00:
		return pm.vram[pm.nametableIndex(address)]
	default:
		return pm.palette[paletteIndex(address)]
	}
}

// Write writes to PPU memory space ($0000-$3FFF)
func (pm *PPUMemory) Write(address uint16, value uint8) {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		if pm.chr != nil {
			pm.chr.WriteCHR(address, value)
		}
	case address < 0x3F00:
		pm.vram[pm.nametableIndex(address)] = value
	default:
		pm.palette[paletteIndex(address)] = value & 0x3F
	}
}

// ReadPalette returns palette entry i (0-31) with background mirroring applied
func (pm *PPUMemory) ReadPalette(i uint8) uint8 {
	return pm.palette[paletteIndex(uint16(i))]
}

// Nametables exposes nametable RAM for inspection
func (pm *PPUMemory) Nametables() []uint8 {
	return pm.vram[:]
}

// Palette returns a copy of palette RAM
func (pm *PPUMemory) Palette() [32]uint8 {
	return pm.palette
}

func (pm *PPUMemory) nametableIndex(address uint16) uint16 {
	address &= 0x0FFF
	return pm.areas[address>>10]*0x400 + address&0x03FF
}

// entries $10/$14/$18/$1C share storage with $00/$04/$08/$0C
func paletteIndex(address uint16) uint16 {
	i := address & 0x1F
	if i&0x13 == 0x10 {
		i &= 0x0F
	}
	return i
}
