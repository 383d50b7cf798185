package mapper

// NROM has no bank switching.
//
// CPU $6000-$7FFF: 8KB PRG RAM
// CPU $8000-$FFFF: 32KB PRG ROM, a 16KB image is mirrored into both halves
// PPU $0000-$1FFF: 8KB CHR ROM or RAM
type NROM struct {
	*banks
}

func newNROM(b *banks) Mapper {
	return &NROM{banks: b}
}

func (m *NROM) Reset() {
	m.resetBanks()
	m.mapPRGROMBank32K(0)
	m.mapPRGRAMBank8K(0)
	m.mapCHRBank8K(0)
}

func (m *NROM) Write(address uint16, value uint8) {
	m.writeRAM(address, value)
}
