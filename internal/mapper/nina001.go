package mapper

// NINA-001 keeps its three registers at the top of the PRG RAM window. A
// register write also stores the value in RAM.
//
// $7FFD: 32KB PRG bank (bit 0)
// $7FFE: 4KB CHR bank at PPU $0000
// $7FFF: 4KB CHR bank at PPU $1000
type NINA001 struct {
	*banks
}

func newNINA001(b *banks) Mapper {
	return &NINA001{banks: b}
}

func (m *NINA001) Reset() {
	m.resetBanks()
	m.mapPRGROMBank32K(0)
	m.mapCHRBank4K(0, 0)
	m.mapCHRBank4K(1, 0)
}

func (m *NINA001) Write(address uint16, value uint8) {
	m.writeRAM(address, value)

	switch address {
	case 0x7FFD:
		m.mapPRGROMBank32K(int(value & 0x01))
	case 0x7FFE:
		m.mapCHRBank4K(0, int(value&0x0F))
	case 0x7FFF:
		m.mapCHRBank4K(1, int(value&0x0F))
	}
}
