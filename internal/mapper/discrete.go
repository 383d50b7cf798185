package mapper

import "nescore/internal/cartridge"

// The boards in this file are built from discrete logic: a single latch
// written through any address in $8000-$FFFF.

// UNROM switches a 16KB bank at $8000. The last bank is fixed at $C000.
type UNROM struct {
	*banks
}

func newUNROM(b *banks) Mapper {
	return &UNROM{banks: b}
}

func (m *UNROM) Reset() {
	m.resetBanks()
	m.mapPRGROMBank16K(0, 0)
	m.mapPRGROMBank16K(1, -1)
	m.mapCHRBank8K(0)
}

func (m *UNROM) Write(address uint16, value uint8) {
	if address < 0x8000 {
		m.writeRAM(address, value)
		return
	}
	m.mapPRGROMBank16K(0, int(value))
}

// CNROM switches the 8KB CHR bank. PRG is fixed.
type CNROM struct {
	*banks
}

func newCNROM(b *banks) Mapper {
	return &CNROM{banks: b}
}

func (m *CNROM) Reset() {
	m.resetBanks()
	m.mapPRGROMBank32K(0)
	m.mapCHRBank8K(0)
}

func (m *CNROM) Write(address uint16, value uint8) {
	if address < 0x8000 {
		m.writeRAM(address, value)
		return
	}
	m.mapCHRBank8K(int(value))
}

// AOROM switches 32KB of PRG and selects the single-screen nametable.
//
// 7  bit  0
// ---- ----
// xxxM xPPP
//    |  |||
//    |  +++- 32KB PRG bank at $8000
//    +------ nametable used for all four screens
type AOROM struct {
	*banks
}

func newAOROM(b *banks) Mapper {
	return &AOROM{banks: b}
}

func (m *AOROM) Reset() {
	m.resetBanks()
	m.mapPRGROMBank32K(0)
	m.mapCHRBank8K(0)
	m.host.SetMirroring(cartridge.MirrorSingleScreen0)
}

func (m *AOROM) Write(address uint16, value uint8) {
	if address < 0x8000 {
		m.writeRAM(address, value)
		return
	}
	m.mapPRGROMBank32K(int(value & 0x07))
	if value&0x10 != 0 {
		m.host.SetMirroring(cartridge.MirrorSingleScreen1)
	} else {
		m.host.SetMirroring(cartridge.MirrorSingleScreen0)
	}
}

// BNROM switches 32KB of PRG. CHR is 8KB of RAM.
type BNROM struct {
	*banks
}

func newBNROM(b *banks) Mapper {
	return &BNROM{banks: b}
}

func (m *BNROM) Reset() {
	m.resetBanks()
	m.mapPRGROMBank32K(0)
	m.mapCHRBank8K(0)
}

func (m *BNROM) Write(address uint16, value uint8) {
	if address < 0x8000 {
		m.writeRAM(address, value)
		return
	}
	m.mapPRGROMBank32K(int(value))
}

// ColorDreams switches 32KB of PRG and 8KB of CHR.
//
// 7  bit  0
// ---- ----
// CCCC xxPP
// ||||   ||
// ||||   ++- 32KB PRG bank
// ++++------ 8KB CHR bank
type ColorDreams struct {
	*banks
}

func newColorDreams(b *banks) Mapper {
	return &ColorDreams{banks: b}
}

func (m *ColorDreams) Reset() {
	m.resetBanks()
	m.mapPRGROMBank32K(0)
	m.mapCHRBank8K(0)
}

func (m *ColorDreams) Write(address uint16, value uint8) {
	if address < 0x8000 {
		m.writeRAM(address, value)
		return
	}
	m.mapPRGROMBank32K(int(value & 0x03))
	m.mapCHRBank8K(int(value >> 4))
}
