package mapper

import "nescore/internal/cartridge"

// MMC1 is loaded through a 5-bit shift register. Each write to $8000-$FFFF
// shifts bit 0 in from the top; the fifth write stores the value in the
// register picked by address bits 13-14 of that write.
//
// Control ($8000-$9FFF)
//
// 4bit0
// -----
// CPPMM
// |||||
// |||++- Mirroring (0: one-screen, lower bank; 1: one-screen, upper bank;
// |||               2: vertical; 3: horizontal)
// |++--- PRG ROM bank mode (0, 1: switch 32 KB at $8000, ignoring low bit of bank number;
// |                         2: fix first bank at $8000 and switch 16 KB bank at $C000;
// |                         3: fix last bank at $C000 and switch 16 KB bank at $8000)
// +----- CHR ROM bank mode (0: switch 8 KB at a time; 1: switch two separate 4 KB banks)
//
// CHR bank 0 ($A000-$BFFF), CHR bank 1 ($C000-$DFFF): 4KB CHR bank. On
// SNROM style boards bits 2-3 select the PRG RAM bank and bit 4 disables PRG
// RAM. On 512KB boards bit 4 selects the 256KB PRG half.
//
// PRG bank ($E000-$FFFF)
//
// 4bit0
// -----
// RPPPP
// |||||
// |++++- 16KB PRG ROM bank
// +----- PRG RAM disable
type MMC1 struct {
	*banks

	shift       uint8
	writesCount int

	control uint8
	chr0    uint8
	chr1    uint8
	prg     uint8

	snrom bool
}

func newMMC1(b *banks) Mapper {
	m := &MMC1{banks: b}
	m.snrom = len(b.prgROM) <= 0x40000 && len(b.prgRAM) == 0x2000 && len(b.chr) == 0x2000
	return m
}

func (m *MMC1) Reset() {
	m.resetBanks()
	m.shift = 0
	m.writesCount = 0
	m.control = 0x0C
	m.chr0 = 0
	m.chr1 = 0
	m.prg = 0
	m.update()
}

func (m *MMC1) Write(address uint16, value uint8) {
	if address < 0x8000 {
		m.writeRAM(address, value)
		return
	}

	if value&0x80 != 0 {
		m.shift = 0
		m.writesCount = 0
		m.control |= 0x0C
		m.update()
		return
	}

	m.shift = m.shift>>1 | (value&0x01)<<4
	m.writesCount++
	if m.writesCount < 5 {
		return
	}

	switch (address >> 13) & 0x03 {
	case 0:
		m.control = m.shift
	case 1:
		m.chr0 = m.shift
	case 2:
		m.chr1 = m.shift
	case 3:
		m.prg = m.shift
	}
	m.shift = 0
	m.writesCount = 0
	m.update()
}

func (m *MMC1) update() {
	switch m.control & 0x03 {
	case 0:
		m.host.SetMirroring(cartridge.MirrorSingleScreen0)
	case 1:
		m.host.SetMirroring(cartridge.MirrorSingleScreen1)
	case 2:
		m.host.SetMirroring(cartridge.MirrorVertical)
	case 3:
		m.host.SetMirroring(cartridge.MirrorHorizontal)
	}

	outer := 0
	if len(m.prgROM) > 0x40000 {
		outer = int(m.chr0&0x10) // 16 x 16KB
	}
	bank := int(m.prg & 0x0F)

	switch (m.control >> 2) & 0x03 {
	case 0, 1:
		m.mapPRGROMBank16K(0, outer|bank&^1)
		m.mapPRGROMBank16K(1, outer|bank|1)
	case 2:
		m.mapPRGROMBank16K(0, outer)
		m.mapPRGROMBank16K(1, outer|bank)
	case 3:
		m.mapPRGROMBank16K(0, outer|bank)
		m.mapPRGROMBank16K(1, outer|0x0F)
	}

	if m.control&0x10 != 0 {
		m.mapCHRBank4K(0, int(m.chr0))
		m.mapCHRBank4K(1, int(m.chr1))
	} else {
		m.mapCHRBank8K(int(m.chr0 >> 1))
	}

	m.ramWritable = m.prg&0x10 == 0
	if m.snrom && m.chr0&0x10 != 0 {
		m.ramWritable = false
	}
	m.mapPRGRAMBank8K(int(m.chr0>>2) & 0x03)
}
