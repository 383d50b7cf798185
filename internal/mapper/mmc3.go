package mapper

import "nescore/internal/cartridge"

// MMC3 has four pairs of registers at $8000, $A000, $C000 and $E000. Even
// addresses select the first register of a pair, odd addresses the second.
//
// Bank select ($8000, even)
//
// 7  bit  0
// ---- ----
// CPxx xRRR
// ||    |||
// ||    +++- Bank register written by the next bank data write
// |+-------- PRG ROM bank mode (0: $8000 swappable, $C000 fixed to second-last bank;
// |                             1: $C000 swappable, $8000 fixed to second-last bank)
// +--------- CHR A12 inversion (0: two 2KB banks at $0000, four 1KB banks at $1000;
//                               1: two 2KB banks at $1000, four 1KB banks at $0000)
//
// The IRQ counter is clocked once per rendered scanline through Tick.
type MMC3 struct {
	*banks

	registers  [8]uint8
	bankSelect uint8
	prgMode    uint8
	chrInvert  uint8

	irqLatch   uint8
	irqCounter uint8
	irqReload  bool
	irqEnabled bool
}

func newMMC3(b *banks) Mapper {
	return &MMC3{banks: b}
}

func (m *MMC3) Reset() {
	m.resetBanks()
	m.registers = [8]uint8{0, 2, 4, 5, 6, 7, 0, 1}
	m.bankSelect = 0
	m.prgMode = 0
	m.chrInvert = 0
	m.irqLatch = 0
	m.irqCounter = 0
	m.irqReload = false
	m.irqEnabled = false
	m.host.SetIRQ(false)
	m.update()
}

func (m *MMC3) Write(address uint16, value uint8) {
	if address < 0x8000 {
		m.writeRAM(address, value)
		return
	}

	switch address & 0xE001 {
	case 0x8000:
		m.bankSelect = value & 0x07
		m.prgMode = (value >> 6) & 0x01
		m.chrInvert = (value >> 7) & 0x01
		m.update()
	case 0x8001:
		m.registers[m.bankSelect] = value
		m.update()
	case 0xA000:
		if m.cart.Mirroring == cartridge.MirrorFourScreen {
			break
		}
		if value&0x01 == 0 {
			m.host.SetMirroring(cartridge.MirrorVertical)
		} else {
			m.host.SetMirroring(cartridge.MirrorHorizontal)
		}
	case 0xA001:
		// bit 7 enables the chip, bit 6 protects it from writes
		m.ramWritable = value&0x80 != 0 && value&0x40 == 0
	case 0xC000:
		m.irqLatch = value
	case 0xC001:
		m.irqCounter = 0
		m.irqReload = true
	case 0xE000:
		m.irqEnabled = false
		m.host.SetIRQ(false)
	case 0xE001:
		m.irqEnabled = true
	}
}

func (m *MMC3) update() {
	r := m.registers

	if m.prgMode == 0 {
		m.mapPRGROMBank8K(0, int(r[6]))
		m.mapPRGROMBank8K(1, int(r[7]))
		m.mapPRGROMBank8K(2, -2)
	} else {
		m.mapPRGROMBank8K(0, -2)
		m.mapPRGROMBank8K(1, int(r[7]))
		m.mapPRGROMBank8K(2, int(r[6]))
	}
	m.mapPRGROMBank8K(3, -1)

	// with inversion the 2KB banks move to $1000 and the 1KB banks to $0000
	big, small := 0, 4
	if m.chrInvert != 0 {
		big, small = 4, 0
	}
	m.mapCHRBank1K(big+0, int(r[0]&^1))
	m.mapCHRBank1K(big+1, int(r[0]|1))
	m.mapCHRBank1K(big+2, int(r[1]&^1))
	m.mapCHRBank1K(big+3, int(r[1]|1))
	m.mapCHRBank1K(small+0, int(r[2]))
	m.mapCHRBank1K(small+1, int(r[3]))
	m.mapCHRBank1K(small+2, int(r[4]))
	m.mapCHRBank1K(small+3, int(r[5]))
}

// Tick clocks the scanline counter
func (m *MMC3) Tick() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}

	if m.irqCounter == 0 && m.irqEnabled {
		m.host.SetIRQ(true)
	}
}
