package mapper

import "nescore/internal/cartridge"

const (
	prgBankSize = 0x2000
	ramBankSize = 0x2000
	chrBankSize = 0x0400
)

// banks holds the memories of a cartridge and the tables mapping the CPU and
// PPU windows onto them. Every chip embeds it.
//
// prgMap holds the PRG ROM offsets of the four 8KB windows at $8000, $A000,
// $C000 and $E000. chrMap holds the offsets of the eight 1KB windows at
// PPU $0000-$1FFF.
type banks struct {
	cart *cartridge.Cartridge
	host Host

	prgROM []byte
	prgRAM []byte
	chr    []byte

	chrWritable bool
	nvram       []byte

	prgMap [4]int
	ramMap int
	chrMap [8]int

	// ramWritable gates CPU writes to $6000-$7FFF. Reads are always served.
	ramWritable bool
}

func newBanks(cart *cartridge.Cartridge, host Host) *banks {
	b := &banks{
		cart:        cart,
		host:        host,
		prgROM:      cart.PRGROM,
		ramWritable: true,
	}

	if cart.PRGRAMSize > 0 {
		b.prgRAM = make([]byte, cart.PRGRAMSize)
		if cart.PRGRAMSizeBattery > 0 {
			b.nvram = b.prgRAM[:cart.PRGRAMSizeBattery]
		}
	}

	if cart.CHRROM != nil {
		b.chr = cart.CHRROM
	} else {
		size := cart.CHRRAMSize
		if size < 0x2000 {
			size = 0x2000
		}
		b.chr = make([]byte, size)
		b.chrWritable = true
		if cart.CHRRAMSizeBattery > 0 {
			b.nvram = b.chr[:cart.CHRRAMSizeBattery]
		}
	}

	return b
}

// wrap masks a bank number into [0, count). Negative numbers count from the
// end, so -1 is the last bank.
func wrap(bank, count int) int {
	if count <= 0 {
		return 0
	}
	return bank & (count - 1)
}

func (b *banks) prgBankCount() int { return len(b.prgROM) / prgBankSize }
func (b *banks) chrBankCount() int { return len(b.chr) / chrBankSize }

func (b *banks) mapPRGROMBank8K(slot, bank int) {
	b.prgMap[slot&3] = wrap(bank, b.prgBankCount()) * prgBankSize
}

func (b *banks) mapPRGROMBank16K(slot, bank int) {
	b.mapPRGROMBank8K(slot*2, bank*2)
	b.mapPRGROMBank8K(slot*2+1, bank*2+1)
}

func (b *banks) mapPRGROMBank32K(bank int) {
	for i := 0; i < 4; i++ {
		b.mapPRGROMBank8K(i, bank*4+i)
	}
}

func (b *banks) mapPRGRAMBank8K(bank int) {
	b.ramMap = wrap(bank, len(b.prgRAM)/ramBankSize) * ramBankSize
}

func (b *banks) mapCHRBank1K(slot, bank int) {
	b.chrMap[slot&7] = wrap(bank, b.chrBankCount()) * chrBankSize
}

func (b *banks) mapCHRBank2K(slot, bank int) {
	b.mapCHRBank1K(slot*2, bank*2)
	b.mapCHRBank1K(slot*2+1, bank*2+1)
}

func (b *banks) mapCHRBank4K(slot, bank int) {
	for i := 0; i < 4; i++ {
		b.mapCHRBank1K(slot*4+i, bank*4+i)
	}
}

func (b *banks) mapCHRBank8K(bank int) {
	for i := 0; i < 8; i++ {
		b.mapCHRBank1K(i, bank*8+i)
	}
}

func (b *banks) ramIndex(address uint16) int {
	i := b.ramMap + int(address&0x1FFF)
	if i >= len(b.prgRAM) {
		i %= len(b.prgRAM)
	}
	return i
}

// ReadPRG serves $6000-$FFFF. The expansion area below $6000 reads as zero.
func (b *banks) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0x8000:
		a := int(address - 0x8000)
		return b.prgROM[b.prgMap[a>>13]+a&0x1FFF]
	case address >= 0x6000:
		if len(b.prgRAM) == 0 {
			return 0
		}
		return b.prgRAM[b.ramIndex(address)]
	}
	return 0
}

func (b *banks) writeRAM(address uint16, value uint8) {
	if address < 0x6000 || address >= 0x8000 || len(b.prgRAM) == 0 || !b.ramWritable {
		return
	}
	b.prgRAM[b.ramIndex(address)] = value
}

func (b *banks) ReadCHR(address uint16) uint8 {
	a := int(address & 0x1FFF)
	return b.chr[b.chrMap[a>>10]+a&0x3FF]
}

func (b *banks) WriteCHR(address uint16, value uint8) {
	if !b.chrWritable {
		return
	}
	a := int(address & 0x1FFF)
	b.chr[b.chrMap[a>>10]+a&0x3FF] = value
}

func (b *banks) NVRAM() []byte {
	return b.nvram
}

// Tick does nothing for chips without a scanline counter
func (b *banks) Tick() {}

func (b *banks) ClearRAM() {
	keepPRG, keepCHR := 0, 0
	if b.cart.PRGRAMSizeBattery > 0 {
		keepPRG = len(b.nvram)
	} else if b.chrWritable {
		keepCHR = len(b.nvram)
	}
	clear(b.prgRAM[keepPRG:])
	if b.chrWritable {
		clear(b.chr[keepCHR:])
	}
}

// resetBanks applies the header mirroring and reopens PRG RAM
func (b *banks) resetBanks() {
	b.ramWritable = true
	b.ramMap = 0
	b.host.SetMirroring(b.cart.Mirroring)
}
