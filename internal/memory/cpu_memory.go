// Package memory implements the CPU and PPU address spaces of the NES.
package memory

// PPURegisters is the PPU side of $2000-$3FFF
type PPURegisters interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APURegisters is the APU side of $4000-$4017
type APURegisters interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputPorts serves the controller registers $4016/$4017
type InputPorts interface {
	Read(address uint16) uint8
	Write(value uint8)
}

// Cartridge is the CPU view of the mapper
type Cartridge interface {
	ReadPRG(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPUMemory is the CPU address space:
//
//	$0000-$1FFF  2KB internal RAM, mirrored
//	$2000-$3FFF  PPU registers, mirrored every 8 bytes
//	$4000-$4017  APU and I/O registers
//	$4018-$401F  test mode, ignored
//	$4020-$FFFF  cartridge
type CPUMemory struct {
	ram [0x800]uint8

	ppu   PPURegisters
	apu   APURegisters
	input InputPorts
	cart  Cartridge

	oamDMA func(page uint8)

	// last value seen on the data bus, returned by unmapped reads
	openBus uint8
}

// NewCPUMemory creates the address space. The input ports, the cartridge and
// the OAM DMA hook are attached separately and may stay nil.
func NewCPUMemory(ppu PPURegisters, apu APURegisters) *CPUMemory {
	return &CPUMemory{ppu: ppu, apu: apu}
}

func (m *CPUMemory) SetInput(input InputPorts) {
	m.input = input
}

// SetCartridge attaches a mapper. nil leaves $4020-$FFFF on the open bus.
func (m *CPUMemory) SetCartridge(cart Cartridge) {
	m.cart = cart
}

// SetOAMDMA sets the function called on writes to $4014
func (m *CPUMemory) SetOAMDMA(f func(page uint8)) {
	m.oamDMA = f
}

// Reset clears internal RAM
func (m *CPUMemory) Reset() {
	m.ram = [0x800]uint8{}
	m.openBus = 0
}

// Read reads a byte from the given address
func (m *CPUMemory) Read(address uint16) uint8 {
	var value uint8

	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]

	case address < 0x4000:
		value = m.ppu.ReadRegister(0x2000 + address&0x0007)

	case address == 0x4015:
		value = m.apu.ReadStatus()

	case address == 0x4016 || address == 0x4017:
		// only the low bits are driven by the controller port
		value = m.openBus & 0xE0
		if m.input != nil {
			value |= m.input.Read(address) & 0x1F
		}

	case address < 0x4020:
		// write-only registers
		value = m.openBus

	default:
		if m.cart == nil {
			value = m.openBus
		} else {
			value = m.cart.ReadPRG(address)
		}
	}

	m.openBus = value
	return value
}

// Write writes a byte to the given address
func (m *CPUMemory) Write(address uint16, value uint8) {
	m.openBus = value

	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value

	case address < 0x4000:
		m.ppu.WriteRegister(0x2000+address&0x0007, value)

	case address == 0x4014:
		if m.oamDMA != nil {
			m.oamDMA(value)
		}

	case address == 0x4016:
		if m.input != nil {
			m.input.Write(value)
		}

	case address <= 0x4017:
		m.apu.WriteRegister(address, value)

	case address < 0x4020:
		// test mode registers

	default:
		if m.cart != nil {
			m.cart.Write(address, value)
		}
	}
}

// Peek reads without side effects. Registers read as zero.
func (m *CPUMemory) Peek(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return m.ram[address&0x07FF]
	case address < 0x4020:
		return 0
	case m.cart != nil:
		return m.cart.ReadPRG(address)
	}
	return 0
}

// RAM exposes internal RAM for inspection
func (m *CPUMemory) RAM() []uint8 {
	return m.ram[:]
}
