package memory

import (
	"testing"

	"nescore/internal/cartridge"
)

type RegisterWrite struct {
	Address uint16
	Value   uint8
}

// MockPPU implements PPURegisters for testing
type MockPPU struct {
	registers  [8]uint8
	readCalls  []uint16
	writeCalls []RegisterWrite
}

func (m *MockPPU) ReadRegister(address uint16) uint8 {
	m.readCalls = append(m.readCalls, address)
	return m.registers[address&0x7]
}

func (m *MockPPU) WriteRegister(address uint16, value uint8) {
	m.writeCalls = append(m.writeCalls, RegisterWrite{Address: address, Value: value})
	m.registers[address&0x7] = value
}

// MockAPU implements APURegisters for testing
type MockAPU struct {
	status     uint8
	writeCalls []RegisterWrite
}

func (m *MockAPU) WriteRegister(address uint16, value uint8) {
	m.writeCalls = append(m.writeCalls, RegisterWrite{Address: address, Value: value})
}

func (m *MockAPU) ReadStatus() uint8 {
	return m.status
}

// MockInput implements InputPorts for testing
type MockInput struct {
	strobes []uint8
	value   uint8
}

func (m *MockInput) Read(address uint16) uint8 { return m.value }
func (m *MockInput) Write(value uint8)         { m.strobes = append(m.strobes, value) }

// MockCartridge implements Cartridge and CHR for testing
type MockCartridge struct {
	prg       [0x10000]uint8
	chr       [0x2000]uint8
	prgWrites []RegisterWrite
}

func (m *MockCartridge) ReadPRG(address uint16) uint8 { return m.prg[address] }

func (m *MockCartridge) Write(address uint16, value uint8) {
	m.prgWrites = append(m.prgWrites, RegisterWrite{Address: address, Value: value})
}

func (m *MockCartridge) ReadCHR(address uint16) uint8         { return m.chr[address&0x1FFF] }
func (m *MockCartridge) WriteCHR(address uint16, value uint8) { m.chr[address&0x1FFF] = value }

func newTestCPUMemory() (*CPUMemory, *MockPPU, *MockAPU, *MockCartridge) {
	ppu := &MockPPU{}
	apu := &MockAPU{}
	cart := &MockCartridge{}
	mem := NewCPUMemory(ppu, apu)
	mem.SetCartridge(cart)
	return mem, ppu, apu, cart
}

func TestCPUMemory_InternalRAM_ShouldMirror(t *testing.T) {
	mem, _, _, _ := newTestCPUMemory()

	tests := []struct {
		write  uint16
		mirror []uint16
	}{
		{0x0000, []uint16{0x0800, 0x1000, 0x1800}},
		{0x07FF, []uint16{0x0FFF, 0x17FF, 0x1FFF}},
		{0x0123, []uint16{0x0923, 0x1123, 0x1923}},
	}

	for i, tt := range tests {
		value := uint8(0x40 + i)
		mem.Write(tt.write, value)
		for _, addr := range tt.mirror {
			if got := mem.Read(addr); got != value {
				t.Errorf("Read(%#04x) = %#02x, want %#02x", addr, got, value)
			}
		}
	}

	mem.Reset()
	if mem.Read(0x0123) != 0 {
		t.Error("Reset did not clear RAM")
	}
}

func TestCPUMemory_PPURegisters_ShouldMirrorEvery8(t *testing.T) {
	mem, ppu, _, _ := newTestCPUMemory()

	mem.Write(0x3FF9, 0x12) // mirror of $2001
	if len(ppu.writeCalls) != 1 || ppu.writeCalls[0].Address != 0x2001 {
		t.Fatalf("unexpected PPU writes %+v", ppu.writeCalls)
	}

	mem.Read(0x2A02)
	if len(ppu.readCalls) != 1 || ppu.readCalls[0] != 0x2002 {
		t.Fatalf("unexpected PPU reads %v", ppu.readCalls)
	}
}

func TestCPUMemory_APUAndIO(t *testing.T) {
	mem, _, apu, _ := newTestCPUMemory()
	input := &MockInput{value: 0x01}
	mem.SetInput(input)

	var dmaPage int = -1
	mem.SetOAMDMA(func(page uint8) { dmaPage = int(page) })

	for _, addr := range []uint16{0x4000, 0x4008, 0x4013, 0x4015, 0x4017} {
		mem.Write(addr, 0xAA)
	}
	if len(apu.writeCalls) != 5 {
		t.Errorf("APU saw %d writes, want 5", len(apu.writeCalls))
	}

	mem.Write(0x4014, 0x02)
	if dmaPage != 0x02 {
		t.Errorf("OAM DMA page = %d, want 2", dmaPage)
	}

	mem.Write(0x4016, 0x01)
	if len(input.strobes) != 1 || input.strobes[0] != 0x01 {
		t.Errorf("strobe writes = %v", input.strobes)
	}
	if len(apu.writeCalls) != 5 {
		t.Error("$4014/$4016 writes leaked to the APU")
	}

	apu.status = 0x1F
	if mem.Read(0x4015) != 0x1F {
		t.Error("$4015 should read APU status")
	}

	// open bus keeps the upper bits of the last bus value
	mem.Write(0x0000, 0x40)
	mem.Read(0x0000)
	if got := mem.Read(0x4016); got != 0x41 {
		t.Errorf("$4016 = %#02x, want 0x41", got)
	}

	mem.Write(0x4018, 0x55)
	if len(apu.writeCalls) != 5 {
		t.Error("test mode write reached the APU")
	}
}

func TestCPUMemory_Cartridge(t *testing.T) {
	mem, _, _, cart := newTestCPUMemory()
	cart.prg[0x8000] = 0x4C
	cart.prg[0x6000] = 0x77

	if mem.Read(0x8000) != 0x4C || mem.Read(0x6000) != 0x77 {
		t.Error("cartridge reads not routed")
	}

	mem.Write(0x8000, 0x01)
	mem.Write(0x4020, 0x02)
	if len(cart.prgWrites) != 2 {
		t.Errorf("cartridge saw %d writes, want 2", len(cart.prgWrites))
	}

	if mem.Peek(0x8000) != 0x4C {
		t.Error("Peek should read the cartridge")
	}
}

func TestCPUMemory_NoCartridge_ShouldReturnOpenBus(t *testing.T) {
	mem := NewCPUMemory(&MockPPU{}, &MockAPU{})
	mem.Write(0x0010, 0x5A)
	mem.Read(0x0010)

	if got := mem.Read(0xC000); got != 0x5A {
		t.Errorf("Read(0xC000) = %#02x, want open bus 0x5A", got)
	}
	mem.Write(0x8000, 0x00) // must not panic
}

func TestPPUMemory_NametableMirroring(t *testing.T) {
	tests := []struct {
		mode cartridge.Mirroring
		// logical nametables that share storage with $2000
		shared []uint16
		// logical nametables that must not
		separate []uint16
	}{
		{cartridge.MirrorHorizontal, []uint16{0x2400}, []uint16{0x2800, 0x2C00}},
		{cartridge.MirrorVertical, []uint16{0x2800}, []uint16{0x2400, 0x2C00}},
		{cartridge.MirrorFourScreen, nil, []uint16{0x2400, 0x2800, 0x2C00}},
		{cartridge.MirrorSingleScreen0, []uint16{0x2400, 0x2800, 0x2C00}, nil},
		{cartridge.MirrorSingleScreen1, []uint16{0x2400, 0x2800, 0x2C00}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			pm := NewPPUMemory()
			pm.SetMirroring(tt.mode)
			pm.Write(0x2005, 0x99)

			for _, base := range tt.shared {
				if got := pm.Read(base + 5); got != 0x99 {
					t.Errorf("Read(%#04x) = %#02x, want shared 0x99", base+5, got)
				}
			}
			for _, base := range tt.separate {
				if got := pm.Read(base + 5); got != 0 {
					t.Errorf("Read(%#04x) = %#02x, want separate storage", base+5, got)
				}
			}
			if pm.Read(0x3005) != 0x99 {
				t.Error("$3000 should mirror $2000")
			}
		})
	}
}

func TestPPUMemory_SingleScreen_UsesDifferentAreas(t *testing.T) {
	pm := NewPPUMemory()
	pm.SetMirroring(cartridge.MirrorSingleScreen0)
	pm.Write(0x2000, 0x11)
	pm.SetMirroring(cartridge.MirrorSingleScreen1)
	if pm.Read(0x2000) != 0 {
		t.Error("single-screen 1 should use the second area")
	}
	pm.Write(0x2000, 0x22)
	pm.SetMirroring(cartridge.MirrorSingleScreen0)
	if pm.Read(0x2C00) != 0x11 {
		t.Error("single-screen 0 area was overwritten")
	}
}

func TestPPUMemory_Palette(t *testing.T) {
	pm := NewPPUMemory()
	if pm.Palette() != PowerUpPalette {
		t.Error("palette RAM should start with the power-up values")
	}

	pm.Write(0x3F10, 0x2A)
	if pm.Read(0x3F00) != 0x2A {
		t.Error("$3F10 should mirror $3F00")
	}
	pm.Write(0x3F0C, 0x15)
	if pm.Read(0x3F1C) != 0x15 {
		t.Error("$3F1C should mirror $3F0C")
	}
	pm.Write(0x3F11, 0x30)
	if pm.Read(0x3F01) == 0x30 {
		t.Error("$3F11 must not mirror $3F01")
	}
	if pm.Read(0x3F31) != 0x30 {
		t.Error("palette should repeat every 32 bytes")
	}
	pm.Write(0x3F02, 0xFF)
	if pm.Read(0x3F02) != 0x3F {
		t.Error("palette entries are 6 bits wide")
	}

	pm.Reset()
	if pm.Palette() != PowerUpPalette || pm.Nametables()[0] != 0 {
		t.Error("Reset did not restore the power-up state")
	}
}

func TestPPUMemory_CHR(t *testing.T) {
	pm := NewPPUMemory()
	if pm.Read(0x0010) != 0 {
		t.Error("no CHR attached should read zero")
	}

	cart := &MockCartridge{}
	pm.SetCHR(cart)
	pm.Write(0x1234, 0x56)
	if cart.chr[0x1234] != 0x56 || pm.Read(0x5234) != 0x56 {
		t.Error("pattern table access not routed to the cartridge")
	}
}
