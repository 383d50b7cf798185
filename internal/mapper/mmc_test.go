package mapper

import (
	"testing"

	"nescore/internal/cartridge"
)

// writeMMC1 performs the five serial writes that load value into the register
// behind address
func writeMMC1(m Mapper, address uint16, value uint8) {
	for i := 0; i < 5; i++ {
		m.Write(address, (value>>i)&0x01)
	}
}

func TestMMC1_ResetWrite_ShouldClearShiftAndForceMode(t *testing.T) {
	for partial := 0; partial < 5; partial++ {
		m, _ := newTestMapper(t, testCart(cartridge.MapperMMC1, 128, 32))
		mmc1 := m.(*MMC1)

		writeMMC1(m, 0x8000, 0x00) // 32KB mode, control bits 2-3 clear
		for i := 0; i < partial; i++ {
			m.Write(0xE000, 0x01)
		}

		m.Write(0x8000, 0x80)
		if mmc1.writesCount != 0 {
			t.Errorf("after %d partial writes: writesCount = %d, want 0", partial, mmc1.writesCount)
		}
		if mmc1.control&0x0C != 0x0C {
			t.Errorf("after %d partial writes: control = %#02x, bits 2-3 not set", partial, mmc1.control)
		}
	}
}

func TestMMC1_PRGModes(t *testing.T) {
	tests := []struct {
		name    string
		control uint8
		prg     uint8
		want    [4]uint8
	}{
		{"fix last, switch $8000", 0x0C, 3, [4]uint8{6, 7, 14, 15}},
		{"fix first, switch $C000", 0x08, 3, [4]uint8{0, 1, 6, 7}},
		{"32KB ignores low bit", 0x00, 3, [4]uint8{4, 5, 6, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMapper(t, testCart(cartridge.MapperMMC1, 128, 32))
			writeMMC1(m, 0x8000, tt.control)
			writeMMC1(m, 0xE000, tt.prg)
			if got := prgBanks(m); got != tt.want {
				t.Errorf("PRG windows = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMMC1_CHRModesAndMirroring(t *testing.T) {
	m, host := newTestMapper(t, testCart(cartridge.MapperMMC1, 128, 32))

	writeMMC1(m, 0x8000, 0x1E) // 4KB CHR, fix last PRG, vertical
	if host.mirroring != cartridge.MirrorVertical {
		t.Errorf("mirroring = %v, want vertical", host.mirroring)
	}
	writeMMC1(m, 0xA000, 2)
	writeMMC1(m, 0xC000, 5)
	if got := chrBanks(m); got != [8]uint8{8, 9, 10, 11, 20, 21, 22, 23} {
		t.Errorf("4KB CHR windows = %v", got)
	}

	writeMMC1(m, 0x8000, 0x0F) // 8KB CHR, horizontal
	if host.mirroring != cartridge.MirrorHorizontal {
		t.Errorf("mirroring = %v, want horizontal", host.mirroring)
	}
	// 8KB mode ignores the low bit of CHR bank 0: 2 selects 8KB bank 1
	if got := chrBanks(m); got != [8]uint8{8, 9, 10, 11, 12, 13, 14, 15} {
		t.Errorf("8KB CHR windows = %v", got)
	}

	writeMMC1(m, 0x8000, 0x0D)
	if host.mirroring != cartridge.MirrorSingleScreen1 {
		t.Errorf("mirroring = %v, want single-screen-1", host.mirroring)
	}
}

func TestMMC1_PRGRAMDisable(t *testing.T) {
	m, _ := newTestMapper(t, testCart(cartridge.MapperMMC1, 128, 32))

	m.Write(0x6000, 0x11)
	writeMMC1(m, 0xE000, 0x10)
	m.Write(0x6000, 0x22)
	if m.ReadPRG(0x6000) != 0x11 {
		t.Error("write went through with PRG RAM disabled")
	}

	writeMMC1(m, 0xE000, 0x00)
	m.Write(0x6000, 0x33)
	if m.ReadPRG(0x6000) != 0x33 {
		t.Error("write rejected with PRG RAM enabled")
	}
}

func TestMMC1_SNROM_CHRBit4DisablesRAM(t *testing.T) {
	m, _ := newTestMapper(t, testCart(cartridge.MapperMMC1, 256, 0))
	if !m.(*MMC1).snrom {
		t.Fatal("256KB PRG + 8KB RAM + 8KB CHR RAM should be detected as SNROM")
	}

	writeMMC1(m, 0xA000, 0x10)
	m.Write(0x6000, 0x55)
	if m.ReadPRG(0x6000) == 0x55 {
		t.Error("SNROM CHR bit 4 did not disable PRG RAM")
	}
}

func TestMMC1_512K_OuterBank(t *testing.T) {
	m, _ := newTestMapper(t, testCart(cartridge.MapperMMC1, 512, 0))

	// mode 3 with the upper 256KB selected: the fixed bank is the last one
	writeMMC1(m, 0xA000, 0x10)
	writeMMC1(m, 0xE000, 0x01)
	if got := prgBanks(m); got != [4]uint8{34, 35, 62, 63} {
		t.Errorf("PRG windows = %v, want [34 35 62 63]", got)
	}

	writeMMC1(m, 0xA000, 0x00)
	if got := prgBanks(m); got != [4]uint8{2, 3, 30, 31} {
		t.Errorf("PRG windows = %v, want [2 3 30 31]", got)
	}
}

func TestMMC1_PRGRAMBankSelect(t *testing.T) {
	cart := testCart(cartridge.MapperMMC1, 256, 0)
	cart.PRGRAMSize = 0x8000
	m, _ := newTestMapper(t, cart)

	m.Write(0x6000, 0xA0)
	writeMMC1(m, 0xA000, 0x08) // bank 2
	m.Write(0x6000, 0xA2)
	if m.ReadPRG(0x6000) != 0xA2 {
		t.Fatal("bank 2 write lost")
	}
	writeMMC1(m, 0xA000, 0x00)
	if m.ReadPRG(0x6000) != 0xA0 {
		t.Error("bank 0 was overwritten by a bank 2 write")
	}
}

func TestMMC3_BankSwitching(t *testing.T) {
	m, _ := newTestMapper(t, testCart(cartridge.MapperMMC3, 128, 64))

	if got := prgBanks(m); got != [4]uint8{0, 1, 14, 15} {
		t.Errorf("power-up PRG windows = %v", got)
	}

	for reg, value := range []uint8{4, 10, 20, 21, 22, 23, 3, 5} {
		m.Write(0x8000, uint8(reg))
		m.Write(0x8001, value)
	}
	if got := prgBanks(m); got != [4]uint8{3, 5, 14, 15} {
		t.Errorf("mode 0 PRG windows = %v, want [3 5 14 15]", got)
	}
	if got := chrBanks(m); got != [8]uint8{4, 5, 10, 11, 20, 21, 22, 23} {
		t.Errorf("CHR windows = %v", got)
	}

	m.Write(0x8000, 0xC0) // PRG mode 1 and CHR inversion
	if got := prgBanks(m); got != [4]uint8{14, 5, 3, 15} {
		t.Errorf("mode 1 PRG windows = %v, want [14 5 3 15]", got)
	}
	if got := chrBanks(m); got != [8]uint8{20, 21, 22, 23, 4, 5, 10, 11} {
		t.Errorf("inverted CHR windows = %v", got)
	}
}

func TestMMC3_Mirroring(t *testing.T) {
	m, host := newTestMapper(t, testCart(cartridge.MapperMMC3, 128, 64))
	m.Write(0xA000, 0)
	if host.mirroring != cartridge.MirrorVertical {
		t.Errorf("mirroring = %v, want vertical", host.mirroring)
	}
	m.Write(0xA000, 1)
	if host.mirroring != cartridge.MirrorHorizontal {
		t.Errorf("mirroring = %v, want horizontal", host.mirroring)
	}

	four := testCart(cartridge.MapperMMC3, 128, 64)
	four.Mirroring = cartridge.MirrorFourScreen
	m, host = newTestMapper(t, four)
	m.Write(0xA000, 1)
	if host.mirroring != cartridge.MirrorFourScreen {
		t.Error("four-screen boards ignore the mirroring register")
	}
}

func TestMMC3_IRQCounter(t *testing.T) {
	m, host := newTestMapper(t, testCart(cartridge.MapperMMC3, 128, 64))

	m.Write(0xC000, 3) // latch
	m.Write(0xC001, 0) // reload
	m.Write(0xE001, 0) // enable

	// reload to 3, then 2, 1, 0
	for i := 0; i < 3; i++ {
		m.Tick()
		if host.irq {
			t.Fatalf("IRQ asserted early on scanline %d", i)
		}
	}
	m.Tick()
	if !host.irq {
		t.Fatal("IRQ not asserted when the counter reached zero")
	}

	m.Write(0xE000, 0)
	if host.irq {
		t.Error("$E000 should acknowledge the IRQ")
	}

	// disabled: counter keeps running without asserting
	for i := 0; i < 8; i++ {
		m.Tick()
	}
	if host.irq {
		t.Error("IRQ asserted while disabled")
	}
}

func TestMMC3_IRQCounter_LatchZero(t *testing.T) {
	m, host := newTestMapper(t, testCart(cartridge.MapperMMC3, 128, 64))

	m.Write(0xC000, 0)
	m.Write(0xC001, 0)
	m.Write(0xE001, 0)

	m.Tick()
	if !host.irq || host.irqCount != 1 {
		t.Error("latch 0 should assert on every clocked scanline")
	}
}

func TestMMC3_PRGRAMProtect(t *testing.T) {
	m, _ := newTestMapper(t, testCart(cartridge.MapperMMC3, 128, 64))

	m.Write(0x6000, 0x01)
	m.Write(0xA001, 0xC0) // enabled, write protected
	m.Write(0x6000, 0x02)
	if m.ReadPRG(0x6000) != 0x01 {
		t.Error("write protected RAM accepted a write")
	}

	m.Write(0xA001, 0x80)
	m.Write(0x6000, 0x03)
	if m.ReadPRG(0x6000) != 0x03 {
		t.Error("enabled RAM rejected a write")
	}
}
