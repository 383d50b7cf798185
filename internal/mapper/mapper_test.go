package mapper

import (
	"errors"
	"testing"

	"nescore/internal/cartridge"
)

type fakeHost struct {
	mirroring cartridge.Mirroring
	irq       bool
	irqCount  int
}

func (h *fakeHost) SetMirroring(m cartridge.Mirroring) { h.mirroring = m }

func (h *fakeHost) SetIRQ(active bool) {
	if active && !h.irq {
		h.irqCount++
	}
	h.irq = active
}

// testCart builds a cartridge whose every 1KB of PRG and CHR starts with its
// own bank number, so reads reveal the current mapping.
func testCart(name string, prgKB, chrKB int) *cartridge.Cartridge {
	prg := make([]byte, prgKB*1024)
	for i := 0; i < len(prg); i += prgBankSize {
		prg[i] = uint8(i / prgBankSize)
	}
	c := &cartridge.Cartridge{
		Mapper:     name,
		PRGROM:     prg,
		PRGRAMSize: 0x2000,
	}
	if chrKB > 0 {
		c.CHRROM = make([]byte, chrKB*1024)
		for i := 0; i < len(c.CHRROM); i += chrBankSize {
			c.CHRROM[i] = uint8(i / chrBankSize)
		}
	} else {
		c.CHRRAMSize = 0x2000
	}
	return c
}

func newTestMapper(t *testing.T, cart *cartridge.Cartridge) (Mapper, *fakeHost) {
	t.Helper()
	host := &fakeHost{}
	m, err := New(cart, host)
	if err != nil {
		t.Fatalf("New(%s) failed: %v", cart.Mapper, err)
	}
	return m, host
}

// prgBanks returns the 8KB bank visible in each CPU window
func prgBanks(m Mapper) [4]uint8 {
	var out [4]uint8
	for i := range out {
		out[i] = m.ReadPRG(0x8000 + uint16(i)*0x2000)
	}
	return out
}

func chrBanks(m Mapper) [8]uint8 {
	var out [8]uint8
	for i := range out {
		out[i] = m.ReadCHR(uint16(i) * 0x400)
	}
	return out
}

func TestNew_UnknownMapper_ShouldFail(t *testing.T) {
	cart := testCart("69", 32, 8)
	cart.MapperID = 69

	_, err := New(cart, nil)
	var unsupported *UnsupportedMapperError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedMapperError, got %v", err)
	}
	if unsupported.ID != 69 {
		t.Errorf("error names mapper %d, want 69", unsupported.ID)
	}
}

func TestNew_AllSupported(t *testing.T) {
	for _, name := range Supported() {
		t.Run(name, func(t *testing.T) {
			m, host := newTestMapper(t, testCart(name, 128, 32))
			if m == nil {
				t.Fatal("nil mapper")
			}
			if host.irq {
				t.Error("IRQ asserted after reset")
			}
		})
	}
}

func TestBankWraparound(t *testing.T) {
	cart := testCart(cartridge.MapperNROM, 64, 16) // 8 PRG banks, 16 CHR banks
	b := newBanks(cart, nopHost{})
	n := b.prgBankCount()

	for r := 0; r < n; r++ {
		for _, k := range []int{-3, -1, 1, 2, 7} {
			b.mapPRGROMBank8K(0, r)
			want := b.prgMap[0]
			b.mapPRGROMBank8K(0, k*n+r)
			if b.prgMap[0] != want {
				t.Errorf("bank %d (k=%d r=%d) mapped to %#x, want %#x", k*n+r, k, r, b.prgMap[0], want)
			}
		}
	}

	b.mapCHRBank1K(3, 16+5)
	if b.ReadCHR(0x0C00) != 5 {
		t.Errorf("CHR bank 21 should wrap to 5, got %d", b.ReadCHR(0x0C00))
	}

	b.mapPRGROMBank8K(3, -1)
	if b.ReadPRG(0xE000) != uint8(n-1) {
		t.Errorf("bank -1 should select the last bank, got %d", b.ReadPRG(0xE000))
	}
}

func TestNROM_16K_ShouldMirror(t *testing.T) {
	m, _ := newTestMapper(t, testCart(cartridge.MapperNROM, 16, 8))
	if got := prgBanks(m); got != [4]uint8{0, 1, 0, 1} {
		t.Errorf("PRG windows = %v, want [0 1 0 1]", got)
	}

	m.Write(0x8000, 0xFF)
	if got := prgBanks(m); got != [4]uint8{0, 1, 0, 1} {
		t.Errorf("ROM write changed banking: %v", got)
	}
}

func TestPRGRAM_ReadWrite(t *testing.T) {
	m, _ := newTestMapper(t, testCart(cartridge.MapperNROM, 32, 8))
	m.Write(0x6000, 0x42)
	m.Write(0x7FFF, 0x24)
	if m.ReadPRG(0x6000) != 0x42 || m.ReadPRG(0x7FFF) != 0x24 {
		t.Error("PRG RAM did not keep written values")
	}
}

func TestClearRAM_ShouldKeepOnlyBatteryBackedRAM(t *testing.T) {
	tests := []struct {
		name       string
		prgBattery int
		chrBattery int
		wantPRG    uint8
		wantCHR    uint8
	}{
		{"no battery", 0, 0, 0x00, 0x00},
		{"battery PRG RAM", 0x2000, 0, 0x42, 0x00},
		{"battery CHR RAM", 0, 0x2000, 0x00, 0x99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := testCart(cartridge.MapperNROM, 32, 0)
			cart.PRGRAMSizeBattery = tt.prgBattery
			cart.CHRRAMSizeBattery = tt.chrBattery
			m, _ := newTestMapper(t, cart)

			m.Write(0x6000, 0x42)
			m.WriteCHR(0x0010, 0x99)
			m.ClearRAM()
			m.Reset()

			if got := m.ReadPRG(0x6000); got != tt.wantPRG {
				t.Errorf("PRG RAM = $%02X, want $%02X", got, tt.wantPRG)
			}
			if got := m.ReadCHR(0x0010); got != tt.wantCHR {
				t.Errorf("CHR RAM = $%02X, want $%02X", got, tt.wantCHR)
			}
		})
	}
}

func TestCHR_ROMIsReadOnly_RAMIsWritable(t *testing.T) {
	rom, _ := newTestMapper(t, testCart(cartridge.MapperNROM, 32, 8))
	rom.WriteCHR(0x0001, 0x99)
	if rom.ReadCHR(0x0001) != 0 {
		t.Error("CHR ROM accepted a write")
	}

	ram, _ := newTestMapper(t, testCart(cartridge.MapperNROM, 32, 0))
	ram.WriteCHR(0x1FFF, 0x99)
	if ram.ReadCHR(0x1FFF) != 0x99 {
		t.Error("CHR RAM rejected a write")
	}
}

func TestDiscreteBoards(t *testing.T) {
	tests := []struct {
		name    string
		mapper  string
		chrKB   int
		value   uint8
		wantPRG [4]uint8
		wantCHR uint8
	}{
		{"UNROM bank 3", cartridge.MapperUNROM, 0, 3, [4]uint8{6, 7, 14, 15}, 0},
		{"UNROM wraps", cartridge.MapperUNROM, 0, 8 + 2, [4]uint8{4, 5, 14, 15}, 0},
		{"CNROM CHR 2", cartridge.MapperCNROM, 32, 2, [4]uint8{0, 1, 2, 3}, 16},
		{"AOROM bank 1", cartridge.MapperAOROM, 0, 0x01, [4]uint8{4, 5, 6, 7}, 0},
		{"BNROM bank 2", cartridge.MapperBNROM, 0, 2, [4]uint8{8, 9, 10, 11}, 0},
		{"ColorDreams PRG 1 CHR 3", cartridge.MapperColorDreams, 32, 0x31, [4]uint8{4, 5, 6, 7}, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMapper(t, testCart(tt.mapper, 128, tt.chrKB))
			m.Write(0x8000, tt.value)
			if got := prgBanks(m); got != tt.wantPRG {
				t.Errorf("PRG windows = %v, want %v", got, tt.wantPRG)
			}
			if got := m.ReadCHR(0); got != tt.wantCHR {
				t.Errorf("CHR bank at $0000 = %d, want %d", got, tt.wantCHR)
			}
		})
	}
}

func TestAOROM_SingleScreenSelect(t *testing.T) {
	m, host := newTestMapper(t, testCart(cartridge.MapperAOROM, 128, 0))
	if host.mirroring != cartridge.MirrorSingleScreen0 {
		t.Errorf("reset mirroring = %v, want single-screen-0", host.mirroring)
	}
	m.Write(0x8000, 0x10)
	if host.mirroring != cartridge.MirrorSingleScreen1 {
		t.Errorf("mirroring = %v, want single-screen-1", host.mirroring)
	}
}

func TestNINA001_Registers(t *testing.T) {
	m, _ := newTestMapper(t, testCart(cartridge.MapperNINA001, 64, 64))

	m.Write(0x7FFD, 1)
	m.Write(0x7FFE, 3)
	m.Write(0x7FFF, 5)

	if got := prgBanks(m); got != [4]uint8{4, 5, 6, 7} {
		t.Errorf("PRG windows = %v, want [4 5 6 7]", got)
	}
	if got := chrBanks(m); got != [8]uint8{12, 13, 14, 15, 20, 21, 22, 23} {
		t.Errorf("CHR windows = %v", got)
	}
	if m.ReadPRG(0x7FFE) != 3 {
		t.Error("register write should also land in PRG RAM")
	}
}

func TestNVRAM_FollowsBatteryRAM(t *testing.T) {
	cart := testCart(cartridge.MapperMMC1, 128, 8)
	if m, _ := newTestMapper(t, cart); m.NVRAM() != nil {
		t.Error("cartridge without battery returned NVRAM")
	}

	cart.PRGRAMSizeBattery = 0x2000
	m, _ := newTestMapper(t, cart)
	m.Write(0x6010, 0xAB)
	nv := m.NVRAM()
	if len(nv) != 0x2000 || nv[0x10] != 0xAB {
		t.Error("NVRAM does not alias PRG RAM")
	}

	m.Reset()
	if m.NVRAM()[0x10] != 0xAB {
		t.Error("Reset cleared NVRAM")
	}

	chrBattery := testCart(cartridge.MapperNROM, 32, 0)
	chrBattery.PRGRAMSize = 0
	chrBattery.CHRRAMSizeBattery = 0x2000
	cm, _ := newTestMapper(t, chrBattery)
	cm.WriteCHR(0x0005, 0x77)
	if cm.NVRAM()[5] != 0x77 {
		t.Error("NVRAM does not alias CHR RAM")
	}
}
