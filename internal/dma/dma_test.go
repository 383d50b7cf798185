package dma

import "testing"

// MockBus records reads and serves the low byte of the address
type MockBus struct {
	reads []uint16
}

func (m *MockBus) Read(address uint16) uint8 {
	m.reads = append(m.reads, address)
	return uint8(address)
}

type MockOAM struct {
	data []uint8
}

func (m *MockOAM) WriteOAM(value uint8) {
	m.data = append(m.data, value)
}

func TestStartOAM_ShouldCopyPageAndStall(t *testing.T) {
	bus := &MockBus{}
	oam := &MockOAM{}
	d := New(bus, oam)

	d.StartOAM(0x02)

	if len(oam.data) != 256 {
		t.Fatalf("copied %d bytes, want 256", len(oam.data))
	}
	for i, v := range oam.data {
		if v != uint8(i) {
			t.Fatalf("OAM byte %d = %#02x, want %#02x", i, v, uint8(i))
		}
	}
	if bus.reads[0] != 0x0200 || bus.reads[255] != 0x02FF {
		t.Errorf("read range %#04x-%#04x, want $0200-$02FF", bus.reads[0], bus.reads[255])
	}
	if d.Pending() != OAMCycles {
		t.Errorf("Pending() = %d, want %d", d.Pending(), OAMCycles)
	}
}

func TestRequestDMC_ShouldChargeByParity(t *testing.T) {
	tests := []struct {
		name     string
		oddCycle bool
		want     int
	}{
		{"odd cycle", true, 3},
		{"even cycle", false, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &MockBus{}
			d := New(bus, &MockOAM{})

			if got := d.RequestDMC(0xC0AB, tt.oddCycle); got != 0xAB {
				t.Errorf("RequestDMC returned %#02x, want 0xAB", got)
			}
			if d.Pending() != tt.want {
				t.Errorf("Pending() = %d, want %d", d.Pending(), tt.want)
			}
		})
	}
}

func TestTick_ShouldDrainStall(t *testing.T) {
	d := New(&MockBus{}, &MockOAM{})
	d.StartOAM(0)
	d.RequestDMC(0xC000, true)

	n := 0
	for d.Tick() {
		n++
	}
	if n != OAMCycles+3 {
		t.Errorf("drained %d cycles, want %d", n, OAMCycles+3)
	}
	if d.Pending() != 0 {
		t.Error("stall left after draining")
	}

	d.StartOAM(1)
	d.Reset()
	if d.Pending() != 0 || d.Tick() {
		t.Error("Reset should drop the stall")
	}

	if oam, dmc := d.Stats(); oam != 2 || dmc != 1 {
		t.Errorf("Stats() = %d, %d, want 2, 1", oam, dmc)
	}
}
