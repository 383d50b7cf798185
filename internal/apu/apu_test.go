package apu

import (
	"testing"

	"nescore/internal/region"
)

// MockSampleReader implements SampleReader for testing
type MockSampleReader struct {
	value     uint8
	addresses []uint16
	odd       []bool
}

func (m *MockSampleReader) RequestDMC(address uint16, oddCycle bool) uint8 {
	m.addresses = append(m.addresses, address)
	m.odd = append(m.odd, oddCycle)
	return m.value
}

func tickN(a *APU, n int) {
	for i := 0; i < n; i++ {
		a.Tick()
	}
}

func TestAPU_LengthCounter_LoadAndStatus(t *testing.T) {
	a := New()

	a.WriteRegister(0x4003, 0x08)
	if a.ReadStatus()&0x01 != 0 {
		t.Error("disabled channel loaded its length counter")
	}

	a.WriteRegister(0x4015, 0x0F)
	a.WriteRegister(0x4003, 0x08) // code 1: 254
	a.WriteRegister(0x4007, 0x00) // code 0: 10
	a.WriteRegister(0x400B, 0xF8) // code 31: 30
	a.WriteRegister(0x400F, 0x18) // code 3: 2

	if got := a.ReadStatus() & 0x0F; got != 0x0F {
		t.Errorf("status = %#02x, want all four length bits", got)
	}
	want := []uint8{254, 10, 30, 2}
	got := []uint8{a.pulse1.length.value, a.pulse2.length.value, a.triangle.length.value, a.noise.length.value}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("channel %d length = %d, want %d", i, got[i], want[i])
		}
	}

	a.WriteRegister(0x4015, 0x00)
	if a.ReadStatus()&0x0F != 0 {
		t.Error("disabling channels should clear their length counters")
	}
}

func TestAPU_FrameSequencer_HalfFramesClockLength(t *testing.T) {
	a := New()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4003, 0x00) // 10

	tickN(a, a.params.FrameCounter4[4])
	if a.pulse1.length.value != 8 {
		t.Errorf("length = %d after one 4-step sequence, want 8", a.pulse1.length.value)
	}

	a.WriteRegister(0x4000, 0x20) // halt
	tickN(a, a.params.FrameCounter4[4])
	if a.pulse1.length.value != 8 {
		t.Error("halted length counter was clocked")
	}
}

func TestAPU_FrameIRQ(t *testing.T) {
	tests := []struct {
		name    string
		params  *region.Parameters
		mode    uint8
		wantIRQ bool
	}{
		{"NTSC 4-step", region.Params(region.NTSC), 0x00, true},
		{"PAL 4-step", region.Params(region.PAL), 0x00, true},
		{"inhibited", region.Params(region.NTSC), 0x40, false},
		{"5-step never interrupts", region.Params(region.NTSC), 0x80, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			a.SetRegion(tt.params)
			a.WriteRegister(0x4017, tt.mode)

			irqAt := tt.params.FrameCounter4[3]
			tickN(a, irqAt-1)
			if a.FrameIRQ() {
				t.Fatal("IRQ raised early")
			}
			tickN(a, 1)
			if a.FrameIRQ() != tt.wantIRQ {
				t.Fatalf("FrameIRQ() = %v at cycle %d, want %v", a.FrameIRQ(), irqAt, tt.wantIRQ)
			}
			if !tt.wantIRQ {
				return
			}

			if a.ReadStatus()&0x40 == 0 {
				t.Error("status bit 6 not set")
			}
			if a.FrameIRQ() {
				t.Error("reading $4015 should acknowledge the frame IRQ")
			}
		})
	}
}

func TestAPU_FiveStepWrite_ShouldClockImmediately(t *testing.T) {
	a := New()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4003, 0x00)

	a.WriteRegister(0x4017, 0x80)
	if a.pulse1.length.value != 9 {
		t.Errorf("length = %d, want 9 after the immediate half frame", a.pulse1.length.value)
	}
}

func TestAPU_PulseOutput(t *testing.T) {
	a := New()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4000, 0xBF) // duty 50%, halt, constant volume 15
	a.WriteRegister(0x4002, 0x20)
	a.WriteRegister(0x4003, 0x08)

	seen := map[uint8]int{}
	for i := 0; i < 2000; i++ {
		a.Tick()
		seen[a.ChannelOutput(ChannelPulse1)]++
	}
	if len(seen) != 2 || seen[0] == 0 || seen[15] == 0 {
		t.Errorf("outputs = %v, want a mix of 0 and 15", seen)
	}

	// periods below 8 are muted
	a.WriteRegister(0x4002, 0x05)
	a.WriteRegister(0x4003, 0x08)
	for i := 0; i < 100; i++ {
		a.Tick()
		if a.ChannelOutput(ChannelPulse1) != 0 {
			t.Fatal("pulse with period < 8 is audible")
		}
	}
}

func TestPulse_SweepTarget(t *testing.T) {
	tests := []struct {
		name  string
		pulse pulse
		want  uint16
		muted bool
	}{
		{"add", pulse{period: 0x100, sweepShift: 1}, 0x180, false},
		{"pulse 2 negate", pulse{period: 0x100, sweepShift: 1, sweepNegate: true}, 0x080, false},
		{"pulse 1 negate", pulse{period: 0x100, sweepShift: 1, sweepNegate: true, onesComplement: true}, 0x07F, false},
		{"overflow mutes", pulse{period: 0x600, sweepShift: 1}, 0x900, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pulse.sweepTarget(); got != tt.want {
				t.Errorf("sweepTarget() = %#03x, want %#03x", got, tt.want)
			}
			if tt.pulse.muted() != tt.muted {
				t.Errorf("muted() = %v", tt.pulse.muted())
			}
		})
	}
}

func TestEnvelope_Decay(t *testing.T) {
	e := envelope{}
	e.write(0x02) // period 2, decaying
	e.start = true

	e.clock()
	if e.volume() != 15 {
		t.Fatalf("volume after start = %d", e.volume())
	}
	for i := 0; i < 3; i++ {
		e.clock()
	}
	if e.volume() != 14 {
		t.Errorf("volume = %d after one divider period, want 14", e.volume())
	}

	e.write(0x1A) // constant 10
	if e.volume() != 10 {
		t.Errorf("constant volume = %d", e.volume())
	}
}

func TestAPU_TriangleNeedsLinearCounter(t *testing.T) {
	a := New()
	a.WriteRegister(0x4015, 0x04)
	a.WriteRegister(0x400A, 0x10)
	a.WriteRegister(0x400B, 0x08)

	tickN(a, 1000)
	if a.triangle.position != 0 {
		t.Fatal("sequencer moved with a zero linear counter")
	}

	a.WriteRegister(0x4008, 0x7F)
	a.WriteRegister(0x400B, 0x08)
	tickN(a, a.params.FrameCounter4[0]+100)
	if a.triangle.position == 0 {
		t.Error("sequencer did not move after the linear counter was loaded")
	}
}

func TestAPU_NoiseLFSR(t *testing.T) {
	a := New()
	a.WriteRegister(0x4015, 0x08)
	a.WriteRegister(0x400C, 0x3F)
	a.WriteRegister(0x400E, 0x00)
	a.WriteRegister(0x400F, 0x08)

	if a.ChannelOutput(ChannelNoise) != 0 {
		t.Error("LFSR bit 0 starts set, output must be 0")
	}
	seen := map[uint16]bool{}
	for i := 0; i < 4000; i++ {
		a.Tick()
		seen[a.noise.shift] = true
		if a.noise.shift == 0 {
			t.Fatal("LFSR collapsed to zero")
		}
	}
	if len(seen) < 100 {
		t.Errorf("LFSR visited only %d states", len(seen))
	}
}

func TestAPU_DMC(t *testing.T) {
	a := New()
	reader := &MockSampleReader{value: 0xFF}
	a.SetSampleReader(reader)

	a.WriteRegister(0x4011, 0x40)
	if a.ChannelOutput(ChannelDMC) != 0x40 {
		t.Errorf("direct load = %d", a.ChannelOutput(ChannelDMC))
	}

	a.WriteRegister(0x4010, 0x8F) // IRQ, fastest rate
	a.WriteRegister(0x4012, 0x01) // $C040
	a.WriteRegister(0x4013, 0x01) // 17 bytes
	a.WriteRegister(0x4015, 0x10)
	if a.ReadStatus()&0x10 == 0 {
		t.Fatal("DMC not active after enable")
	}

	for i := 0; i < 17*8*60 && !a.DMCIRQ(); i++ {
		a.Tick()
	}
	if len(reader.addresses) != 17 {
		t.Fatalf("%d sample fetches, want 17", len(reader.addresses))
	}
	if reader.addresses[0] != 0xC040 || reader.addresses[16] != 0xC050 {
		t.Errorf("fetched %#04x..%#04x", reader.addresses[0], reader.addresses[16])
	}
	if !a.DMCIRQ() || a.ReadStatus()&0x90 != 0x80 {
		t.Error("finished sample should raise the DMC IRQ and clear bit 4")
	}
	if a.ChannelOutput(ChannelDMC) <= 0x40 {
		t.Error("all-ones samples should raise the output level")
	}

	a.WriteRegister(0x4015, 0x00)
	if a.DMCIRQ() {
		t.Error("writing $4015 should acknowledge the DMC IRQ")
	}
}

func TestAPU_DMCLoop(t *testing.T) {
	a := New()
	reader := &MockSampleReader{}
	a.SetSampleReader(reader)
	a.WriteRegister(0x4010, 0x4F)
	a.WriteRegister(0x4013, 0x00) // 1 byte
	a.WriteRegister(0x4015, 0x10)

	tickN(a, 54*8*4)
	if len(reader.addresses) < 3 {
		t.Errorf("looping sample fetched %d times", len(reader.addresses))
	}
	if a.ReadStatus()&0x10 == 0 || a.DMCIRQ() {
		t.Error("looping sample must stay active without IRQ")
	}
}

func TestAPU_Reset_ShouldSilence(t *testing.T) {
	a := New()
	a.WriteRegister(0x4015, 0x1F)
	a.WriteRegister(0x4003, 0x08)
	a.WriteRegister(0x4017, 0x80)

	a.Reset()
	if a.ReadStatus() != 0 {
		t.Error("reset left channels active")
	}
	if !a.fiveStep {
		t.Error("reset should keep the sequencer mode")
	}
}

func TestChannel_String(t *testing.T) {
	if ChannelDMC.String() != "dmc" || Channel(9).String() != "channel(9)" {
		t.Error("unexpected channel names")
	}
}
