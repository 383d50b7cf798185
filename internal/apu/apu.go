// Package apu implements the Audio Processing Unit for the NES.
package apu

import (
	"fmt"

	"nescore/internal/region"
)

// Channel identifies one of the five sound generators
type Channel int

const (
	ChannelPulse1 Channel = iota
	ChannelPulse2
	ChannelTriangle
	ChannelNoise
	ChannelDMC

	ChannelCount = 5
)

func (c Channel) String() string {
	switch c {
	case ChannelPulse1:
		return "pulse1"
	case ChannelPulse2:
		return "pulse2"
	case ChannelTriangle:
		return "triangle"
	case ChannelNoise:
		return "noise"
	case ChannelDMC:
		return "dmc"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// APU represents the NES Audio Processing Unit
type APU struct {
	pulse1   pulse
	pulse2   pulse
	triangle triangle
	noise    noise
	dmc      dmc

	// Frame sequencer
	fiveStep   bool
	irqInhibit bool
	frameIRQ   bool
	frameCycle int
	frameStep  int

	params *region.Parameters
	reader SampleReader

	cycles uint64
}

// New creates an APU with NTSC timing
func New() *APU {
	a := &APU{params: region.Params(region.NTSC)}
	a.Power()
	return a
}

// SetSampleReader attaches the DMA unit serving DMC fetches
func (a *APU) SetSampleReader(reader SampleReader) {
	a.reader = reader
}

// SetRegion switches the frame sequencer and period tables
func (a *APU) SetRegion(params *region.Parameters) {
	a.params = params
}

// Power clears every register as after power on
func (a *APU) Power() {
	a.pulse1 = pulse{onesComplement: true}
	a.pulse2 = pulse{}
	a.triangle = triangle{}
	a.noise = noise{shift: 1, period: a.params.NoisePeriods[0]}
	a.dmc = dmc{
		rate:          a.params.DMCRates[0],
		sampleAddress: 0xC000,
		sampleLength:  1,
		bufferEmpty:   true,
		bitsRemaining: 8,
	}

	a.fiveStep = false
	a.irqInhibit = false
	a.frameIRQ = false
	a.frameCycle = 0
	a.frameStep = 0
	a.cycles = 0
}

// Reset silences all channels as a write of 0 to $4015 does, and restarts
// the frame sequencer in its current mode
func (a *APU) Reset() {
	a.WriteRegister(0x4015, 0)
	a.frameIRQ = false
	a.frameCycle = 0
	a.frameStep = 0
	a.triangle.position = 0
	a.dmc.level &= 0x01
}

// WriteRegister handles CPU writes to $4000-$4013, $4015 and $4017
func (a *APU) WriteRegister(address uint16, value uint8) {
	switch {
	case address >= 0x4000 && address <= 0x4003:
		a.pulse1.write(address&0x03, value)
	case address >= 0x4004 && address <= 0x4007:
		a.pulse2.write(address&0x03, value)
	case address >= 0x4008 && address <= 0x400B:
		a.triangle.write(address&0x03, value)
	case address >= 0x400C && address <= 0x400F:
		a.noise.write(address&0x03, value, &a.params.NoisePeriods)
	case address >= 0x4010 && address <= 0x4013:
		a.dmc.write(address&0x03, value, &a.params.DMCRates)
	case address == 0x4015:
		a.pulse1.length.setEnabled(value&0x01 != 0)
		a.pulse2.length.setEnabled(value&0x02 != 0)
		a.triangle.length.setEnabled(value&0x04 != 0)
		a.noise.length.setEnabled(value&0x08 != 0)
		a.dmc.setEnabled(value&0x10 != 0)
	case address == 0x4017:
		a.fiveStep = value&0x80 != 0
		a.irqInhibit = value&0x40 != 0
		if a.irqInhibit {
			a.frameIRQ = false
		}
		a.frameCycle = 0
		a.frameStep = 0
		if a.fiveStep {
			a.quarterFrame()
			a.halfFrame()
		}
	}
}

// ReadStatus serves $4015 and acknowledges the frame IRQ
func (a *APU) ReadStatus() uint8 {
	var status uint8
	if a.pulse1.length.active() {
		status |= 0x01
	}
	if a.pulse2.length.active() {
		status |= 0x02
	}
	if a.triangle.length.active() {
		status |= 0x04
	}
	if a.noise.length.active() {
		status |= 0x08
	}
	if a.dmc.remaining > 0 {
		status |= 0x10
	}
	if a.frameIRQ {
		status |= 0x40
	}
	if a.dmc.irq {
		status |= 0x80
	}
	a.frameIRQ = false
	return status
}

// Tick advances the APU by one CPU cycle
func (a *APU) Tick() {
	a.stepFrameSequencer()

	a.triangle.tickTimer()
	a.noise.tickTimer()
	a.dmc.fill(a.reader, a.cycles&1 == 1)
	a.dmc.tickTimer()
	if a.cycles&1 == 0 {
		a.pulse1.tickTimer()
		a.pulse2.tickTimer()
	}
	a.cycles++
}

func (a *APU) stepFrameSequencer() {
	a.frameCycle++

	steps := &a.params.FrameCounter4
	if a.fiveStep {
		steps = &a.params.FrameCounter5
	}
	if a.frameCycle != steps[a.frameStep] {
		return
	}

	if a.fiveStep {
		switch a.frameStep {
		case 0, 2:
			a.quarterFrame()
		case 1, 4:
			a.quarterFrame()
			a.halfFrame()
		}
	} else {
		switch a.frameStep {
		case 0, 2:
			a.quarterFrame()
		case 1:
			a.quarterFrame()
			a.halfFrame()
		case 3:
			a.quarterFrame()
			a.halfFrame()
			a.raiseFrameIRQ()
		case 4:
			a.raiseFrameIRQ()
		}
	}

	a.frameStep++
	if a.frameStep == 5 {
		a.frameStep = 0
		a.frameCycle = 0
	}
}

func (a *APU) raiseFrameIRQ() {
	if !a.irqInhibit {
		a.frameIRQ = true
	}
}

// quarterFrame clocks the envelopes and the triangle linear counter
func (a *APU) quarterFrame() {
	a.pulse1.envelope.clock()
	a.pulse2.envelope.clock()
	a.noise.envelope.clock()
	a.triangle.clockLinear()
}

// halfFrame clocks the length counters and sweep units
func (a *APU) halfFrame() {
	a.pulse1.length.clock()
	a.pulse2.length.clock()
	a.triangle.length.clock()
	a.noise.length.clock()
	a.pulse1.clockSweep()
	a.pulse2.clockSweep()
}

// FrameIRQ reports the frame sequencer interrupt line
func (a *APU) FrameIRQ() bool {
	return a.frameIRQ
}

// DMCIRQ reports the DMC interrupt line
func (a *APU) DMCIRQ() bool {
	return a.dmc.irq
}

// ChannelOutput returns the current amplitude of a channel: 0-15 for the
// pulse, triangle and noise channels, 0-127 for the DMC
func (a *APU) ChannelOutput(c Channel) uint8 {
	switch c {
	case ChannelPulse1:
		return a.pulse1.output()
	case ChannelPulse2:
		return a.pulse2.output()
	case ChannelTriangle:
		return a.triangle.output()
	case ChannelNoise:
		return a.noise.output()
	case ChannelDMC:
		return a.dmc.output()
	}
	panic(fmt.Sprintf("apu: invalid channel %d", int(c)))
}

// Outputs returns the amplitudes of all channels, indexed by Channel
func (a *APU) Outputs() [ChannelCount]uint8 {
	return [ChannelCount]uint8{
		a.pulse1.output(),
		a.pulse2.output(),
		a.triangle.output(),
		a.noise.output(),
		a.dmc.output(),
	}
}
