package apu

// SampleReader fetches DMC sample bytes from CPU memory. oddCycle reports the
// parity of the CPU cycle the fetch lands on.
type SampleReader interface {
	RequestDMC(address uint16, oddCycle bool) uint8
}

type dmc struct {
	irqEnabled bool
	irq        bool
	loop       bool
	rate       uint16
	timer      uint16

	level uint8 // 7-bit output

	sampleAddress uint16
	sampleLength  uint16
	address       uint16
	remaining     uint16

	buffer      uint8
	bufferEmpty bool

	shift         uint8
	bitsRemaining uint8
	silence       bool
}

func (d *dmc) write(register uint16, value uint8, rates *[16]uint16) {
	switch register {
	case 0:
		d.irqEnabled = value&0x80 != 0
		if !d.irqEnabled {
			d.irq = false
		}
		d.loop = value&0x40 != 0
		d.rate = rates[value&0x0F]
	case 1:
		d.level = value & 0x7F
	case 2:
		d.sampleAddress = 0xC000 | uint16(value)<<6
	case 3:
		d.sampleLength = uint16(value)<<4 | 1
	}
}

func (d *dmc) restart() {
	d.address = d.sampleAddress
	d.remaining = d.sampleLength
}

func (d *dmc) setEnabled(on bool) {
	d.irq = false
	if !on {
		d.remaining = 0
	} else if d.remaining == 0 {
		d.restart()
	}
}

// fill loads the sample buffer once it is empty and bytes remain
func (d *dmc) fill(reader SampleReader, oddCycle bool) {
	if !d.bufferEmpty || d.remaining == 0 || reader == nil {
		return
	}
	d.buffer = reader.RequestDMC(d.address, oddCycle)
	d.bufferEmpty = false

	d.address++
	if d.address == 0 {
		d.address = 0x8000
	}
	d.remaining--
	if d.remaining == 0 {
		if d.loop {
			d.restart()
		} else if d.irqEnabled {
			d.irq = true
		}
	}
}

func (d *dmc) tickTimer() {
	if d.timer > 0 {
		d.timer--
		return
	}
	d.timer = d.rate - 1

	if !d.silence {
		if d.shift&0x01 != 0 {
			if d.level <= 125 {
				d.level += 2
			}
		} else if d.level >= 2 {
			d.level -= 2
		}
	}
	d.shift >>= 1

	if d.bitsRemaining > 0 {
		d.bitsRemaining--
	}
	if d.bitsRemaining == 0 {
		d.bitsRemaining = 8
		if d.bufferEmpty {
			d.silence = true
		} else {
			d.silence = false
			d.shift = d.buffer
			d.bufferEmpty = true
		}
	}
}

func (d *dmc) output() uint8 {
	return d.level
}
