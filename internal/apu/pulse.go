package apu

var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

// pulse is one of the two square wave channels
type pulse struct {
	// onesComplement is set for pulse 1, whose sweep negates with an extra -1
	onesComplement bool

	duty     uint8
	position uint8
	period   uint16
	timer    uint16

	sweepEnabled bool
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepReload  bool
	sweepDivider uint8

	length   lengthCounter
	envelope envelope
}

func (p *pulse) write(register uint16, value uint8) {
	switch register {
	case 0:
		p.duty = value >> 6
		p.length.halt = value&0x20 != 0
		p.envelope.write(value)
	case 1:
		p.sweepEnabled = value&0x80 != 0
		p.sweepPeriod = value >> 4 & 0x07
		p.sweepNegate = value&0x08 != 0
		p.sweepShift = value & 0x07
		p.sweepReload = true
	case 2:
		p.period = p.period&0x0700 | uint16(value)
	case 3:
		p.period = p.period&0x00FF | uint16(value&0x07)<<8
		p.length.load(value >> 3)
		p.envelope.start = true
		p.position = 0
	}
}

// tickTimer runs on every second CPU cycle
func (p *pulse) tickTimer() {
	if p.timer == 0 {
		p.timer = p.period
		p.position = (p.position + 1) & 0x07
	} else {
		p.timer--
	}
}

func (p *pulse) sweepTarget() uint16 {
	change := p.period >> p.sweepShift
	if !p.sweepNegate {
		return p.period + change
	}
	if p.onesComplement {
		change++
	}
	if change > p.period {
		return 0
	}
	return p.period - change
}

func (p *pulse) muted() bool {
	return p.period < 8 || p.sweepTarget() > 0x7FF
}

func (p *pulse) clockSweep() {
	if p.sweepDivider == 0 && p.sweepEnabled && p.sweepShift > 0 && !p.muted() {
		p.period = p.sweepTarget()
	}
	if p.sweepDivider == 0 || p.sweepReload {
		p.sweepDivider = p.sweepPeriod
		p.sweepReload = false
	} else {
		p.sweepDivider--
	}
}

func (p *pulse) output() uint8 {
	if !p.length.active() || p.muted() || dutyTable[p.duty][p.position] == 0 {
		return 0
	}
	return p.envelope.volume()
}
