package apu

// lengthTable holds the length counter reload values indexed by the 5-bit
// code written to bits 3-7 of the fourth channel register
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

// lengthCounter silences a channel after a programmed number of half frames
type lengthCounter struct {
	enabled bool
	halt    bool
	value   uint8
}

func (l *lengthCounter) load(code uint8) {
	if l.enabled {
		l.value = lengthTable[code&0x1F]
	}
}

func (l *lengthCounter) setEnabled(on bool) {
	l.enabled = on
	if !on {
		l.value = 0
	}
}

func (l *lengthCounter) clock() {
	if !l.halt && l.value > 0 {
		l.value--
	}
}

func (l *lengthCounter) active() bool {
	return l.value > 0
}

// envelope generates a decaying volume, or a constant one
type envelope struct {
	start    bool
	loop     bool
	constant bool
	period   uint8 // also the constant volume
	divider  uint8
	decay    uint8
}

// write decodes bits 0-5 of $4000/$4004/$400C
func (e *envelope) write(value uint8) {
	e.loop = value&0x20 != 0
	e.constant = value&0x10 != 0
	e.period = value & 0x0F
}

func (e *envelope) clock() {
	if e.start {
		e.start = false
		e.decay = 15
		e.divider = e.period
		return
	}
	if e.divider > 0 {
		e.divider--
		return
	}
	e.divider = e.period
	if e.decay > 0 {
		e.decay--
	} else if e.loop {
		e.decay = 15
	}
}

func (e *envelope) volume() uint8 {
	if e.constant {
		return e.period
	}
	return e.decay
}
