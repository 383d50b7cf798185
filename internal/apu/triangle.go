package apu

var triangleTable = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

type triangle struct {
	control       bool // also halts the length counter
	linearReload  uint8
	linearCounter uint8
	reloadFlag    bool

	period   uint16
	timer    uint16
	position uint8

	length lengthCounter
}

func (t *triangle) write(register uint16, value uint8) {
	switch register {
	case 0:
		t.control = value&0x80 != 0
		t.length.halt = t.control
		t.linearReload = value & 0x7F
	case 2:
		t.period = t.period&0x0700 | uint16(value)
	case 3:
		t.period = t.period&0x00FF | uint16(value&0x07)<<8
		t.length.load(value >> 3)
		t.reloadFlag = true
	}
}

// tickTimer runs on every CPU cycle. The sequencer only moves while both
// counters are non-zero.
func (t *triangle) tickTimer() {
	if t.timer == 0 {
		t.timer = t.period
		if t.length.active() && t.linearCounter > 0 {
			t.position = (t.position + 1) & 0x1F
		}
	} else {
		t.timer--
	}
}

func (t *triangle) clockLinear() {
	if t.reloadFlag {
		t.linearCounter = t.linearReload
	} else if t.linearCounter > 0 {
		t.linearCounter--
	}
	if !t.control {
		t.reloadFlag = false
	}
}

func (t *triangle) output() uint8 {
	return triangleTable[t.position]
}
