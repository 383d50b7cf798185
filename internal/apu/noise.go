package apu

type noise struct {
	shortMode bool
	period    uint16
	timer     uint16
	shift     uint16 // 15-bit LFSR

	length   lengthCounter
	envelope envelope
}

func (n *noise) write(register uint16, value uint8, periods *[16]uint16) {
	switch register {
	case 0:
		n.length.halt = value&0x20 != 0
		n.envelope.write(value)
	case 2:
		n.shortMode = value&0x80 != 0
		n.period = periods[value&0x0F]
	case 3:
		n.length.load(value >> 3)
		n.envelope.start = true
	}
}

func (n *noise) tickTimer() {
	if n.timer > 0 {
		n.timer--
		return
	}
	n.timer = n.period - 1

	tap := uint16(1)
	if n.shortMode {
		tap = 6
	}
	feedback := (n.shift ^ n.shift>>tap) & 0x01
	n.shift = n.shift>>1 | feedback<<14
}

func (n *noise) output() uint8 {
	if !n.length.active() || n.shift&0x01 != 0 {
		return 0
	}
	return n.envelope.volume()
}
