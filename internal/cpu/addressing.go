package cpu

// AddressingMode selects how an instruction finds its operand
type AddressingMode uint8

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

// operandBytes is the instruction length for each mode, opcode included
var operandBytes = [...]uint8{
	Implied:         1,
	Accumulator:     1,
	Immediate:       2,
	ZeroPage:        2,
	ZeroPageX:       2,
	ZeroPageY:       2,
	Relative:        2,
	Absolute:        3,
	AbsoluteX:       3,
	AbsoluteY:       3,
	Indirect:        3,
	IndexedIndirect: 2,
	IndirectIndexed: 2,
}

func pagesDiffer(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// operand reads the operand bytes after the opcode, leaves PC on the next
// instruction and returns the effective address. The flag reports an index
// that crossed a page.
func (c *CPU) operand(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		return 0, false

	case Immediate:
		address := c.PC
		c.PC++
		return address, false

	case ZeroPage:
		address := uint16(c.memory.Read(c.PC))
		c.PC++
		return address, false

	case ZeroPageX:
		address := uint16(c.memory.Read(c.PC) + c.X)
		c.PC++
		return address, false

	case ZeroPageY:
		address := uint16(c.memory.Read(c.PC) + c.Y)
		c.PC++
		return address, false

	case Relative:
		offset := int8(c.memory.Read(c.PC))
		c.PC++
		return c.PC + uint16(offset), false

	case Absolute:
		address := c.read16(c.PC)
		c.PC += 2
		return address, false

	case AbsoluteX:
		base := c.read16(c.PC)
		c.PC += 2
		address := base + uint16(c.X)
		return address, pagesDiffer(base, address)

	case AbsoluteY:
		base := c.read16(c.PC)
		c.PC += 2
		address := base + uint16(c.Y)
		return address, pagesDiffer(base, address)

	case Indirect:
		pointer := c.read16(c.PC)
		c.PC += 2
		return c.read16Wrap(pointer), false

	case IndexedIndirect:
		pointer := uint16(c.memory.Read(c.PC) + c.X)
		c.PC++
		return c.read16Wrap(pointer), false

	case IndirectIndexed:
		pointer := uint16(c.memory.Read(c.PC))
		c.PC++
		base := c.read16Wrap(pointer)
		address := base + uint16(c.Y)
		return address, pagesDiffer(base, address)
	}

	panic("cpu: unknown addressing mode")
}
