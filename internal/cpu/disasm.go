package cpu

import "fmt"

// Disassemble formats the instruction at address using read to fetch its
// bytes. read must not have side effects. It returns the text and the
// instruction length.
func Disassemble(read func(address uint16) uint8, address uint16) (string, int) {
	in := instructions[read(address)]
	lo := read(address + 1)
	hi := read(address + 2)
	abs := uint16(hi)<<8 | uint16(lo)

	name := in.Name
	if !in.Official {
		name = "*" + name
	}

	var operand string
	switch in.Mode {
	case Accumulator:
		operand = "A"
	case Immediate:
		operand = fmt.Sprintf("#$%02X", lo)
	case ZeroPage:
		operand = fmt.Sprintf("$%02X", lo)
	case ZeroPageX:
		operand = fmt.Sprintf("$%02X,X", lo)
	case ZeroPageY:
		operand = fmt.Sprintf("$%02X,Y", lo)
	case Relative:
		operand = fmt.Sprintf("$%04X", address+2+uint16(int8(lo)))
	case Absolute:
		operand = fmt.Sprintf("$%04X", abs)
	case AbsoluteX:
		operand = fmt.Sprintf("$%04X,X", abs)
	case AbsoluteY:
		operand = fmt.Sprintf("$%04X,Y", abs)
	case Indirect:
		operand = fmt.Sprintf("($%04X)", abs)
	case IndexedIndirect:
		operand = fmt.Sprintf("($%02X,X)", lo)
	case IndirectIndexed:
		operand = fmt.Sprintf("($%02X),Y", lo)
	}

	if operand == "" {
		return name, int(in.Bytes)
	}
	return name + " " + operand, int(in.Bytes)
}
