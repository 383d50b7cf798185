package cpu

import "fmt"

// Instruction represents one 6502 opcode
type Instruction struct {
	Name   string
	Opcode uint8
	Bytes  uint8
	Cycles uint8
	Mode   AddressingMode

	// PageCycle adds a cycle when an indexed read crosses a page
	PageCycle bool

	// Official is false for undocumented opcodes
	Official bool

	exec func(c *CPU, address uint16) uint8
}

var instructions [256]Instruction

// Lookup returns the table entry for an opcode
func Lookup(opcode uint8) Instruction {
	return instructions[opcode]
}

type opFunc = func(c *CPU, address uint16) uint8

func def(opcode uint8, name string, exec opFunc, mode AddressingMode, cycles uint8, pageCycle bool) {
	instructions[opcode] = Instruction{
		Name:      name,
		Opcode:    opcode,
		Bytes:     operandBytes[mode],
		Cycles:    cycles,
		Mode:      mode,
		PageCycle: pageCycle,
		Official:  true,
		exec:      exec,
	}
}

// undoc registers an undocumented opcode
func undoc(opcode uint8, name string, exec opFunc, mode AddressingMode, cycles uint8, pageCycle bool) {
	def(opcode, name, exec, mode, cycles, pageCycle)
	instructions[opcode].Official = false
}

// group registers the eight usual addressing modes of an ALU instruction
func group(name string, exec opFunc, imm, zp, zpx, abs, abx, aby, izx, izy uint8) {
	def(imm, name, exec, Immediate, 2, false)
	def(zp, name, exec, ZeroPage, 3, false)
	def(zpx, name, exec, ZeroPageX, 4, false)
	def(abs, name, exec, Absolute, 4, false)
	def(abx, name, exec, AbsoluteX, 4, true)
	def(aby, name, exec, AbsoluteY, 4, true)
	def(izx, name, exec, IndexedIndirect, 6, false)
	def(izy, name, exec, IndirectIndexed, 5, true)
}

// rmw registers the five addressing modes of a read-modify-write instruction
func rmw(name string, exec opFunc, zp, zpx, abs, abx uint8) {
	def(zp, name, exec, ZeroPage, 5, false)
	def(zpx, name, exec, ZeroPageX, 6, false)
	def(abs, name, exec, Absolute, 6, false)
	def(abx, name, exec, AbsoluteX, 7, false)
}

// combo registers the seven addressing modes of the undocumented
// read-modify-write combinations (SLO, RLA, SRE, RRA, DCP, ISB)
func combo(name string, exec opFunc, base uint8) {
	undoc(base+0x03, name, exec, IndexedIndirect, 8, false)
	undoc(base+0x07, name, exec, ZeroPage, 5, false)
	undoc(base+0x0F, name, exec, Absolute, 6, false)
	undoc(base+0x13, name, exec, IndirectIndexed, 8, false)
	undoc(base+0x17, name, exec, ZeroPageX, 6, false)
	undoc(base+0x1B, name, exec, AbsoluteY, 7, false)
	undoc(base+0x1F, name, exec, AbsoluteX, 7, false)
}

func init() {
	// Load/Store
	group("LDA", (*CPU).lda, 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1)
	def(0xA2, "LDX", (*CPU).ldx, Immediate, 2, false)
	def(0xA6, "LDX", (*CPU).ldx, ZeroPage, 3, false)
	def(0xB6, "LDX", (*CPU).ldx, ZeroPageY, 4, false)
	def(0xAE, "LDX", (*CPU).ldx, Absolute, 4, false)
	def(0xBE, "LDX", (*CPU).ldx, AbsoluteY, 4, true)
	def(0xA0, "LDY", (*CPU).ldy, Immediate, 2, false)
	def(0xA4, "LDY", (*CPU).ldy, ZeroPage, 3, false)
	def(0xB4, "LDY", (*CPU).ldy, ZeroPageX, 4, false)
	def(0xAC, "LDY", (*CPU).ldy, Absolute, 4, false)
	def(0xBC, "LDY", (*CPU).ldy, AbsoluteX, 4, true)

	def(0x85, "STA", (*CPU).sta, ZeroPage, 3, false)
	def(0x95, "STA", (*CPU).sta, ZeroPageX, 4, false)
	def(0x8D, "STA", (*CPU).sta, Absolute, 4, false)
	def(0x9D, "STA", (*CPU).sta, AbsoluteX, 5, false)
	def(0x99, "STA", (*CPU).sta, AbsoluteY, 5, false)
	def(0x81, "STA", (*CPU).sta, IndexedIndirect, 6, false)
	def(0x91, "STA", (*CPU).sta, IndirectIndexed, 6, false)
	def(0x86, "STX", (*CPU).stx, ZeroPage, 3, false)
	def(0x96, "STX", (*CPU).stx, ZeroPageY, 4, false)
	def(0x8E, "STX", (*CPU).stx, Absolute, 4, false)
	def(0x84, "STY", (*CPU).sty, ZeroPage, 3, false)
	def(0x94, "STY", (*CPU).sty, ZeroPageX, 4, false)
	def(0x8C, "STY", (*CPU).sty, Absolute, 4, false)

	// Arithmetic and logic
	group("ADC", (*CPU).adc, 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71)
	group("SBC", (*CPU).sbc, 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1)
	group("AND", (*CPU).and, 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31)
	group("ORA", (*CPU).ora, 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11)
	group("EOR", (*CPU).eor, 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51)
	group("CMP", (*CPU).cmp, 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1)
	def(0xE0, "CPX", (*CPU).cpx, Immediate, 2, false)
	def(0xE4, "CPX", (*CPU).cpx, ZeroPage, 3, false)
	def(0xEC, "CPX", (*CPU).cpx, Absolute, 4, false)
	def(0xC0, "CPY", (*CPU).cpy, Immediate, 2, false)
	def(0xC4, "CPY", (*CPU).cpy, ZeroPage, 3, false)
	def(0xCC, "CPY", (*CPU).cpy, Absolute, 4, false)
	def(0x24, "BIT", (*CPU).bit, ZeroPage, 3, false)
	def(0x2C, "BIT", (*CPU).bit, Absolute, 4, false)

	// Shifts, increments and decrements
	rmw("ASL", (*CPU).asl, 0x06, 0x16, 0x0E, 0x1E)
	rmw("LSR", (*CPU).lsr, 0x46, 0x56, 0x4E, 0x5E)
	rmw("ROL", (*CPU).rol, 0x26, 0x36, 0x2E, 0x3E)
	rmw("ROR", (*CPU).ror, 0x66, 0x76, 0x6E, 0x7E)
	rmw("INC", (*CPU).inc, 0xE6, 0xF6, 0xEE, 0xFE)
	rmw("DEC", (*CPU).dec, 0xC6, 0xD6, 0xCE, 0xDE)
	def(0x0A, "ASL", (*CPU).aslA, Accumulator, 2, false)
	def(0x4A, "LSR", (*CPU).lsrA, Accumulator, 2, false)
	def(0x2A, "ROL", (*CPU).rolA, Accumulator, 2, false)
	def(0x6A, "ROR", (*CPU).rorA, Accumulator, 2, false)

	// Register transfers and counters
	def(0xE8, "INX", (*CPU).inx, Implied, 2, false)
	def(0xCA, "DEX", (*CPU).dex, Implied, 2, false)
	def(0xC8, "INY", (*CPU).iny, Implied, 2, false)
	def(0x88, "DEY", (*CPU).dey, Implied, 2, false)
	def(0xAA, "TAX", (*CPU).tax, Implied, 2, false)
	def(0x8A, "TXA", (*CPU).txa, Implied, 2, false)
	def(0xA8, "TAY", (*CPU).tay, Implied, 2, false)
	def(0x98, "TYA", (*CPU).tya, Implied, 2, false)
	def(0xBA, "TSX", (*CPU).tsx, Implied, 2, false)
	def(0x9A, "TXS", (*CPU).txs, Implied, 2, false)

	// Stack
	def(0x48, "PHA", (*CPU).pha, Implied, 3, false)
	def(0x08, "PHP", (*CPU).php, Implied, 3, false)
	def(0x68, "PLA", (*CPU).pla, Implied, 4, false)
	def(0x28, "PLP", (*CPU).plp, Implied, 4, false)

	// Flags
	def(0x18, "CLC", (*CPU).clc, Implied, 2, false)
	def(0x38, "SEC", (*CPU).sec, Implied, 2, false)
	def(0x58, "CLI", (*CPU).cli, Implied, 2, false)
	def(0x78, "SEI", (*CPU).sei, Implied, 2, false)
	def(0xB8, "CLV", (*CPU).clv, Implied, 2, false)
	def(0xD8, "CLD", (*CPU).cld, Implied, 2, false)
	def(0xF8, "SED", (*CPU).sed, Implied, 2, false)

	// Jumps, calls and branches
	def(0x4C, "JMP", (*CPU).jmp, Absolute, 3, false)
	def(0x6C, "JMP", (*CPU).jmp, Indirect, 5, false)
	def(0x20, "JSR", (*CPU).jsr, Absolute, 6, false)
	def(0x60, "RTS", (*CPU).rts, Implied, 6, false)
	def(0x40, "RTI", (*CPU).rti, Implied, 6, false)
	def(0x00, "BRK", (*CPU).brk, Implied, 7, false)
	def(0x90, "BCC", (*CPU).bcc, Relative, 2, false)
	def(0xB0, "BCS", (*CPU).bcs, Relative, 2, false)
	def(0xD0, "BNE", (*CPU).bne, Relative, 2, false)
	def(0xF0, "BEQ", (*CPU).beq, Relative, 2, false)
	def(0x10, "BPL", (*CPU).bpl, Relative, 2, false)
	def(0x30, "BMI", (*CPU).bmi, Relative, 2, false)
	def(0x50, "BVC", (*CPU).bvc, Relative, 2, false)
	def(0x70, "BVS", (*CPU).bvs, Relative, 2, false)
	def(0xEA, "NOP", (*CPU).nop, Implied, 2, false)

	// Undocumented: stable combinations
	combo("SLO", (*CPU).slo, 0x00)
	combo("RLA", (*CPU).rla, 0x20)
	combo("SRE", (*CPU).sre, 0x40)
	combo("RRA", (*CPU).rra, 0x60)
	combo("DCP", (*CPU).dcp, 0xC0)
	combo("ISB", (*CPU).isb, 0xE0)

	undoc(0x83, "SAX", (*CPU).sax, IndexedIndirect, 6, false)
	undoc(0x87, "SAX", (*CPU).sax, ZeroPage, 3, false)
	undoc(0x8F, "SAX", (*CPU).sax, Absolute, 4, false)
	undoc(0x97, "SAX", (*CPU).sax, ZeroPageY, 4, false)

	undoc(0xA3, "LAX", (*CPU).lax, IndexedIndirect, 6, false)
	undoc(0xA7, "LAX", (*CPU).lax, ZeroPage, 3, false)
	undoc(0xAF, "LAX", (*CPU).lax, Absolute, 4, false)
	undoc(0xB3, "LAX", (*CPU).lax, IndirectIndexed, 5, true)
	undoc(0xB7, "LAX", (*CPU).lax, ZeroPageY, 4, false)
	undoc(0xBF, "LAX", (*CPU).lax, AbsoluteY, 4, true)
	undoc(0xAB, "LAX", (*CPU).lax, Immediate, 2, false)

	undoc(0x0B, "ANC", (*CPU).anc, Immediate, 2, false)
	undoc(0x2B, "ANC", (*CPU).anc, Immediate, 2, false)
	undoc(0x4B, "ALR", (*CPU).alr, Immediate, 2, false)
	undoc(0x6B, "ARR", (*CPU).arr, Immediate, 2, false)
	undoc(0xCB, "AXS", (*CPU).axs, Immediate, 2, false)
	undoc(0xEB, "SBC", (*CPU).sbc, Immediate, 2, false)

	// Undocumented NOPs
	for _, op := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		undoc(op, "NOP", (*CPU).nop, Implied, 2, false)
	}
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		undoc(op, "NOP", (*CPU).nopRead, Immediate, 2, false)
	}
	for _, op := range []uint8{0x04, 0x44, 0x64} {
		undoc(op, "NOP", (*CPU).nopRead, ZeroPage, 3, false)
	}
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		undoc(op, "NOP", (*CPU).nopRead, ZeroPageX, 4, false)
	}
	undoc(0x0C, "NOP", (*CPU).nopRead, Absolute, 4, false)
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		undoc(op, "NOP", (*CPU).nopRead, AbsoluteX, 4, true)
	}

	// Unstable opcodes run as NOPs with their documented length and timing
	undoc(0x8B, "XAA", (*CPU).nop, Immediate, 2, false)
	undoc(0x93, "AHX", (*CPU).nop, IndirectIndexed, 6, false)
	undoc(0x9F, "AHX", (*CPU).nop, AbsoluteY, 5, false)
	undoc(0x9B, "TAS", (*CPU).nop, AbsoluteY, 5, false)
	undoc(0x9C, "SHY", (*CPU).nop, AbsoluteX, 5, false)
	undoc(0x9E, "SHX", (*CPU).nop, AbsoluteY, 5, false)
	undoc(0xBB, "LAS", (*CPU).nop, AbsoluteY, 4, true)

	// JAM halts a real CPU; here it is a single byte NOP
	for _, op := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		undoc(op, "JAM", (*CPU).nop, Implied, 2, false)
	}

	for i, in := range instructions {
		if in.exec == nil {
			panic(fmt.Sprintf("cpu: opcode %02X missing from the instruction table", i))
		}
	}
}
