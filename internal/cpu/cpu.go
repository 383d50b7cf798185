// Package cpu implements the 6502 CPU emulation for the NES.
package cpu

import "fmt"

// Status register bit masks
const (
	FlagC uint8 = 0x01 // carry
	FlagZ uint8 = 0x02 // zero
	FlagI uint8 = 0x04 // interrupt disable
	FlagD uint8 = 0x08 // decimal, stored but ignored by the ALU
	FlagB uint8 = 0x10 // only exists on the stack
	FlagU uint8 = 0x20 // always set
	FlagV uint8 = 0x40 // overflow
	FlagN uint8 = 0x80 // negative
)

const (
	stackBase   = 0x0100
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE

	interruptCycles = 7
)

// Interrupt is a bit set of pending interrupt sources
type Interrupt uint8

const (
	InterruptReset Interrupt = 1 << iota
	InterruptNMI
	InterruptIRQAPU
	InterruptIRQDMC
	InterruptIRQMapper

	// the IRQ sources share one line
	interruptIRQ = InterruptIRQAPU | InterruptIRQDMC | InterruptIRQMapper
)

func (i Interrupt) String() string {
	if i == 0 {
		return "none"
	}
	s := ""
	for bit, name := range []string{"RESET", "NMI", "IRQ_APU", "IRQ_DMC", "IRQ_MAPPER"} {
		if i&(1<<bit) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	return s
}

// Memory is the CPU bus
type Memory interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU represents the 6502 processor used in the NES
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16
	P  uint8

	// Cycles is the number of cycles run since power on
	Cycles uint64

	pending Interrupt
	memory  Memory
}

// New creates a CPU on the given bus. Call Power before stepping it.
func New(memory Memory) *CPU {
	return &CPU{memory: memory, SP: 0xFD, P: 0x34}
}

// Power loads the power-up state: A, X and Y cleared, SP=$FD, P=$34 and PC
// from the reset vector. Pending interrupts are dropped.
func (c *CPU) Power() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = 0x34
	c.pending = 0
	c.Cycles = 0
	c.PC = c.read16(resetVector)
}

// ActivateInterrupt raises an interrupt source. It is serviced before the
// next instruction is fetched.
func (c *CPU) ActivateInterrupt(i Interrupt) {
	c.pending |= i
}

// ClearInterrupt lowers an interrupt source
func (c *CPU) ClearInterrupt(i Interrupt) {
	c.pending &^= i
}

// Pending returns the raised interrupt sources
func (c *CPU) Pending() Interrupt {
	return c.pending
}

// Step services one pending interrupt or executes one instruction and
// returns the number of cycles it took.
func (c *CPU) Step() int {
	var cycles int
	switch {
	case c.pending&InterruptReset != 0:
		c.pending = 0
		c.SP -= 3
		c.P |= FlagI
		c.PC = c.read16(resetVector)
		cycles = interruptCycles

	case c.pending&InterruptNMI != 0:
		c.pending &^= InterruptNMI
		c.interrupt(nmiVector)
		cycles = interruptCycles

	case c.pending&interruptIRQ != 0 && c.P&FlagI == 0:
		c.interrupt(irqVector)
		cycles = interruptCycles

	default:
		cycles = c.execute()
	}

	c.Cycles += uint64(cycles)
	return cycles
}

func (c *CPU) execute() int {
	opcode := c.memory.Read(c.PC)
	c.PC++

	in := &instructions[opcode]
	address, crossed := c.operand(in.Mode)
	extra := in.exec(c, address)

	if crossed && in.PageCycle {
		extra++
	}
	return int(in.Cycles + extra)
}

// interrupt pushes PC and P (B clear) and jumps through vector
func (c *CPU) interrupt(vector uint16) {
	c.push16(c.PC)
	c.push(c.P&^FlagB | FlagU)
	c.P |= FlagI
	c.PC = c.read16(vector)
}

func (c *CPU) read16(address uint16) uint16 {
	lo := uint16(c.memory.Read(address))
	hi := uint16(c.memory.Read(address + 1))
	return hi<<8 | lo
}

// read16Wrap reads a pointer without carrying into the high byte of the
// address, as the zero page and JMP ($xxFF) do
func (c *CPU) read16Wrap(address uint16) uint16 {
	lo := uint16(c.memory.Read(address))
	hi := uint16(c.memory.Read(address&0xFF00 | (address+1)&0x00FF))
	return hi<<8 | lo
}

func (c *CPU) push(value uint8) {
	c.memory.Write(stackBase|uint16(c.SP), value)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	return c.memory.Read(stackBase | uint16(c.SP))
}

func (c *CPU) push16(value uint16) {
	c.push(uint8(value >> 8))
	c.push(uint8(value))
}

func (c *CPU) pop16() uint16 {
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	return hi<<8 | lo
}

func (c *CPU) flag(f uint8) bool {
	return c.P&f != 0
}

func (c *CPU) setFlag(f uint8, on bool) {
	if on {
		c.P |= f
	} else {
		c.P &^= f
	}
}

func (c *CPU) setZN(value uint8) {
	c.setFlag(FlagZ, value == 0)
	c.setFlag(FlagN, value&0x80 != 0)
}

// Registers is a snapshot of the CPU state
type Registers struct {
	A, X, Y, SP, P uint8
	PC             uint16
	Cycles         uint64
	Pending        Interrupt
}

func (r Registers) String() string {
	return fmt.Sprintf("A:%02X X:%02X Y:%02X P:%02X SP:%02X PC:%04X CYC:%d", r.A, r.X, r.Y, r.P, r.SP, r.PC, r.Cycles)
}

// Snapshot returns the current registers
func (c *CPU) Snapshot() Registers {
	return Registers{A: c.A, X: c.X, Y: c.Y, SP: c.SP, P: c.P, PC: c.PC, Cycles: c.Cycles, Pending: c.pending}
}
