package cpu

// Every instruction returns the cycles it takes beyond its table entry.
// Only branches add cycles themselves; the index page penalty is applied by
// the caller.

func (c *CPU) lda(address uint16) uint8 {
	c.A = c.memory.Read(address)
	c.setZN(c.A)
	return 0
}

func (c *CPU) ldx(address uint16) uint8 {
	c.X = c.memory.Read(address)
	c.setZN(c.X)
	return 0
}

func (c *CPU) ldy(address uint16) uint8 {
	c.Y = c.memory.Read(address)
	c.setZN(c.Y)
	return 0
}

func (c *CPU) sta(address uint16) uint8 {
	c.memory.Write(address, c.A)
	return 0
}

func (c *CPU) stx(address uint16) uint8 {
	c.memory.Write(address, c.X)
	return 0
}

func (c *CPU) sty(address uint16) uint8 {
	c.memory.Write(address, c.Y)
	return 0
}

// add is the binary adder shared by ADC and SBC
func (c *CPU) add(value uint8) {
	carry := uint16(c.P & FlagC)
	sum := uint16(c.A) + uint16(value) + carry
	result := uint8(sum)
	c.setFlag(FlagC, sum > 0xFF)
	c.setFlag(FlagV, (c.A^result)&(value^result)&0x80 != 0)
	c.A = result
	c.setZN(c.A)
}

func (c *CPU) adc(address uint16) uint8 {
	c.add(c.memory.Read(address))
	return 0
}

func (c *CPU) sbc(address uint16) uint8 {
	c.add(^c.memory.Read(address))
	return 0
}

func (c *CPU) and(address uint16) uint8 {
	c.A &= c.memory.Read(address)
	c.setZN(c.A)
	return 0
}

func (c *CPU) ora(address uint16) uint8 {
	c.A |= c.memory.Read(address)
	c.setZN(c.A)
	return 0
}

func (c *CPU) eor(address uint16) uint8 {
	c.A ^= c.memory.Read(address)
	c.setZN(c.A)
	return 0
}

func (c *CPU) shiftLeft(value uint8) uint8 {
	c.setFlag(FlagC, value&0x80 != 0)
	value <<= 1
	c.setZN(value)
	return value
}

func (c *CPU) shiftRight(value uint8) uint8 {
	c.setFlag(FlagC, value&0x01 != 0)
	value >>= 1
	c.setZN(value)
	return value
}

func (c *CPU) rotateLeft(value uint8) uint8 {
	carry := c.P & FlagC
	c.setFlag(FlagC, value&0x80 != 0)
	value = value<<1 | carry
	c.setZN(value)
	return value
}

func (c *CPU) rotateRight(value uint8) uint8 {
	carry := (c.P & FlagC) << 7
	c.setFlag(FlagC, value&0x01 != 0)
	value = value>>1 | carry
	c.setZN(value)
	return value
}

// modify runs a read-modify-write operation on memory
func (c *CPU) modify(address uint16, op func(uint8) uint8) uint8 {
	value := op(c.memory.Read(address))
	c.memory.Write(address, value)
	return value
}

func (c *CPU) asl(address uint16) uint8 { c.modify(address, c.shiftLeft); return 0 }
func (c *CPU) lsr(address uint16) uint8 { c.modify(address, c.shiftRight); return 0 }
func (c *CPU) rol(address uint16) uint8 { c.modify(address, c.rotateLeft); return 0 }
func (c *CPU) ror(address uint16) uint8 { c.modify(address, c.rotateRight); return 0 }

func (c *CPU) aslA(uint16) uint8 { c.A = c.shiftLeft(c.A); return 0 }
func (c *CPU) lsrA(uint16) uint8 { c.A = c.shiftRight(c.A); return 0 }
func (c *CPU) rolA(uint16) uint8 { c.A = c.rotateLeft(c.A); return 0 }
func (c *CPU) rorA(uint16) uint8 { c.A = c.rotateRight(c.A); return 0 }

func (c *CPU) compare(register, value uint8) {
	c.setFlag(FlagC, register >= value)
	c.setZN(register - value)
}

func (c *CPU) cmp(address uint16) uint8 { c.compare(c.A, c.memory.Read(address)); return 0 }
func (c *CPU) cpx(address uint16) uint8 { c.compare(c.X, c.memory.Read(address)); return 0 }
func (c *CPU) cpy(address uint16) uint8 { c.compare(c.Y, c.memory.Read(address)); return 0 }

func (c *CPU) inc(address uint16) uint8 {
	c.setZN(c.modify(address, func(v uint8) uint8 { return v + 1 }))
	return 0
}

func (c *CPU) dec(address uint16) uint8 {
	c.setZN(c.modify(address, func(v uint8) uint8 { return v - 1 }))
	return 0
}

func (c *CPU) inx(uint16) uint8 { c.X++; c.setZN(c.X); return 0 }
func (c *CPU) dex(uint16) uint8 { c.X--; c.setZN(c.X); return 0 }
func (c *CPU) iny(uint16) uint8 { c.Y++; c.setZN(c.Y); return 0 }
func (c *CPU) dey(uint16) uint8 { c.Y--; c.setZN(c.Y); return 0 }

func (c *CPU) tax(uint16) uint8 { c.X = c.A; c.setZN(c.X); return 0 }
func (c *CPU) txa(uint16) uint8 { c.A = c.X; c.setZN(c.A); return 0 }
func (c *CPU) tay(uint16) uint8 { c.Y = c.A; c.setZN(c.Y); return 0 }
func (c *CPU) tya(uint16) uint8 { c.A = c.Y; c.setZN(c.A); return 0 }
func (c *CPU) tsx(uint16) uint8 { c.X = c.SP; c.setZN(c.X); return 0 }

// TXS does not touch the flags
func (c *CPU) txs(uint16) uint8 { c.SP = c.X; return 0 }

func (c *CPU) pha(uint16) uint8 { c.push(c.A); return 0 }
func (c *CPU) php(uint16) uint8 { c.push(c.P | FlagB | FlagU); return 0 }

func (c *CPU) pla(uint16) uint8 {
	c.A = c.pop()
	c.setZN(c.A)
	return 0
}

func (c *CPU) plp(uint16) uint8 {
	c.P = c.pop()&^FlagB | FlagU
	return 0
}

func (c *CPU) clc(uint16) uint8 { c.P &^= FlagC; return 0 }
func (c *CPU) sec(uint16) uint8 { c.P |= FlagC; return 0 }
func (c *CPU) cli(uint16) uint8 { c.P &^= FlagI; return 0 }
func (c *CPU) sei(uint16) uint8 { c.P |= FlagI; return 0 }
func (c *CPU) clv(uint16) uint8 { c.P &^= FlagV; return 0 }
func (c *CPU) cld(uint16) uint8 { c.P &^= FlagD; return 0 }
func (c *CPU) sed(uint16) uint8 { c.P |= FlagD; return 0 }

func (c *CPU) jmp(address uint16) uint8 {
	c.PC = address
	return 0
}

func (c *CPU) jsr(address uint16) uint8 {
	c.push16(c.PC - 1)
	c.PC = address
	return 0
}

func (c *CPU) rts(uint16) uint8 {
	c.PC = c.pop16() + 1
	return 0
}

func (c *CPU) rti(uint16) uint8 {
	c.P = c.pop()&^FlagB | FlagU
	c.PC = c.pop16()
	return 0
}

// BRK skips a padding byte and pushes P with B set
func (c *CPU) brk(uint16) uint8 {
	c.push16(c.PC + 1)
	c.push(c.P | FlagB | FlagU)
	c.P |= FlagI
	c.PC = c.read16(irqVector)
	return 0
}

// branch takes one extra cycle when taken and another when the target is
// on a different page
func (c *CPU) branch(taken bool, target uint16) uint8 {
	if !taken {
		return 0
	}
	extra := uint8(1)
	if pagesDiffer(c.PC, target) {
		extra++
	}
	c.PC = target
	return extra
}

func (c *CPU) bcc(target uint16) uint8 { return c.branch(!c.flag(FlagC), target) }
func (c *CPU) bcs(target uint16) uint8 { return c.branch(c.flag(FlagC), target) }
func (c *CPU) bne(target uint16) uint8 { return c.branch(!c.flag(FlagZ), target) }
func (c *CPU) beq(target uint16) uint8 { return c.branch(c.flag(FlagZ), target) }
func (c *CPU) bpl(target uint16) uint8 { return c.branch(!c.flag(FlagN), target) }
func (c *CPU) bmi(target uint16) uint8 { return c.branch(c.flag(FlagN), target) }
func (c *CPU) bvc(target uint16) uint8 { return c.branch(!c.flag(FlagV), target) }
func (c *CPU) bvs(target uint16) uint8 { return c.branch(c.flag(FlagV), target) }

func (c *CPU) bit(address uint16) uint8 {
	value := c.memory.Read(address)
	c.setFlag(FlagZ, c.A&value == 0)
	c.setFlag(FlagV, value&0x40 != 0)
	c.setFlag(FlagN, value&0x80 != 0)
	return 0
}

func (c *CPU) nop(uint16) uint8 { return 0 }

// nopRead is an undocumented NOP that still performs its operand read
func (c *CPU) nopRead(address uint16) uint8 {
	c.memory.Read(address)
	return 0
}

// Undocumented instructions with stable behaviour

func (c *CPU) lax(address uint16) uint8 {
	c.A = c.memory.Read(address)
	c.X = c.A
	c.setZN(c.A)
	return 0
}

func (c *CPU) sax(address uint16) uint8 {
	c.memory.Write(address, c.A&c.X)
	return 0
}

func (c *CPU) dcp(address uint16) uint8 {
	value := c.modify(address, func(v uint8) uint8 { return v - 1 })
	c.compare(c.A, value)
	return 0
}

func (c *CPU) isb(address uint16) uint8 {
	value := c.modify(address, func(v uint8) uint8 { return v + 1 })
	c.add(^value)
	return 0
}

func (c *CPU) slo(address uint16) uint8 {
	c.A |= c.modify(address, c.shiftLeft)
	c.setZN(c.A)
	return 0
}

func (c *CPU) rla(address uint16) uint8 {
	c.A &= c.modify(address, c.rotateLeft)
	c.setZN(c.A)
	return 0
}

func (c *CPU) sre(address uint16) uint8 {
	c.A ^= c.modify(address, c.shiftRight)
	c.setZN(c.A)
	return 0
}

func (c *CPU) rra(address uint16) uint8 {
	c.add(c.modify(address, c.rotateRight))
	return 0
}

func (c *CPU) anc(address uint16) uint8 {
	c.A &= c.memory.Read(address)
	c.setZN(c.A)
	c.setFlag(FlagC, c.A&0x80 != 0)
	return 0
}

func (c *CPU) alr(address uint16) uint8 {
	c.A = c.shiftRight(c.A & c.memory.Read(address))
	return 0
}

func (c *CPU) arr(address uint16) uint8 {
	c.A &= c.memory.Read(address)
	c.A = c.A>>1 | (c.P&FlagC)<<7
	c.setZN(c.A)
	c.setFlag(FlagC, c.A&0x40 != 0)
	c.setFlag(FlagV, (c.A>>6^c.A>>5)&0x01 != 0)
	return 0
}

func (c *CPU) axs(address uint16) uint8 {
	value := c.memory.Read(address)
	ax := c.A & c.X
	c.setFlag(FlagC, ax >= value)
	c.X = ax - value
	c.setZN(c.X)
	return 0
}
