// Package ppu implements the Picture Processing Unit for the NES.
package ppu

import (
	"nescore/internal/memory"
	"nescore/internal/region"
)

// Frame dimensions
const (
	Width  = 256
	Height = 240
)

// PPUCTRL bits
const (
	ctrlIncrement32  = 0x04
	ctrlSpriteTable  = 0x08
	ctrlBGTable      = 0x10
	ctrlSpriteSize16 = 0x20
	ctrlNMIEnable    = 0x80
)

// PPUMASK bits
const (
	maskGrayscale   = 0x01
	maskBGLeft      = 0x02
	maskSpritesLeft = 0x04
	maskBG          = 0x08
	maskSprites     = 0x10
)

// PPUSTATUS bits
const (
	statusOverflow   = 0x20
	statusSpriteZero = 0x40
	statusVBlank     = 0x80
)

// PPU represents the NES Picture Processing Unit (2C02/2C07)
type PPU struct {
	// CPU visible registers
	ctrl    uint8 // $2000 - PPUCTRL
	mask    uint8 // $2001 - PPUMASK
	status  uint8 // $2002 - PPUSTATUS
	oamAddr uint8 // $2003 - OAMADDR

	// Loopy registers
	v uint16 // current VRAM address (15 bits)
	t uint16 // temporary VRAM address
	x uint8  // fine X scroll (3 bits)
	w bool   // write toggle

	readBuffer uint8 // $2007 read buffer
	latch      uint8 // last value written to any register

	memory *memory.PPUMemory
	params *region.Parameters

	scanline       int // -1 (pre-render) to params.LastScanline
	dot            int // 0 to 340
	frame          uint64
	oddFrame       bool
	frameAvailable bool
	suppressVBlank bool

	// Background pipeline
	ntByte    uint8
	atByte    uint8
	patternLo uint8
	patternHi uint8
	bgShiftLo uint16
	bgShiftHi uint16
	atShiftLo uint16
	atShiftHi uint16

	oam         [256]uint8
	sprites     [8]sprite
	spriteCount int

	frameBuffer [Width * Height]uint32
	palette     Palette
	colors      [8][64]uint32

	nmiCallback      func()
	scanlineCallback func()
}

// New creates a PPU on the given memory with NTSC timing and the default
// palette
func New(mem *memory.PPUMemory) *PPU {
	p := &PPU{memory: mem, params: region.Params(region.NTSC)}
	p.SetPalette(DefaultPalette)
	p.Power()
	return p
}

// SetNMICallback sets the function raising the CPU NMI line
func (p *PPU) SetNMICallback(callback func()) {
	p.nmiCallback = callback
}

// SetScanlineCallback sets the function called at dot 260 of every rendered
// scanline. The mapper scanline counter hangs off it.
func (p *PPU) SetScanlineCallback(callback func()) {
	p.scanlineCallback = callback
}

// SetRegion switches the frame timing
func (p *PPU) SetRegion(params *region.Parameters) {
	p.params = params
	if p.scanline > params.LastScanline {
		p.scanline = -1
	}
}

// SetPalette replaces the base palette and rebuilds the emphasis variants
func (p *PPU) SetPalette(pal Palette) {
	p.palette = pal
	p.colors = pal.emphasisTable()
}

// Power loads the power-up state. OAM and the framebuffer are cleared.
// Palette and nametable RAM belong to the PPU memory.
func (p *PPU) Power() {
	p.ctrl, p.mask, p.status, p.oamAddr = 0, 0, 0, 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.latch = 0
	p.oam = [256]uint8{}
	p.frameBuffer = [Width * Height]uint32{}
	p.frame = 0
	p.Reset()
}

// Reset is the reset button: PPUCTRL, PPUMASK, the scroll latch and the
// read buffer are cleared, OAM and VRAM are kept
func (p *PPU) Reset() {
	p.ctrl, p.mask = 0, 0
	p.t, p.x, p.w = 0, 0, false
	p.readBuffer = 0

	p.scanline = -1
	p.dot = 0
	p.oddFrame = false
	p.frameAvailable = false
	p.suppressVBlank = false

	p.ntByte, p.atByte, p.patternLo, p.patternHi = 0, 0, 0, 0
	p.bgShiftLo, p.bgShiftHi, p.atShiftLo, p.atShiftHi = 0, 0, 0, 0
	p.spriteCount = 0
}

// ReadRegister reads from a PPU register (CPU $2000-$2007)
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch 0x2000 | address&0x7 {
	case 0x2002: // PPUSTATUS
		// reading one dot before vblank hides the flag for the whole frame
		if p.scanline == 241 && p.dot == 0 {
			p.suppressVBlank = true
		}
		value := p.status&0xE0 | p.latch&0x1F
		p.status &^= statusVBlank
		p.w = false
		p.latch = value
		return value
	case 0x2004: // OAMDATA
		value := p.oam[p.oamAddr]
		if p.oamAddr&0x03 == 2 {
			value &= 0xE3 // unimplemented attribute bits
		}
		p.latch = value
		return value
	case 0x2007: // PPUDATA
		p.latch = p.readData()
		return p.latch
	}
	// write-only registers return the bus latch
	return p.latch
}

// WriteRegister writes to a PPU register (CPU $2000-$2007)
func (p *PPU) WriteRegister(address uint16, value uint8) {
	p.latch = value
	switch 0x2000 | address&0x7 {
	case 0x2000: // PPUCTRL
		nmiWasEnabled := p.ctrl&ctrlNMIEnable != 0
		p.ctrl = value
		p.t = p.t&0xF3FF | uint16(value&0x03)<<10
		// enabling NMI inside vblank fires it immediately
		if !nmiWasEnabled && value&ctrlNMIEnable != 0 && p.status&statusVBlank != 0 {
			p.raiseNMI()
		}
	case 0x2001: // PPUMASK
		p.mask = value
	case 0x2003: // OAMADDR
		p.oamAddr = value
	case 0x2004: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005: // PPUSCROLL
		if !p.w {
			p.t = p.t&0xFFE0 | uint16(value)>>3
			p.x = value & 0x07
		} else {
			p.t = p.t&0x8FFF | uint16(value&0x07)<<12
			p.t = p.t&0xFC1F | uint16(value&0xF8)<<2
		}
		p.w = !p.w
	case 0x2006: // PPUADDR
		if !p.w {
			p.t = p.t&0x80FF | uint16(value&0x3F)<<8
		} else {
			p.t = p.t&0xFF00 | uint16(value)
			p.v = p.t
		}
		p.w = !p.w
	case 0x2007: // PPUDATA
		p.memory.Write(p.v, value)
		p.incrementAddress()
	}
}

// WriteOAM stores one byte of an OAM DMA transfer at the current OAMADDR
func (p *PPU) WriteOAM(value uint8) {
	p.oam[p.oamAddr] = value
	p.oamAddr++
}

func (p *PPU) readData() uint8 {
	address := p.v & 0x3FFF
	var value uint8
	if address >= 0x3F00 {
		// palette reads are immediate, the buffer gets the nametable below
		value = p.latch&0xC0 | p.memory.Read(address)
		p.readBuffer = p.memory.Read(address - 0x1000)
	} else {
		value = p.readBuffer
		p.readBuffer = p.memory.Read(address)
	}
	p.incrementAddress()
	return value
}

func (p *PPU) incrementAddress() {
	if p.ctrl&ctrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}

func (p *PPU) raiseNMI() {
	if p.nmiCallback != nil {
		p.nmiCallback()
	}
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskBG|maskSprites) != 0
}

// Tick advances the PPU by one dot
func (p *PPU) Tick() {
	p.advance()

	switch {
	case p.scanline == -1 && p.dot == 1:
		p.status &^= statusVBlank | statusSpriteZero | statusOverflow
	case p.scanline == 241 && p.dot == 1:
		if !p.suppressVBlank {
			p.status |= statusVBlank
			if p.ctrl&ctrlNMIEnable != 0 {
				p.raiseNMI()
			}
		}
		p.suppressVBlank = false
		p.frameAvailable = true
	}

	if p.scanline < Height {
		p.renderDot()
	}
}

func (p *PPU) advance() {
	p.dot++
	// NTSC drops the last dot of the pre-render line on odd frames
	if p.scanline == -1 && p.dot == 340 && p.oddFrame && p.params.OddFrameSkip && p.renderingEnabled() {
		p.dot = 341
	}
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline > p.params.LastScanline {
			p.scanline = -1
			p.frame++
			p.oddFrame = !p.oddFrame
		}
	}
}

// IsFrameAvailable reports whether a frame was finished since the last call
// to Frame
func (p *PPU) IsFrameAvailable() bool {
	return p.frameAvailable
}

// Frame returns the framebuffer in 0xAARRGGBB and clears the frame available
// flag
func (p *PPU) Frame() *[Width * Height]uint32 {
	p.frameAvailable = false
	return &p.frameBuffer
}

// Pixel returns one pixel of the framebuffer as drawn so far, without
// touching the frame available flag
func (p *PPU) Pixel(x, y int) uint32 {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return 0
	}
	return p.frameBuffer[y*Width+x]
}

// OAM returns the sprite memory
func (p *PPU) OAM() [256]uint8 {
	return p.oam
}

// Registers is a snapshot of the PPU state
type Registers struct {
	Ctrl, Mask, Status, OAMAddr uint8
	V, T                        uint16
	X                           uint8
	W                           bool
	Scanline, Dot               int
	Frame                       uint64
}

// Snapshot returns the current registers and beam position
func (p *PPU) Snapshot() Registers {
	return Registers{
		Ctrl: p.ctrl, Mask: p.mask, Status: p.status, OAMAddr: p.oamAddr,
		V: p.v, T: p.t, X: p.x, W: p.w,
		Scanline: p.scanline, Dot: p.dot, Frame: p.frame,
	}
}
