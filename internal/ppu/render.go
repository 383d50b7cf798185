package ppu

import "nescore/internal/region"

// sprite is one entry of the secondary OAM with its pattern already fetched
type sprite struct {
	x         uint8
	attr      uint8
	patternLo uint8
	patternHi uint8
	zero      bool
}

// renderDot runs one dot of a pre-render or visible scanline
func (p *PPU) renderDot() {
	visible := p.scanline >= 0
	dot := p.dot

	if !p.renderingEnabled() {
		if visible && dot >= 1 && dot <= Width {
			p.frameBuffer[p.scanline*Width+dot-1] = p.backdrop()
		}
		return
	}

	if (dot >= 2 && dot <= 257) || (dot >= 321 && dot <= 337) {
		p.shift()
		switch (dot - 1) % 8 {
		case 0:
			p.loadShifters()
			p.ntByte = p.memory.Read(0x2000 | p.v&0x0FFF)
		case 2:
			at := p.memory.Read(0x23C0 | p.v&0x0C00 | (p.v>>4)&0x38 | (p.v>>2)&0x07)
			p.atByte = at >> ((p.v>>4)&0x04 | p.v&0x02) & 0x03
		case 4:
			p.patternLo = p.memory.Read(p.bgPatternAddress())
		case 6:
			p.patternHi = p.memory.Read(p.bgPatternAddress() + 8)
		case 7:
			p.incrementX()
		}
	}

	switch dot {
	case 256:
		p.incrementY()
	case 257:
		p.loadShifters()
		p.copyX()
		p.evaluateSprites()
	case 260:
		if p.scanlineCallback != nil {
			p.scanlineCallback()
		}
	case 338, 340:
		p.ntByte = p.memory.Read(0x2000 | p.v&0x0FFF)
	}

	if !visible && dot >= 280 && dot <= 304 {
		p.copyY()
	}

	if visible && dot >= 1 && dot <= Width {
		p.renderPixel(dot - 1)
	}
}

func (p *PPU) bgPatternAddress() uint16 {
	var table uint16
	if p.ctrl&ctrlBGTable != 0 {
		table = 0x1000
	}
	return table + uint16(p.ntByte)*16 + (p.v>>12)&0x07
}

func (p *PPU) shift() {
	p.bgShiftLo <<= 1
	p.bgShiftHi <<= 1
	p.atShiftLo <<= 1
	p.atShiftHi <<= 1
}

// loadShifters moves the fetched tile into the low byte of the shifters
func (p *PPU) loadShifters() {
	p.bgShiftLo = p.bgShiftLo&0xFF00 | uint16(p.patternLo)
	p.bgShiftHi = p.bgShiftHi&0xFF00 | uint16(p.patternHi)
	p.atShiftLo &= 0xFF00
	p.atShiftHi &= 0xFF00
	if p.atByte&0x01 != 0 {
		p.atShiftLo |= 0x00FF
	}
	if p.atByte&0x02 != 0 {
		p.atShiftHi |= 0x00FF
	}
}

// backdrop is the colour output while rendering is off. When v points into
// palette RAM that entry is shown instead of the universal background.
func (p *PPU) backdrop() uint32 {
	index := uint8(0)
	if p.v&0x3F00 == 0x3F00 {
		index = uint8(p.v & 0x1F)
	}
	return p.color(p.memory.ReadPalette(index))
}

func (p *PPU) renderPixel(x int) {
	var bgPixel, bgPalette uint8
	if p.mask&maskBG != 0 && (x >= 8 || p.mask&maskBGLeft != 0) {
		bit := uint16(0x8000) >> p.x
		if p.bgShiftLo&bit != 0 {
			bgPixel |= 0x01
		}
		if p.bgShiftHi&bit != 0 {
			bgPixel |= 0x02
		}
		if p.atShiftLo&bit != 0 {
			bgPalette |= 0x01
		}
		if p.atShiftHi&bit != 0 {
			bgPalette |= 0x02
		}
	}

	var spPixel uint8
	var sp *sprite
	if p.mask&maskSprites != 0 && (x >= 8 || p.mask&maskSpritesLeft != 0) {
		for i := 0; i < p.spriteCount; i++ {
			s := &p.sprites[i]
			offset := x - int(s.x)
			if offset < 0 || offset > 7 {
				continue
			}
			shift := 7 - offset
			pixel := (s.patternLo>>shift)&0x01 | (s.patternHi>>shift)&0x01<<1
			if pixel != 0 {
				spPixel = pixel
				sp = s
				break
			}
		}
	}

	var index uint8
	switch {
	case bgPixel == 0 && spPixel == 0:
		index = 0
	case bgPixel == 0:
		index = 0x10 | (sp.attr&0x03)<<2 | spPixel
	case spPixel == 0:
		index = bgPalette<<2 | bgPixel
	default:
		if sp.zero && x != 255 {
			p.status |= statusSpriteZero
		}
		if sp.attr&0x20 != 0 {
			index = bgPalette<<2 | bgPixel
		} else {
			index = 0x10 | (sp.attr&0x03)<<2 | spPixel
		}
	}

	p.frameBuffer[p.scanline*Width+x] = p.color(p.memory.ReadPalette(index))
}

// color applies grayscale and emphasis to a palette RAM value
func (p *PPU) color(value uint8) uint32 {
	if p.mask&maskGrayscale != 0 {
		value &= 0x30
	}
	emphasis := p.mask >> 5
	if p.params.Region == region.PAL {
		// the 2C07 swaps the red and green emphasis bits
		emphasis = emphasis&0x04 | (emphasis&0x01)<<1 | (emphasis&0x02)>>1
	}
	return p.colors[emphasis][value&0x3F]
}

// evaluateSprites fills the secondary OAM for the next scanline. More than
// eight sprites in range set the overflow flag.
func (p *PPU) evaluateSprites() {
	height := 8
	if p.ctrl&ctrlSpriteSize16 != 0 {
		height = 16
	}

	p.spriteCount = 0
	for i := 0; i < 64; i++ {
		y := int(p.oam[i*4])
		row := p.scanline - y
		if row < 0 || row >= height {
			continue
		}
		if p.spriteCount == 8 {
			p.status |= statusOverflow
			break
		}

		tile := p.oam[i*4+1]
		attr := p.oam[i*4+2]
		if attr&0x80 != 0 {
			row = height - 1 - row
		}

		var address uint16
		if height == 16 {
			table := uint16(tile&0x01) * 0x1000
			tile &^= 0x01
			if row >= 8 {
				tile++
				row -= 8
			}
			address = table + uint16(tile)*16 + uint16(row)
		} else {
			var table uint16
			if p.ctrl&ctrlSpriteTable != 0 {
				table = 0x1000
			}
			address = table + uint16(tile)*16 + uint16(row)
		}

		lo := p.memory.Read(address)
		hi := p.memory.Read(address + 8)
		if attr&0x40 != 0 {
			lo, hi = reverseBits(lo), reverseBits(hi)
		}

		p.sprites[p.spriteCount] = sprite{
			x:         p.oam[i*4+3],
			attr:      attr,
			patternLo: lo,
			patternHi: hi,
			zero:      i == 0,
		}
		p.spriteCount++
	}
}

func reverseBits(b uint8) uint8 {
	b = b&0xF0>>4 | b&0x0F<<4
	b = b&0xCC>>2 | b&0x33<<2
	b = b&0xAA>>1 | b&0x55<<1
	return b
}

// incrementX increments the coarse X and wraps to the next nametable
func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementY increments fine Y, carrying into coarse Y
func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0 // attribute rows wrap without switching nametable
	default:
		y++
	}
	p.v = p.v&^0x03E0 | y<<5
}

// copyX copies the horizontal bits from t to v
func (p *PPU) copyX() {
	p.v = p.v&0xFBE0 | p.t&0x041F
}

// copyY copies the vertical bits from t to v
func (p *PPU) copyY() {
	p.v = p.v&0x841F | p.t&0x7BE0
}
