package cartridge

import (
	"fmt"
	"math/bits"

	"nescore/internal/region"
)

const (
	headerSize  = 16
	trainerSize = 512
	prgUnit     = 0x4000
	chrUnit     = 0x2000
	ramUnit     = 0x2000
)

var signature = []byte{'N', 'E', 'S', 0x1A}

// header byte 6
const (
	flagVertical   = 0x01
	flagBattery    = 0x02
	flagTrainer    = 0x04
	flagFourScreen = 0x08
)

// Parse decodes an iNES or NES 2.0 image
func Parse(data []byte) (*Cartridge, error) {
	if len(data) < headerSize {
		sig := data
		if len(sig) > 4 {
			sig = sig[:4]
		}
		if len(data) >= 4 && string(data[:4]) == string(signature) {
			return nil, &TruncatedError{Section: "header", Want: headerSize, Have: len(data)}
		}
		return nil, &FormatError{Signature: append([]byte(nil), sig...)}
	}
	if string(data[:4]) != string(signature) {
		return nil, &FormatError{Signature: append([]byte(nil), data[:4]...)}
	}

	h := data[:headerSize]
	flags6 := h[6]
	flags7 := h[7]

	c := &Cartridge{Format: FormatINES, Region: region.NTSC}
	if flags7&0x0C == 0x08 {
		c.Format = FormatNES2
	}

	prgUnits := int(h[4])
	chrUnits := int(h[5])
	c.MapperID = uint16(flags6>>4) | uint16(flags7&0xF0)
	if c.Format == FormatNES2 {
		prgUnits |= int(h[9]&0x0F) << 8
		chrUnits |= int(h[9]>>4) << 8
		c.MapperID |= uint16(h[8]&0x0F) << 8
		c.SubmapperID = h[8] >> 4
	}
	if prgUnits == 0 {
		return nil, &InvalidHeaderError{Field: "prg_rom", Reason: "PRG ROM size cannot be zero"}
	}

	switch {
	case flags6&flagFourScreen != 0:
		c.Mirroring = MirrorFourScreen
	case flags6&flagVertical != 0:
		c.Mirroring = MirrorVertical
	default:
		c.Mirroring = MirrorHorizontal
	}

	offset := headerSize
	if flags6&flagTrainer != 0 {
		if len(data) < offset+trainerSize {
			return nil, &TruncatedError{Section: "trainer", Want: offset + trainerSize, Have: len(data)}
		}
		c.Trainer = append([]byte(nil), data[offset:offset+trainerSize]...)
		offset += trainerSize
	}

	prgSize := prgUnits * prgUnit
	if len(data) < offset+prgSize {
		return nil, &TruncatedError{Section: "PRG ROM", Want: offset + prgSize, Have: len(data)}
	}
	c.PRGROM = append([]byte(nil), data[offset:offset+prgSize]...)
	offset += prgSize

	chrSize := chrUnits * chrUnit
	if len(data) < offset+chrSize {
		return nil, &TruncatedError{Section: "CHR ROM", Want: offset + chrSize, Have: len(data)}
	}
	if chrSize > 0 {
		c.CHRROM = append([]byte(nil), data[offset:offset+chrSize]...)
	}

	if c.Format == FormatNES2 {
		prgRAM, prgBattery := ramSize(h[10]&0x0F), ramSize(h[10]>>4)
		chrRAM, chrBattery := ramSize(h[11]&0x0F), ramSize(h[11]>>4)
		c.PRGRAMSize = prgRAM + prgBattery
		c.PRGRAMSizeBattery = prgBattery
		c.CHRRAMSize = chrRAM + chrBattery
		c.CHRRAMSizeBattery = chrBattery
		if h[12]&0x01 != 0 {
			c.Region = region.PAL
		}
	} else {
		units := int(h[8])
		if units == 0 {
			units = 1
		}
		c.PRGRAMSize = units * ramUnit
		if flags6&flagBattery != 0 {
			c.PRGRAMSizeBattery = c.PRGRAMSize
		}
		if c.CHRROM == nil {
			c.CHRRAMSize = chrUnit
		}
		if h[9]&0x01 != 0 {
			c.Region = region.PAL
		}
	}

	c.Mapper = MapperName(c.MapperID, c.CHRROM != nil)
	c.Fingerprint = Fingerprint(c.PRGROM, c.CHRROM)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ramSize decodes a NES 2.0 shift count: 64 << n bytes, or nothing for 0
func ramSize(n uint8) int {
	if n == 0 {
		return 0
	}
	return 64 << n
}

// ramCode is the inverse of ramSize. Sizes that are not a power of two are
// rounded up.
func ramCode(size int) uint8 {
	if size <= 0 {
		return 0
	}
	n := bits.Len(uint(size-1)) - 6
	if n < 1 {
		n = 1
	}
	return uint8(n)
}

// Encode serialises a cartridge back into an image. NES 2.0 is used when the
// cartridge was read from one or carries fields iNES cannot hold.
func Encode(c *Cartridge) ([]byte, error) {
	prgUnits := len(c.PRGROM) / prgUnit
	chrUnits := len(c.CHRROM) / chrUnit
	if prgUnits == 0 || len(c.PRGROM)%prgUnit != 0 {
		return nil, &InvalidHeaderError{Field: "prg_rom", Reason: fmt.Sprintf("size %d is not a multiple of 16K", len(c.PRGROM))}
	}
	if len(c.CHRROM)%chrUnit != 0 {
		return nil, &InvalidHeaderError{Field: "chr_rom", Reason: fmt.Sprintf("size %d is not a multiple of 8K", len(c.CHRROM))}
	}

	nes2 := c.Format == FormatNES2 || !inesCompatible(c, prgUnits, chrUnits)

	h := make([]byte, headerSize)
	copy(h, signature)
	h[4] = uint8(prgUnits)
	h[5] = uint8(chrUnits)

	h[6] = uint8(c.MapperID&0x0F) << 4
	switch c.Mirroring {
	case MirrorVertical:
		h[6] |= flagVertical
	case MirrorFourScreen:
		h[6] |= flagFourScreen
	}
	if c.HasBattery() {
		h[6] |= flagBattery
	}
	if c.Trainer != nil {
		h[6] |= flagTrainer
	}
	h[7] = uint8(c.MapperID & 0xF0)

	if nes2 {
		h[7] |= 0x08
		h[8] = uint8(c.MapperID>>8)&0x0F | c.SubmapperID<<4
		h[9] = uint8(prgUnits>>8)&0x0F | uint8(chrUnits>>8)<<4
		h[10] = ramCode(c.PRGRAMSize-c.PRGRAMSizeBattery) | ramCode(c.PRGRAMSizeBattery)<<4
		h[11] = ramCode(c.CHRRAMSize-c.CHRRAMSizeBattery) | ramCode(c.CHRRAMSizeBattery)<<4
		if c.Region == region.PAL {
			h[12] = 0x01
		}
	} else {
		h[8] = uint8(c.PRGRAMSize / ramUnit)
		if c.Region == region.PAL {
			h[9] = 0x01
		}
	}

	out := make([]byte, 0, headerSize+len(c.Trainer)+len(c.PRGROM)+len(c.CHRROM))
	out = append(out, h...)
	out = append(out, c.Trainer...)
	out = append(out, c.PRGROM...)
	out = append(out, c.CHRROM...)
	return out, nil
}

func inesCompatible(c *Cartridge, prgUnits, chrUnits int) bool {
	if c.MapperID > 0xFF || c.SubmapperID != 0 || prgUnits > 0xFF || chrUnits > 0xFF {
		return false
	}
	if c.PRGRAMSize == 0 || c.PRGRAMSize%ramUnit != 0 || c.PRGRAMSize/ramUnit > 0xFF {
		return false
	}
	if c.PRGRAMSizeBattery != 0 && c.PRGRAMSizeBattery != c.PRGRAMSize {
		return false
	}
	if c.CHRRAMSizeBattery != 0 {
		return false
	}
	wantCHRRAM := 0
	if c.CHRROM == nil {
		wantCHRRAM = chrUnit
	}
	return c.CHRRAMSize == wantCHRRAM
}
