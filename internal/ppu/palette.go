package ppu

import (
	"errors"
	"fmt"
	"math"
	"os"
)

// Palette maps the 64 NES colour indices to 0xAARRGGBB
type Palette [64]uint32

// ErrPaletteSize is returned by ParsePalette for files shorter than 64 RGB
// triplets
var ErrPaletteSize = errors.New("palette data must hold at least 192 bytes")

// DefaultPalette is the 2C02 palette used when no .pal file is configured
var DefaultPalette = Palette{
	0xFF666666, 0xFF002A88, 0xFF1412A7, 0xFF3B00A4, 0xFF5C007E, 0xFF6E0040, 0xFF6C0600, 0xFF561D00,
	0xFF333500, 0xFF0B4800, 0xFF005200, 0xFF004F08, 0xFF00404D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFADADAD, 0xFF155FD9, 0xFF4240FF, 0xFF7527FE, 0xFFA01ACC, 0xFFB71E7B, 0xFFB53120, 0xFF994E00,
	0xFF6B6D00, 0xFF388700, 0xFF0C9300, 0xFF008F32, 0xFF007C8D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFF64B0FF, 0xFF9290FF, 0xFFC676FF, 0xFFF36AFF, 0xFFFE6ECC, 0xFFFE8170, 0xFFEA9E22,
	0xFFBCBE00, 0xFF88D800, 0xFF5CE430, 0xFF45E082, 0xFF48CDDE, 0xFF4F4F4F, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFFC0DFFF, 0xFFD3D2FF, 0xFFE8C8FF, 0xFFFBC2FF, 0xFFFEC4EA, 0xFFFECCC5, 0xFFF7D8A5,
	0xFFE4E594, 0xFFCFF29B, 0xFFBEFBB3, 0xFFB8F8D8, 0xFFB8F8F8, 0xFF000000, 0xFF000000, 0xFF000000,
}

// ParsePalette reads a .pal file: 64 RGB triplets. Files carrying the eight
// emphasis variants are accepted and only the first 64 entries are used.
func ParsePalette(data []byte) (Palette, error) {
	var p Palette
	if len(data) < 64*3 {
		return p, ErrPaletteSize
	}
	for i := range p {
		r, g, b := data[i*3], data[i*3+1], data[i*3+2]
		p[i] = pack(r, g, b)
	}
	return p, nil
}

// LoadPaletteFile reads and parses a .pal file
func LoadPaletteFile(path string) (Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Palette{}, fmt.Errorf("failed to read palette: %w", err)
	}
	p, err := ParsePalette(data)
	if err != nil {
		return Palette{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// NewPalette derives a palette from base with the hue rotated by hue degrees
// and the chroma scaled by saturation. NewPalette(p, 0, 1) returns p.
func NewPalette(base Palette, hue, saturation float64) Palette {
	if hue == 0 && saturation == 1 {
		return base
	}

	sin, cos := math.Sincos(hue * math.Pi / 180)
	var out Palette
	for n, c := range base {
		r, g, b := unpack(c)

		// RGB to YIQ, rotate and scale the chroma plane, back to RGB
		y := 0.299*r + 0.587*g + 0.114*b
		i := 0.596*r - 0.274*g - 0.322*b
		q := 0.211*r - 0.523*g + 0.312*b
		i, q = (i*cos-q*sin)*saturation, (i*sin+q*cos)*saturation

		out[n] = pack(
			clamp(y+0.956*i+0.621*q),
			clamp(y-0.272*i-0.647*q),
			clamp(y-1.106*i+1.703*q),
		)
	}
	return out
}

// emphasisTable builds the eight PPUMASK emphasis variants. Every set bit
// darkens the two channels it does not name.
func (p Palette) emphasisTable() [8][64]uint32 {
	const attenuation = 0.816

	var table [8][64]uint32
	for e := 0; e < 8; e++ {
		scale := [3]float64{1, 1, 1}
		for bit := 0; bit < 3; bit++ {
			if e&(1<<bit) == 0 {
				continue
			}
			for ch := range scale {
				if ch != bit {
					scale[ch] *= attenuation
				}
			}
		}
		for n, c := range p {
			if e == 0 {
				table[e][n] = c
				continue
			}
			r, g, b := unpack(c)
			table[e][n] = pack(clamp(r*scale[0]), clamp(g*scale[1]), clamp(b*scale[2]))
		}
	}
	return table
}

func pack(r, g, b uint8) uint32 {
	return 0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func unpack(c uint32) (r, g, b float64) {
	return float64(c>>16&0xFF) / 255, float64(c>>8&0xFF) / 255, float64(c&0xFF) / 255
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(math.Round(v * 255))
}
