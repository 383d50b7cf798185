// Package region holds the NTSC and PAL timing parameters shared by the
// emulation units.
package region

import (
	"fmt"
	"strings"
)

// Region identifies a console timing variant
type Region uint8

const (
	// Auto lets the cartridge decide, falling back to NTSC
	Auto Region = iota
	NTSC
	PAL
)

func (r Region) String() string {
	switch r {
	case Auto:
		return "auto"
	case NTSC:
		return "ntsc"
	case PAL:
		return "pal"
	}
	return fmt.Sprintf("region(%d)", uint8(r))
}

// Parse converts a configuration string to a Region
func Parse(name string) (Region, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Auto, nil
	case "ntsc":
		return NTSC, nil
	case "pal":
		return PAL, nil
	}
	return Auto, fmt.Errorf("unknown region %q", name)
}

// Parameters is the read-only timing table for one region.
//
// PPUTicksNum/PPUTicksDen express the PPU dots run per CPU cycle as a
// fraction (3/1 for NTSC, 16/5 for PAL).
type Parameters struct {
	Region        Region
	FrameRate     float64
	CPUClock      int
	ClipTopBottom bool

	PPUTicksNum int
	PPUTicksDen int

	// LastScanline is the final scanline of a frame, the pre-render line is -1
	LastScanline int
	OddFrameSkip bool

	// FrameCounter4 holds the cycles of steps 1-4 of the 4-step sequence and the
	// step after it, where the counter wraps.
	FrameCounter4 [5]int
	// FrameCounter5 holds the cycles of steps 1-4 and the final step of the
	// 5-step sequence.
	FrameCounter5 [5]int

	NoisePeriods [16]uint16
	DMCRates     [16]uint16
}

var ntsc = Parameters{
	Region:        NTSC,
	FrameRate:     60.0988,
	CPUClock:      1789773,
	ClipTopBottom: true,
	PPUTicksNum:   3,
	PPUTicksDen:   1,
	LastScanline:  260,
	OddFrameSkip:  true,
	FrameCounter4: [5]int{7457, 14913, 22371, 29829, 29830},
	FrameCounter5: [5]int{7457, 14913, 22371, 29829, 37281},
	NoisePeriods: [16]uint16{
		4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068,
	},
	DMCRates: [16]uint16{
		428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54,
	},
}

var pal = Parameters{
	Region:        PAL,
	FrameRate:     50.007,
	CPUClock:      1662607,
	ClipTopBottom: false,
	PPUTicksNum:   16,
	PPUTicksDen:   5,
	LastScanline:  310,
	OddFrameSkip:  false,
	FrameCounter4: [5]int{8313, 16627, 24939, 33253, 33254},
	FrameCounter5: [5]int{8313, 16627, 24939, 33253, 41565},
	NoisePeriods: [16]uint16{
		4, 8, 14, 30, 60, 88, 118, 148, 188, 236, 354, 472, 708, 944, 1890, 3778,
	},
	DMCRates: [16]uint16{
		398, 354, 316, 298, 276, 236, 210, 198, 176, 148, 132, 118, 98, 78, 66, 50,
	},
}

// Params returns the timing table for r. Auto resolves to NTSC.
func Params(r Region) *Parameters {
	if r == PAL {
		return &pal
	}
	return &ntsc
}

// Resolve picks the effective region: an explicit override wins over the
// cartridge region, and NTSC is used when neither is set.
func Resolve(override, cartridge Region) Region {
	if override != Auto {
		return override
	}
	if cartridge != Auto {
		return cartridge
	}
	return NTSC
}
