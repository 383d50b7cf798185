// Package cartridge implements ROM loading and parsing for NES cartridges.
package cartridge

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"nescore/internal/region"
)

// Mirroring represents nametable mirroring mode
type Mirroring uint8

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorFourScreen
	MirrorSingleScreen0
	MirrorSingleScreen1
)

func (m Mirroring) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorFourScreen:
		return "four-screen"
	case MirrorSingleScreen0:
		return "single-screen-0"
	case MirrorSingleScreen1:
		return "single-screen-1"
	}
	return fmt.Sprintf("mirroring(%d)", uint8(m))
}

// Format is the header revision an image was stored with
type Format uint8

const (
	FormatINES Format = iota
	FormatNES2
)

func (f Format) String() string {
	if f == FormatNES2 {
		return "NES 2.0"
	}
	return "iNES"
}

// Mapper names recognised by the mapper factory
const (
	MapperNROM        = "NROM"
	MapperMMC1        = "MMC1"
	MapperUNROM       = "UNROM"
	MapperCNROM       = "CNROM"
	MapperMMC3        = "MMC3"
	MapperAOROM       = "AOROM"
	MapperColorDreams = "ColorDreams"
	MapperBNROM       = "BNROM"
	MapperNINA001     = "NINA-001"
)

var mapperNames = map[uint16]string{
	0:  MapperNROM,
	1:  MapperMMC1,
	2:  MapperUNROM,
	3:  MapperCNROM,
	4:  MapperMMC3,
	7:  MapperAOROM,
	11: MapperColorDreams,
	34: MapperBNROM,
}

// MapperName returns the board name for a mapper number. Mapper 34 is shared
// by BNROM and NINA-001, the latter being the only one with CHR ROM. Unknown
// numbers are returned in decimal.
func MapperName(id uint16, hasCHRROM bool) string {
	name, ok := mapperNames[id]
	if !ok {
		return strconv.Itoa(int(id))
	}
	if id == 34 && hasCHRROM {
		return MapperNINA001
	}
	return name
}

// Cartridge is the decoded content of a ROM image. It is not modified after
// Parse returns.
type Cartridge struct {
	Format      Format
	Mapper      string
	MapperID    uint16
	SubmapperID uint8
	Mirroring   Mirroring
	Region      region.Region

	PRGROM []byte
	CHRROM []byte // nil when the board uses CHR RAM

	// RAM sizes are totals; the battery sizes are the battery-backed part of them
	PRGRAMSize        int
	PRGRAMSizeBattery int
	CHRRAMSize        int
	CHRRAMSizeBattery int

	Trainer []byte

	// Fingerprint is the hex SHA-1 of PRG ROM followed by CHR ROM
	Fingerprint string
}

// HasBattery reports whether part of the cartridge RAM survives power off
func (c *Cartridge) HasBattery() bool {
	return c.PRGRAMSizeBattery > 0 || c.CHRRAMSizeBattery > 0
}

// Validate checks the construction-time invariants of a cartridge
func (c *Cartridge) Validate() error {
	if len(c.PRGROM) == 0 {
		return &InvalidHeaderError{Field: "prg_rom", Reason: "PRG ROM size cannot be zero"}
	}
	if c.PRGRAMSizeBattery > 0 && c.CHRRAMSizeBattery > 0 {
		return &InvalidHeaderError{Field: "battery", Reason: "both PRG RAM and CHR RAM are battery backed"}
	}
	if c.PRGRAMSizeBattery > c.PRGRAMSize || c.CHRRAMSizeBattery > c.CHRRAMSize {
		return &InvalidHeaderError{Field: "battery", Reason: "battery RAM larger than total RAM"}
	}
	if c.Trainer != nil && len(c.Trainer) != trainerSize {
		return &InvalidHeaderError{Field: "trainer", Reason: fmt.Sprintf("trainer must be %d bytes", trainerSize)}
	}
	return nil
}

// Fingerprint computes the content hash used to key save data
func Fingerprint(prg, chr []byte) string {
	h := sha1.New()
	h.Write(prg)
	h.Write(chr)
	return hex.EncodeToString(h.Sum(nil))
}

// LoadFile loads a cartridge from an iNES file
func LoadFile(filename string) (*Cartridge, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load loads a cartridge from an io.Reader
func Load(r io.Reader) (*Cartridge, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
