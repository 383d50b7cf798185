package cartridge

import (
	"fmt"

	"nescore/internal/region"
)

// TestROMConfig describes a synthetic ROM image used by tests across the
// emulator packages
type TestROMConfig struct {
	PRGSize     int    // PRG ROM size in 16KB units
	CHRSize     int    // CHR ROM size in 8KB units (0 = CHR RAM)
	MapperID    uint16 // Mapper number
	Submapper   uint8
	Mirroring   Mirroring
	Region      region.Region
	HasBattery  bool
	NES2        bool
	TrainerData []byte // non-nil adds a trainer

	// Program is copied to the start of the last 16KB PRG bank, which the
	// CPU sees at $C000 (and at $8000 for 16KB images)
	Program     []byte
	ResetVector uint16
	NMIVector   uint16
	IRQVector   uint16
	CHRData     []byte
}

// TestROMBuilder provides a fluent interface for building test ROMs
type TestROMBuilder struct {
	config TestROMConfig
}

// NewTestROMBuilder creates a builder for a 16KB/8KB NROM image with every
// vector pointing at the program
func NewTestROMBuilder() *TestROMBuilder {
	return &TestROMBuilder{
		config: TestROMConfig{
			PRGSize:     1,
			CHRSize:     1,
			Region:      region.NTSC,
			ResetVector: 0xC000,
			NMIVector:   0xC000,
			IRQVector:   0xC000,
		},
	}
}

func (b *TestROMBuilder) WithPRGSize(units int) *TestROMBuilder {
	b.config.PRGSize = units
	return b
}

func (b *TestROMBuilder) WithCHRSize(units int) *TestROMBuilder {
	b.config.CHRSize = units
	return b
}

// WithCHRRAM removes CHR ROM so the board uses 8KB of CHR RAM
func (b *TestROMBuilder) WithCHRRAM() *TestROMBuilder {
	b.config.CHRSize = 0
	return b
}

func (b *TestROMBuilder) WithMapper(id uint16) *TestROMBuilder {
	b.config.MapperID = id
	return b
}

func (b *TestROMBuilder) WithMirroring(m Mirroring) *TestROMBuilder {
	b.config.Mirroring = m
	return b
}

func (b *TestROMBuilder) WithRegion(r region.Region) *TestROMBuilder {
	b.config.Region = r
	return b
}

func (b *TestROMBuilder) WithBattery() *TestROMBuilder {
	b.config.HasBattery = true
	return b
}

func (b *TestROMBuilder) WithNES2(submapper uint8) *TestROMBuilder {
	b.config.NES2 = true
	b.config.Submapper = submapper
	return b
}

func (b *TestROMBuilder) WithTrainer(data []byte) *TestROMBuilder {
	t := make([]byte, trainerSize)
	copy(t, data)
	b.config.TrainerData = t
	return b
}

func (b *TestROMBuilder) WithProgram(program []byte) *TestROMBuilder {
	b.config.Program = program
	return b
}

func (b *TestROMBuilder) WithResetVector(address uint16) *TestROMBuilder {
	b.config.ResetVector = address
	return b
}

func (b *TestROMBuilder) WithNMIVector(address uint16) *TestROMBuilder {
	b.config.NMIVector = address
	return b
}

func (b *TestROMBuilder) WithIRQVector(address uint16) *TestROMBuilder {
	b.config.IRQVector = address
	return b
}

func (b *TestROMBuilder) WithCHRData(data []byte) *TestROMBuilder {
	b.config.CHRData = data
	return b
}

// Build generates the image bytes
func (b *TestROMBuilder) Build() ([]byte, error) {
	return GenerateTestROM(b.config)
}

// BuildCartridge generates the image and parses it
func (b *TestROMBuilder) BuildCartridge() (*Cartridge, error) {
	data, err := b.Build()
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// MustBuildCartridge is BuildCartridge for tests that cannot continue on error
func (b *TestROMBuilder) MustBuildCartridge() *Cartridge {
	c, err := b.BuildCartridge()
	if err != nil {
		panic(err)
	}
	return c
}

// GenerateTestROM creates an image from the configuration
func GenerateTestROM(config TestROMConfig) ([]byte, error) {
	if config.PRGSize <= 0 {
		return nil, fmt.Errorf("PRG ROM size cannot be zero")
	}

	prg := make([]byte, config.PRGSize*prgUnit)
	last := len(prg) - prgUnit
	if len(config.Program) > prgUnit-6 {
		return nil, fmt.Errorf("program of %d bytes does not fit in a PRG bank", len(config.Program))
	}
	copy(prg[last:], config.Program)

	vectors := len(prg) - 6
	for i, v := range []uint16{config.NMIVector, config.ResetVector, config.IRQVector} {
		prg[vectors+i*2] = uint8(v)
		prg[vectors+i*2+1] = uint8(v >> 8)
	}

	var chr []byte
	if config.CHRSize > 0 {
		chr = make([]byte, config.CHRSize*chrUnit)
		copy(chr, config.CHRData)
	}

	c := &Cartridge{
		Format:      FormatINES,
		MapperID:    config.MapperID,
		SubmapperID: config.Submapper,
		Mirroring:   config.Mirroring,
		Region:      config.Region,
		PRGROM:      prg,
		CHRROM:      chr,
		PRGRAMSize:  ramUnit,
		Trainer:     config.TrainerData,
	}
	if config.NES2 {
		c.Format = FormatNES2
	}
	if config.HasBattery {
		c.PRGRAMSizeBattery = ramUnit
	}
	if chr == nil {
		c.CHRRAMSize = chrUnit
	}
	return Encode(c)
}
