// Package mapper implements the cartridge bank switching chips.
package mapper

import (
	"fmt"

	"nescore/internal/cartridge"
)

// Mapper is the cartridge side of the CPU and PPU buses
type Mapper interface {
	// Reset restores the power-up banking. NVRAM contents are kept.
	Reset()
	// ClearRAM zeroes the PRG RAM and CHR RAM that is not battery backed
	ClearRAM()

	// ReadPRG reads CPU addresses $4020-$FFFF
	ReadPRG(address uint16) uint8
	// Write handles CPU writes to $4020-$FFFF: PRG RAM and chip registers
	Write(address uint16, value uint8)

	// ReadCHR reads PPU addresses $0000-$1FFF
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)

	// Tick is called by the PPU once per rendered scanline
	Tick()

	// NVRAM returns the battery backed RAM, or nil
	NVRAM() []byte
}

// Host is the part of the console a mapper can drive. The mapper does not
// own it and must not keep other references into the console.
type Host interface {
	SetMirroring(m cartridge.Mirroring)
	SetIRQ(active bool)
}

type nopHost struct{}

func (nopHost) SetMirroring(cartridge.Mirroring) {}
func (nopHost) SetIRQ(bool)                      {}

// UnsupportedMapperError is returned by New for a board with no implementation
type UnsupportedMapperError struct {
	ID   uint16
	Name string
}

func (e *UnsupportedMapperError) Error() string {
	return fmt.Sprintf("unsupported mapper %d (%s)", e.ID, e.Name)
}

var constructors = map[string]func(b *banks) Mapper{
	cartridge.MapperNROM:        newNROM,
	cartridge.MapperMMC1:        newMMC1,
	cartridge.MapperUNROM:       newUNROM,
	cartridge.MapperCNROM:       newCNROM,
	cartridge.MapperMMC3:        newMMC3,
	cartridge.MapperAOROM:       newAOROM,
	cartridge.MapperBNROM:       newBNROM,
	cartridge.MapperColorDreams: newColorDreams,
	cartridge.MapperNINA001:     newNINA001,
}

// Supported lists the board names New accepts
func Supported() []string {
	return []string{
		cartridge.MapperNROM, cartridge.MapperMMC1, cartridge.MapperMMC3,
		cartridge.MapperUNROM, cartridge.MapperCNROM, cartridge.MapperAOROM,
		cartridge.MapperBNROM, cartridge.MapperColorDreams, cartridge.MapperNINA001,
	}
}

// New builds the mapper for a cartridge and resets it. A nil host is
// replaced by one that ignores mirroring and IRQ changes.
func New(cart *cartridge.Cartridge, host Host) (Mapper, error) {
	ctor, ok := constructors[cart.Mapper]
	if !ok {
		return nil, &UnsupportedMapperError{ID: cart.MapperID, Name: cart.Mapper}
	}
	if host == nil {
		host = nopHost{}
	}
	m := ctor(newBanks(cart, host))
	m.Reset()
	return m, nil
}
