// Package dma implements the two transfers that stall the CPU: the OAM copy
// started by a write to $4014 and the DMC sample fetch.
package dma

const (
	// OAMCycles is the CPU time an OAM transfer takes
	OAMCycles = 512

	dmcCyclesOdd  = 3
	dmcCyclesEven = 4
)

// Reader is the CPU bus the transfers read from
type Reader interface {
	Read(address uint16) uint8
}

// OAMWriter receives the bytes of an OAM transfer
type OAMWriter interface {
	WriteOAM(value uint8)
}

// DMA copies data on behalf of the CPU and counts the cycles the CPU loses
// while it does. The bytes are moved as soon as a transfer starts; the stall
// is paid afterwards through Tick.
type DMA struct {
	bus Reader
	oam OAMWriter

	stall int

	// totals since power on
	oamTransfers uint64
	dmcFetches   uint64
}

// New creates a DMA unit reading from bus and feeding oam
func New(bus Reader, oam OAMWriter) *DMA {
	return &DMA{bus: bus, oam: oam}
}

// StartOAM copies the 256 bytes of CPU page $XX00-$XXFF into OAM
func (d *DMA) StartOAM(page uint8) {
	base := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		d.oam.WriteOAM(d.bus.Read(base + i))
	}
	d.stall += OAMCycles
	d.oamTransfers++
}

// RequestDMC reads one sample byte for the APU
func (d *DMA) RequestDMC(address uint16, oddCycle bool) uint8 {
	if oddCycle {
		d.stall += dmcCyclesOdd
	} else {
		d.stall += dmcCyclesEven
	}
	d.dmcFetches++
	return d.bus.Read(address)
}

// Pending returns the number of CPU cycles still owed to transfers
func (d *DMA) Pending() int {
	return d.stall
}

// Tick consumes one stalled CPU cycle. It returns false when nothing is owed.
func (d *DMA) Tick() bool {
	if d.stall == 0 {
		return false
	}
	d.stall--
	return true
}

// Reset drops any outstanding stall
func (d *DMA) Reset() {
	d.stall = 0
}

// Stats returns the number of OAM transfers and DMC fetches since creation
func (d *DMA) Stats() (oamTransfers, dmcFetches uint64) {
	return d.oamTransfers, d.dmcFetches
}
