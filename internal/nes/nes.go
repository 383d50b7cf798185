// Package nes wires the CPU, PPU, APU, DMA, input ports and cartridge into a
// console and drives them in lockstep.
package nes

import (
	"errors"
	"fmt"

	"nescore/internal/apu"
	"nescore/internal/audio"
	"nescore/internal/cartridge"
	"nescore/internal/cpu"
	"nescore/internal/dma"
	"nescore/internal/input"
	"nescore/internal/logger"
	"nescore/internal/mapper"
	"nescore/internal/memory"
	"nescore/internal/ppu"
	"nescore/internal/region"
)

const logTag = "nes"

var (
	ErrNoCartridge = errors.New("no cartridge inserted")
	ErrBufferSize  = errors.New("frame buffer too small")
	ErrNVRAMSize   = errors.New("NVRAM size mismatch")
)

// State is the lifecycle of the console
type State uint8

const (
	StateNoCartridge State = iota
	StateStopped
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateNoCartridge:
		return "no-cartridge"
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// NES is one console. It is not safe for concurrent use.
type NES struct {
	cpu    *cpu.CPU
	cpuMem *memory.CPUMemory
	ppu    *ppu.PPU
	ppuMem *memory.PPUMemory
	apu    *apu.APU
	dma    *dma.DMA
	ports  *input.Ports

	sampler *audio.Sampler

	cart   *cartridge.Cartridge
	mapper mapper.Mapper

	override region.Region
	params   *region.Parameters
	clip     ClipMode

	// PPU dots owed, in units of 1/PPUTicksDen
	ppuDebt int

	state  State
	frames uint64

	log *logger.Logger
}

// Option configures a console at construction
type Option func(*NES)

// WithLogger sets the log sink. The default drops everything.
func WithLogger(l *logger.Logger) Option {
	return func(n *NES) {
		n.log = l
	}
}

// New builds a console with no cartridge and a joypad in port 1
func New(opts ...Option) *NES {
	n := &NES{
		log:    logger.Discard,
		params: region.Params(region.NTSC),
	}
	for _, opt := range opts {
		opt(n)
	}

	n.ppuMem = memory.NewPPUMemory()
	n.ppu = ppu.New(n.ppuMem)
	n.apu = apu.New()
	n.cpuMem = memory.NewCPUMemory(n.ppu, n.apu)
	n.cpu = cpu.New(n.cpuMem)
	n.dma = dma.New(n.cpuMem, n.ppu)
	n.ports = input.NewPorts()
	n.sampler = audio.NewSampler(float64(n.params.CPUClock), audio.DefaultSampleRate)

	n.cpuMem.SetInput(n.ports)
	n.cpuMem.SetOAMDMA(n.dma.StartOAM)
	n.apu.SetSampleReader(n.dma)
	n.ppu.SetNMICallback(func() { n.cpu.ActivateInterrupt(cpu.InterruptNMI) })
	n.ppu.SetScanlineCallback(n.scanline)

	n.applyRegion()
	return n
}

// mapperHost lets the mapper drive nametable mirroring and its IRQ line
type mapperHost struct {
	n *NES
}

func (h mapperHost) SetMirroring(m cartridge.Mirroring) {
	h.n.ppuMem.SetMirroring(m)
}

func (h mapperHost) SetIRQ(active bool) {
	h.n.setInterrupt(cpu.InterruptIRQMapper, active)
}

func (n *NES) setInterrupt(i cpu.Interrupt, active bool) {
	if active {
		n.cpu.ActivateInterrupt(i)
	} else {
		n.cpu.ClearInterrupt(i)
	}
}

func (n *NES) scanline() {
	if n.mapper != nil {
		n.mapper.Tick()
	}
}

// SetCartridge inserts a cartridge and powers the console on. nil ejects the
// current one. Mapper construction errors are returned unmodified and leave
// the console empty.
func (n *NES) SetCartridge(c *cartridge.Cartridge) error {
	n.cart, n.mapper = nil, nil
	n.cpuMem.SetCartridge(nil)
	n.ppuMem.SetCHR(nil)
	n.state = StateNoCartridge

	if c == nil {
		n.applyRegion()
		n.log.Infof(logTag, "cartridge ejected")
		return nil
	}

	m, err := mapper.New(c, mapperHost{n})
	if err != nil {
		n.applyRegion()
		return err
	}

	n.cart, n.mapper = c, m
	n.cpuMem.SetCartridge(m)
	n.ppuMem.SetCHR(m)
	n.state = StateStopped
	n.applyRegion()

	n.log.Infof(logTag, "inserted %s cartridge (mapper %d), %dKB PRG, %dKB CHR, region %v",
		c.Mapper, c.MapperID, len(c.PRGROM)/1024, len(c.CHRROM)/1024, n.UsedRegion())

	n.Power()
	return nil
}

// Cartridge returns the inserted cartridge, or nil
func (n *NES) Cartridge() *cartridge.Cartridge {
	return n.cart
}

// Power cycles the console. Cartridge RAM that is battery backed survives.
func (n *NES) Power() {
	n.cpuMem.Reset()
	n.ppuMem.Reset()
	n.ppu.Power()
	n.apu.Power()
	n.dma.Reset()
	n.sampler.Reset()
	n.ppuDebt = 0
	n.frames = 0
	if n.mapper != nil {
		n.mapper.ClearRAM()
		n.mapper.Reset()
	}
	n.cpu.Power()
	n.log.Debugf(logTag, "power on, PC=$%04X", n.cpu.PC)
}

// Reset presses the reset button
func (n *NES) Reset() {
	n.ppu.Reset()
	n.apu.Reset()
	n.dma.Reset()
	if n.mapper != nil {
		n.mapper.Reset()
	}
	n.cpu.ActivateInterrupt(cpu.InterruptReset)
	n.log.Debugf(logTag, "reset")
}

// SetRegion overrides the cartridge region. region.Auto removes the override.
func (n *NES) SetRegion(r region.Region) {
	n.override = r
	n.applyRegion()
}

// UsedRegion is the region the console runs at: the override, else the
// cartridge region, else NTSC
func (n *NES) UsedRegion() region.Region {
	cartRegion := region.Auto
	if n.cart != nil {
		cartRegion = n.cart.Region
	}
	return region.Resolve(n.override, cartRegion)
}

// Params returns the timing table in use
func (n *NES) Params() *region.Parameters {
	return n.params
}

func (n *NES) applyRegion() {
	params := region.Params(n.UsedRegion())
	if params == n.params {
		return
	}
	n.params = params
	n.ppu.SetRegion(params)
	n.apu.SetRegion(params)
	n.sampler.SetClock(float64(params.CPUClock))
	n.ppuDebt = 0
	n.log.Infof(logTag, "region set to %v", params.Region)
}

// State returns the lifecycle state
func (n *NES) State() State {
	return n.state
}

// Frames returns the number of frames rendered since power on
func (n *NES) Frames() uint64 {
	return n.frames
}

// Step runs one CPU instruction, or the pending DMA stall, and the PPU and
// APU cycles that go with it. It returns the CPU cycles elapsed.
func (n *NES) Step() (int, error) {
	if n.mapper == nil {
		return 0, ErrNoCartridge
	}
	n.state = StateRunning
	defer func() { n.state = StateStopped }()
	return n.step(), nil
}

func (n *NES) step() int {
	cycles := 0
	for n.dma.Tick() {
		cycles++
	}
	if cycles == 0 {
		cycles = n.cpu.Step()
	}

	for i := 0; i < cycles; i++ {
		n.clock()
	}

	n.setInterrupt(cpu.InterruptIRQAPU, n.apu.FrameIRQ())
	n.setInterrupt(cpu.InterruptIRQDMC, n.apu.DMCIRQ())
	return cycles
}

// clock runs one CPU cycle worth of APU and PPU time
func (n *NES) clock() {
	n.apu.Tick()
	n.sampler.Add(n.apu.Outputs())

	n.ppuDebt += n.params.PPUTicksNum
	for n.ppuDebt >= n.params.PPUTicksDen {
		n.ppuDebt -= n.params.PPUTicksDen
		n.ppu.Tick()
	}
}

// RenderFrame runs the console until the PPU finishes a frame and copies it
// into buf, which must hold ppu.Width*ppu.Height pixels in 0xAARRGGBB.
// Audio produced meanwhile is flushed to the audio callback.
func (n *NES) RenderFrame(buf []uint32) error {
	if len(buf) < ppu.Width*ppu.Height {
		return fmt.Errorf("%w: %d pixels, need %d", ErrBufferSize, len(buf), ppu.Width*ppu.Height)
	}
	if n.mapper == nil {
		return ErrNoCartridge
	}

	n.state = StateRunning
	defer func() { n.state = StateStopped }()

	for !n.ppu.IsFrameAvailable() {
		n.step()
	}
	frame := n.ppu.Frame()
	copy(buf, frame[:])
	if n.clipping() {
		clipRows(buf)
	}

	n.sampler.Flush()
	n.frames++
	return nil
}

func (n *NES) clipping() bool {
	switch n.clip {
	case ClipOn:
		return true
	case ClipOff:
		return false
	}
	return n.params.ClipTopBottom
}

const (
	clipLines = 8
	black     = 0xFF000000
)

func clipRows(buf []uint32) {
	for y := 0; y < clipLines; y++ {
		top := buf[y*ppu.Width : (y+1)*ppu.Width]
		bottom := buf[(ppu.Height-1-y)*ppu.Width : (ppu.Height-y)*ppu.Width]
		for x := range top {
			top[x] = black
			bottom[x] = black
		}
	}
}

// RenderDebugFrame draws the pattern tables and palette RAM into buf
func (n *NES) RenderDebugFrame(buf []uint32) error {
	if len(buf) < ppu.Width*ppu.Height {
		return fmt.Errorf("%w: %d pixels, need %d", ErrBufferSize, len(buf), ppu.Width*ppu.Height)
	}
	return n.ppu.RenderDebugFrame(buf)
}

// SetInputDevice plugs a device into port 1 or 2. nil empties the port.
func (n *NES) SetInputDevice(port int, device input.Device) error {
	if err := n.ports.Attach(port, device); err != nil {
		return err
	}
	if z, ok := device.(*input.Zapper); ok {
		z.SetLightSensor(n.senseLight)
	}
	return nil
}

// InputDevice returns the device in a port, or nil
func (n *NES) InputDevice(port int) input.Device {
	return n.ports.Device(port)
}

func (n *NES) SetAudioSampleRate(hz int) error {
	return n.sampler.SetSampleRate(hz)
}

// SetAudioCallback sets the receiver of audio batches. nil drops the audio.
func (n *NES) SetAudioCallback(cb audio.Callback) {
	n.sampler.SetCallback(cb)
}

// SetAudioVolume sets the gain of one channel, in [0, 1]
func (n *NES) SetAudioVolume(ch apu.Channel, gain float64) {
	n.sampler.SetGain(ch, gain)
}

// NVRAM returns a copy of the battery backed RAM, or nil when the cartridge
// has none
func (n *NES) NVRAM() []byte {
	if n.mapper == nil {
		return nil
	}
	nv := n.mapper.NVRAM()
	if nv == nil {
		return nil
	}
	out := make([]byte, len(nv))
	copy(out, nv)
	return out
}

// SetNVRAM restores the battery backed RAM. data must match its size exactly.
func (n *NES) SetNVRAM(data []byte) error {
	if n.mapper == nil {
		return ErrNoCartridge
	}
	nv := n.mapper.NVRAM()
	if len(nv) != len(data) {
		return fmt.Errorf("%w: got %d bytes, cartridge has %d", ErrNVRAMSize, len(data), len(nv))
	}
	copy(nv, data)
	return nil
}

// CPU returns the CPU registers
func (n *NES) CPU() cpu.Registers {
	return n.cpu.Snapshot()
}

// PPU returns the PPU registers and beam position
func (n *NES) PPU() ppu.Registers {
	return n.ppu.Snapshot()
}

// Peek reads CPU memory without side effects
func (n *NES) Peek(address uint16) uint8 {
	return n.cpuMem.Peek(address)
}

// Disassemble formats the instruction at address
func (n *NES) Disassemble(address uint16) (string, int) {
	return cpu.Disassemble(n.cpuMem.Peek, address)
}
