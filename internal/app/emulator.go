package app

import (
	"context"
	"sync"
	"time"

	"nescore/internal/cpu"
	"nescore/internal/logger"
	"nescore/internal/nes"
	"nescore/internal/ppu"
)

const logTag = "app"

// Emulator owns the console and the goroutine stepping it. Every access to
// the console goes through the emulator lock.
type Emulator struct {
	mu      sync.Mutex
	console *nes.NES
	log     *logger.Logger

	back     []uint32 // frame being rendered
	front    []uint32 // last completed frame
	frameSeq uint64

	paused bool

	// performance monitoring
	frameCount       uint64
	emulationTime    time.Duration
	averageFrameTime time.Duration
	lastFrameStart   time.Time
	actualFrameTime  time.Duration
}

// EmulatorStats is a snapshot of the loop counters
type EmulatorStats struct {
	Frames           uint64
	Paused           bool
	EmulationTime    time.Duration // time spent in the last RunFrame
	AverageFrameTime time.Duration // moving average of EmulationTime
	ActualFrameTime  time.Duration // wall time between the last two frames
}

// NewEmulator wraps a console
func NewEmulator(console *nes.NES, log *logger.Logger) *Emulator {
	if log == nil {
		log = logger.Discard
	}
	return &Emulator{
		console: console,
		log:     log,
		back:    make([]uint32, ppu.Width*ppu.Height),
		front:   make([]uint32, ppu.Width*ppu.Height),
	}
}

// Do runs fn with exclusive access to the console
func (e *Emulator) Do(fn func(console *nes.NES)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.console)
}

// RunFrame emulates one frame unless paused. The finished frame becomes
// visible through Frame.
func (e *Emulator) RunFrame() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return nil
	}
	return e.renderLocked()
}

func (e *Emulator) renderLocked() error {
	start := time.Now()
	if err := e.console.RenderFrame(e.back); err != nil {
		return err
	}
	e.back, e.front = e.front, e.back
	e.frameSeq++

	e.emulationTime = time.Since(start)
	if e.averageFrameTime == 0 {
		e.averageFrameTime = e.emulationTime
	} else {
		e.averageFrameTime = (e.averageFrameTime*15 + e.emulationTime) / 16
	}
	if !e.lastFrameStart.IsZero() {
		e.actualFrameTime = start.Sub(e.lastFrameStart)
	}
	e.lastFrameStart = start
	e.frameCount++
	return nil
}

// Run paces RunFrame at the frame rate of the console region until ctx is
// done. A region change takes effect on the next tick.
func (e *Emulator) Run(ctx context.Context) error {
	period := e.framePeriod()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	e.log.Infof(logTag, "emulation loop started at %v per frame", period)
	for {
		select {
		case <-ctx.Done():
			e.log.Infof(logTag, "emulation loop stopped after %d frames", e.Stats().Frames)
			return nil
		case <-ticker.C:
		}

		if err := e.RunFrame(); err != nil {
			e.log.Errorf(logTag, "frame failed: %v", err)
			return err
		}

		if p := e.framePeriod(); p != period {
			period = p
			ticker.Reset(period)
		}
	}
}

func (e *Emulator) framePeriod() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(float64(time.Second) / e.console.Params().FrameRate)
}

// Frame copies the last completed frame into dst and returns its sequence
// number, 0 before the first frame
func (e *Emulator) Frame(dst []uint32) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	copy(dst, e.front)
	return e.frameSeq
}

// FrameSeq returns the sequence number of the last completed frame
func (e *Emulator) FrameSeq() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameSeq
}

// Pause stops RunFrame from advancing the console
func (e *Emulator) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
}

// Resume undoes Pause
func (e *Emulator) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = false
}

// Paused reports whether the loop is paused
func (e *Emulator) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// StepInstruction executes one CPU instruction, paused or not, and returns
// the registers afterwards
func (e *Emulator) StepInstruction() (cpu.Registers, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.console.Step(); err != nil {
		return cpu.Registers{}, err
	}
	return e.console.CPU(), nil
}

// StepFrame renders one frame, paused or not
func (e *Emulator) StepFrame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderLocked()
}

// Reset presses the console reset button
func (e *Emulator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.console.Reset()
	e.log.Infof(logTag, "console reset")
}

// Stats returns the loop counters
func (e *Emulator) Stats() EmulatorStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EmulatorStats{
		Frames:           e.frameCount,
		Paused:           e.paused,
		EmulationTime:    e.emulationTime,
		AverageFrameTime: e.averageFrameTime,
		ActualFrameTime:  e.actualFrameTime,
	}
}
