package graphics

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"nescore/internal/ppu"
)

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless operation.
// Every DumpEvery-th frame is written to OutputDir as a PNG.
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int
	outputDir  string
	dumpEvery  int
	image      *image.RGBA
	dumped     []string
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	return &HeadlessWindow{
		title:     title,
		width:     width,
		height:    height,
		running:   true,
		outputDir: b.config.OutputDir,
		dumpEvery: b.config.DumpEvery,
	}, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// SetTitle sets the window title
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns no events, there is no input in headless mode
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame counts the frame and dumps it when due
func (w *HeadlessWindow) RenderFrame(frame []uint32) error {
	if len(frame) < ppu.Width*ppu.Height {
		return fmt.Errorf("frame has %d pixels, want %d", len(frame), ppu.Width*ppu.Height)
	}
	w.frameCount++

	if w.outputDir == "" || w.dumpEvery <= 0 || w.frameCount%w.dumpEvery != 0 {
		return nil
	}
	return w.saveFrame(frame, filepath.Join(w.outputDir, fmt.Sprintf("frame_%06d.png", w.frameCount)))
}

func (w *HeadlessWindow) saveFrame(frame []uint32, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}

	w.image = FrameImage(frame, w.image)
	if err := png.Encode(file, w.image); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return err
	}

	w.dumped = append(w.dumped, filename)
	return nil
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// GetFrameCount returns the number of frames rendered
func (w *HeadlessWindow) GetFrameCount() int {
	return w.frameCount
}

// Dumped returns the files written so far
func (w *HeadlessWindow) Dumped() []string {
	return w.dumped
}
