// Package graphics provides an abstraction layer for different rendering backends
package graphics

import (
	"fmt"
	"image"
	"image/color"

	"nescore/internal/input"
	"nescore/internal/ppu"
)

// Backend represents a graphics rendering backend
type Backend interface {
	// Initialize initializes the graphics backend
	Initialize(config Config) error

	// CreateWindow creates a window for rendering
	CreateWindow(title string, width, height int) (Window, error)

	// Cleanup releases all resources
	Cleanup() error

	// IsHeadless returns true if running in headless mode
	IsHeadless() bool

	// GetName returns the backend name for identification
	GetName() string
}

// Window represents a rendering window
type Window interface {
	// SetTitle sets the window title
	SetTitle(title string)

	// GetSize returns window dimensions
	GetSize() (width, height int)

	// ShouldClose returns true if window should close
	ShouldClose() bool

	// PollEvents returns the input events seen since the last call
	PollEvents() []InputEvent

	// RenderFrame presents a 256x240 frame in 0xAARRGGBB
	RenderFrame(frame []uint32) error

	// Cleanup releases window resources
	Cleanup() error
}

// Config contains configuration for graphics backends
type Config struct {
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	VSync        bool

	// KeyMap binds backend key names to joypad buttons
	KeyMap map[string]input.Button

	// OutputDir receives headless frame dumps, DumpEvery selects which frames
	OutputDir string
	DumpEvery int
}

// InputEvent represents an input event from the window
type InputEvent struct {
	Type    InputEventType
	Button  input.Button
	Pressed bool

	// X and Y are picture coordinates for pointer events, -1 when the
	// pointer is outside the picture
	X, Y int
}

// InputEventType represents the type of input event
type InputEventType int

const (
	InputEventTypeButton InputEventType = iota
	InputEventTypePointer
	InputEventTypeTrigger
	InputEventTypeReset
	InputEventTypeQuit
)

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
)

// CreateBackend creates a graphics backend of the specified type
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine:
		return NewEbitengineBackend(), nil
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	}
	return nil, fmt.Errorf("unknown graphics backend %q", backendType)
}

// AsEbitengineWindow tries to cast a Window to EbitengineWindow
func AsEbitengineWindow(window Window) (*EbitengineWindow, bool) {
	if ebitengineWindow, ok := window.(*EbitengineWindow); ok {
		return ebitengineWindow, true
	}
	return nil, false
}

// FrameImage converts a frame into an RGBA image, reusing img when it is
// the right size
func FrameImage(frame []uint32, img *image.RGBA) *image.RGBA {
	if img == nil || img.Rect.Dx() != ppu.Width || img.Rect.Dy() != ppu.Height {
		img = image.NewRGBA(image.Rect(0, 0, ppu.Width, ppu.Height))
	}
	for i, pixel := range frame[:ppu.Width*ppu.Height] {
		img.SetRGBA(i%ppu.Width, i/ppu.Width, color.RGBA{
			R: uint8(pixel >> 16),
			G: uint8(pixel >> 8),
			B: uint8(pixel),
			A: 0xFF,
		})
	}
	return img
}
