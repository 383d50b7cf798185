//go:build !headless
// +build !headless

package graphics

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"nescore/internal/input"
	"nescore/internal/ppu"
)

// ErrWindowClosed is returned from the game loop when the user quits
var ErrWindowClosed = errors.New("window closed")

const audioBufferSize = 60 * time.Millisecond

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
	game        *EbitengineGame
}

// EbitengineWindow implements the Window interface for Ebitengine
type EbitengineWindow struct {
	backend *EbitengineBackend
	title   string
	width   int
	height  int
	game    *EbitengineGame
	running bool
	events  []InputEvent

	keys       map[ebiten.Key]input.Button
	updateFunc func() error

	audioContext *audio.Context
	player       *audio.Player
}

// EbitengineGame implements ebiten.Game for the NES emulator
type EbitengineGame struct {
	window       *EbitengineWindow
	frameImage   *ebiten.Image
	imageBuffer  *image.RGBA
	windowWidth  int
	windowHeight int

	// placement of the picture inside the window, set by Draw
	scale            float64
	offsetX, offsetY float64

	lastX, lastY int
	hasFrame     bool
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("Ebitengine backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates an Ebitengine window. Key names in the config key
// map use Ebitengine spelling ("ArrowUp", "X", "Enter").
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	keys := make(map[ebiten.Key]input.Button, len(b.config.KeyMap))
	for name, button := range b.config.KeyMap {
		var key ebiten.Key
		if err := key.UnmarshalText([]byte(name)); err != nil {
			return nil, fmt.Errorf("key map: %w", err)
		}
		keys[key] = button
	}

	game := &EbitengineGame{
		windowWidth:  width,
		windowHeight: height,
		frameImage:   ebiten.NewImage(ppu.Width, ppu.Height),
		imageBuffer:  image.NewRGBA(image.Rect(0, 0, ppu.Width, ppu.Height)),
		lastX:        -1,
		lastY:        -1,
	}

	window := &EbitengineWindow{
		backend: b,
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		running: true,
		keys:    keys,
	}

	game.window = window
	b.game = game

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(b.config.VSync)
	ebiten.SetFullscreen(b.config.Fullscreen)

	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false, Ebitengine always opens a window
func (b *EbitengineBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns window dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns and clears the pending events
func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

// RenderFrame uploads a frame. It must be called from the update function.
func (w *EbitengineWindow) RenderFrame(frame []uint32) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}
	if len(frame) < ppu.Width*ppu.Height {
		return fmt.Errorf("frame has %d pixels, want %d", len(frame), ppu.Width*ppu.Height)
	}

	w.game.imageBuffer = FrameImage(frame, w.game.imageBuffer)
	w.game.frameImage.WritePixels(w.game.imageBuffer.Pix)
	w.game.hasFrame = true
	return nil
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	if w.player != nil {
		return w.player.Close()
	}
	return nil
}

// Run starts the Ebitengine game loop and blocks until the window closes
func (w *EbitengineWindow) Run() error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	err := ebiten.RunGame(w.game)
	if errors.Is(err, ErrWindowClosed) {
		return nil
	}
	return err
}

// SetUpdateFunc sets the function called once per game tick, after input
// has been polled. A non-nil error ends the game loop.
func (w *EbitengineWindow) SetUpdateFunc(updateFunc func() error) {
	w.updateFunc = updateFunc
}

// StartAudio opens the audio device at sampleRate and plays from queue.
// Only one audio context may exist per process.
func (w *EbitengineWindow) StartAudio(sampleRate int, queue *SampleQueue) error {
	if w.player != nil {
		return fmt.Errorf("audio already started")
	}

	w.audioContext = audio.NewContext(sampleRate)
	player, err := w.audioContext.NewPlayerF32(queue)
	if err != nil {
		return fmt.Errorf("failed to create audio player: %w", err)
	}
	player.SetBufferSize(audioBufferSize)
	player.Play()

	w.player = player
	return nil
}

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	if g.window == nil {
		return nil
	}

	g.processInput()

	if g.window.updateFunc != nil {
		if err := g.window.updateFunc(); err != nil {
			return err
		}
	}
	if !g.window.running {
		return ErrWindowClosed
	}
	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{A: 0xFF})
	if !g.hasFrame {
		return
	}

	// fit the picture into the window keeping its aspect ratio
	scaleX := float64(g.windowWidth) / ppu.Width
	scaleY := float64(g.windowHeight) / ppu.Height
	g.scale = scaleX
	if scaleY < scaleX {
		g.scale = scaleY
	}
	g.offsetX = (float64(g.windowWidth) - ppu.Width*g.scale) / 2
	g.offsetY = (float64(g.windowHeight) - ppu.Height*g.scale) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(g.scale, g.scale)
	op.GeoM.Translate(g.offsetX, g.offsetY)
	screen.DrawImage(g.frameImage, op)
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

// processInput turns key and mouse changes into events
func (g *EbitengineGame) processInput() {
	w := g.window

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		w.events = append(w.events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		w.events = append(w.events, InputEvent{Type: InputEventTypeReset, Pressed: true})
	}

	for key, button := range w.keys {
		if inpututil.IsKeyJustPressed(key) {
			w.events = append(w.events, InputEvent{Type: InputEventTypeButton, Button: button, Pressed: true})
		} else if inpututil.IsKeyJustReleased(key) {
			w.events = append(w.events, InputEvent{Type: InputEventTypeButton, Button: button, Pressed: false})
		}
	}

	x, y := g.pictureCoordinates(ebiten.CursorPosition())
	if x != g.lastX || y != g.lastY {
		g.lastX, g.lastY = x, y
		w.events = append(w.events, InputEvent{Type: InputEventTypePointer, X: x, Y: y})
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		w.events = append(w.events, InputEvent{Type: InputEventTypeTrigger, Pressed: true, X: x, Y: y})
	} else if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		w.events = append(w.events, InputEvent{Type: InputEventTypeTrigger, Pressed: false, X: x, Y: y})
	}
}

// pictureCoordinates maps a window position onto the 256x240 picture
func (g *EbitengineGame) pictureCoordinates(cx, cy int) (int, int) {
	if g.scale == 0 {
		return -1, -1
	}
	x := int((float64(cx) - g.offsetX) / g.scale)
	y := int((float64(cy) - g.offsetY) / g.scale)
	if float64(cx) < g.offsetX || float64(cy) < g.offsetY || x >= ppu.Width || y >= ppu.Height {
		return -1, -1
	}
	return x, y
}
