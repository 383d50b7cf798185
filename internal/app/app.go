package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"nescore/internal/audio"
	"nescore/internal/cartridge"
	"nescore/internal/graphics"
	"nescore/internal/input"
	"nescore/internal/logger"
	"nescore/internal/nes"
	"nescore/internal/ppu"
)

// Application ties the console, the pacing loop, the window and the save
// data together
type Application struct {
	config  *Config
	log     *logger.Logger
	options Options

	console  *nes.NES
	emulator *Emulator
	saves    *NVRAMStore

	backend graphics.Backend
	window  graphics.Window

	joypad *input.Joypad
	zapper *input.Zapper

	audioMu    sync.Mutex
	audioQueue *graphics.SampleQueue
	wav        *audio.WAVWriter

	romPath   string
	frame     []uint32
	lastSeq   uint64
	startTime time.Time
}

// ApplicationError represents application-level errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// Options are the per-run settings that do not belong in the config file
type Options struct {
	// Headless replaces the configured video backend with the headless one
	Headless bool
	// DumpEvery writes every n-th headless frame to the screenshots
	// directory, 0 disables dumps
	DumpEvery int
}

// NewApplication builds the application from a loaded configuration
func NewApplication(config *Config, log *logger.Logger, options Options) (*Application, error) {
	if log == nil {
		log = logger.Discard
	}
	app := &Application{
		config:    config,
		log:       log,
		options:   options,
		frame:     make([]uint32, ppu.Width*ppu.Height),
		startTime: time.Now(),
	}

	if err := app.initializeComponents(); err != nil {
		return nil, &ApplicationError{Component: "initialization", Operation: "component setup", Err: err}
	}
	if err := app.initializeGraphicsBackend(); err != nil {
		return nil, &ApplicationError{Component: "graphics", Operation: "backend setup", Err: err}
	}
	return app, nil
}

func (app *Application) initializeComponents() error {
	app.console = nes.New(nes.WithLogger(app.log))

	core, err := app.config.Core()
	if err != nil {
		return err
	}
	if err := app.console.Apply(core); err != nil {
		return err
	}
	app.console.SetAudioCallback(app.consumeAudio)

	app.joypad = input.NewJoypad()
	if err := app.console.SetInputDevice(input.Port1, app.joypad); err != nil {
		return err
	}
	switch app.config.Input.Port2 {
	case "joypad":
		err = app.console.SetInputDevice(input.Port2, input.NewJoypad())
	case "zapper":
		app.zapper = input.NewZapper()
		err = app.console.SetInputDevice(input.Port2, app.zapper)
	default:
		err = app.console.SetInputDevice(input.Port2, nil)
	}
	if err != nil {
		return err
	}

	app.emulator = NewEmulator(app.console, app.log)
	app.saves = NewNVRAMStore(app.config.Paths.SaveData)
	return nil
}

func (app *Application) initializeGraphicsBackend() error {
	backendType := graphics.BackendType(app.config.Video.Backend)
	if app.options.Headless {
		backendType = graphics.BackendHeadless
	}

	backend, err := graphics.CreateBackend(backendType)
	if err != nil {
		return err
	}

	width, height := app.config.GetWindowResolution()
	cfg := graphics.Config{
		WindowTitle:  "nescore",
		WindowWidth:  width,
		WindowHeight: height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		KeyMap:       app.config.Input.Player1Keys.buttons(),
		OutputDir:    app.config.Paths.Screenshots,
		DumpEvery:    app.options.DumpEvery,
	}
	if err := backend.Initialize(cfg); err != nil {
		return err
	}

	window, err := backend.CreateWindow(cfg.WindowTitle, width, height)
	if err != nil {
		backend.Cleanup()
		return err
	}

	app.backend = backend
	app.window = window
	app.log.Infof(logTag, "using %s backend", backend.GetName())
	return nil
}

// buttons maps key names to joypad buttons. Unset keys are skipped.
func (k KeyMapping) buttons() map[string]input.Button {
	m := make(map[string]input.Button, 8)
	for name, button := range map[string]input.Button{
		k.A:      input.ButtonA,
		k.B:      input.ButtonB,
		k.Select: input.ButtonSelect,
		k.Start:  input.ButtonStart,
		k.Up:     input.ButtonUp,
		k.Down:   input.ButtonDown,
		k.Left:   input.ButtonLeft,
		k.Right:  input.ButtonRight,
	} {
		if name != "" {
			m[name] = button
		}
	}
	return m
}

// LoadROM inserts a cartridge and restores its save data
func (app *Application) LoadROM(romPath string) error {
	cart, err := cartridge.LoadFile(romPath)
	if err != nil {
		return &ApplicationError{Component: "cartridge", Operation: "load", Err: err}
	}

	var insertErr error
	app.emulator.Do(func(console *nes.NES) {
		insertErr = console.SetCartridge(cart)
	})
	if insertErr != nil {
		return &ApplicationError{Component: "cartridge", Operation: "insert", Err: insertErr}
	}
	app.romPath = romPath

	if cart.HasBattery() {
		if err := app.loadNVRAM(cart); err != nil {
			app.log.Warnf(logTag, "save data not restored: %v", err)
		}
	}

	title := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
	app.window.SetTitle("nescore - " + title)
	app.log.Infof(logTag, "loaded %s (%s, mapper %s)", romPath, cart.Region, cart.Mapper)
	return nil
}

func (app *Application) loadNVRAM(cart *cartridge.Cartridge) error {
	data, err := app.saves.Load(cart.Fingerprint)
	if err != nil || data == nil {
		return err
	}

	app.emulator.Do(func(console *nes.NES) {
		err = console.SetNVRAM(data)
	})
	if err == nil {
		app.log.Infof(logTag, "restored %d bytes of save data", len(data))
	}
	return err
}

// SaveNVRAM writes the battery backed RAM of the inserted cartridge. It does
// nothing for cartridges without a battery.
func (app *Application) SaveNVRAM() error {
	var (
		cart *cartridge.Cartridge
		data []byte
	)
	app.emulator.Do(func(console *nes.NES) {
		cart = console.Cartridge()
		data = console.NVRAM()
	})
	if cart == nil || data == nil {
		return nil
	}
	if err := app.saves.Save(cart.Fingerprint, data); err != nil {
		return err
	}
	app.log.Infof(logTag, "saved %d bytes of save data", len(data))
	return nil
}

// RecordAudio writes the audio stream to a WAV file until Cleanup. A bare
// file name is placed in the recordings directory.
func (app *Application) RecordAudio(path string) error {
	if !app.config.Audio.Enabled || app.config.Audio.SampleRate == 0 {
		return fmt.Errorf("audio is disabled")
	}
	if dir := app.config.Paths.Recordings; dir != "" && filepath.Base(path) == path {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create recordings directory: %w", err)
		}
		path = filepath.Join(dir, path)
	}
	wav, err := audio.CreateWAV(path, app.config.Audio.SampleRate)
	if err != nil {
		return err
	}

	app.audioMu.Lock()
	app.wav = wav
	app.audioMu.Unlock()
	app.log.Infof(logTag, "recording audio to %s", path)
	return nil
}

// consumeAudio receives the sample batches of the console
func (app *Application) consumeAudio(samples []float32) {
	app.audioMu.Lock()
	defer app.audioMu.Unlock()

	if app.audioQueue != nil {
		app.audioQueue.Push(samples)
	}
	if app.wav != nil {
		app.wav.Consume(samples)
	}
}

// Run plays until the window closes or ctx is done. Headless applications
// use RunFrames instead.
func (app *Application) Run(ctx context.Context) error {
	if app.console.State() == nes.StateNoCartridge {
		return nes.ErrNoCartridge
	}
	window, ok := graphics.AsEbitengineWindow(app.window)
	if !ok {
		return fmt.Errorf("%s backend has no event loop", app.backend.GetName())
	}

	if app.config.Audio.Enabled && app.config.Audio.SampleRate > 0 {
		queue := graphics.NewSampleQueue(app.config.Audio.SampleRate / 5)
		if err := window.StartAudio(app.config.Audio.SampleRate, queue); err != nil {
			app.log.Warnf(logTag, "audio disabled: %v", err)
		} else {
			app.audioMu.Lock()
			app.audioQueue = queue
			app.audioMu.Unlock()
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	var loopErr error
	go func() {
		loopErr = app.emulator.Run(ctx)
		close(done)
	}()

	window.SetUpdateFunc(func() error {
		select {
		case <-done:
			if loopErr != nil {
				return loopErr
			}
			return graphics.ErrWindowClosed
		default:
		}
		return app.update()
	})
	err := window.Run()

	cancel()
	<-done
	if err == nil {
		err = loopErr
	}
	return err
}

// update handles input and presents the newest frame, once per window tick
func (app *Application) update() error {
	for _, event := range app.window.PollEvents() {
		if err := app.handleEvent(event); err != nil {
			return err
		}
	}

	if seq := app.emulator.Frame(app.frame); seq != app.lastSeq {
		app.lastSeq = seq
		if err := app.window.RenderFrame(app.frame); err != nil {
			return err
		}
		if app.config.Debug.ShowFPS && seq%60 == 0 {
			app.window.SetTitle(fmt.Sprintf("nescore - %.1f fps", app.GetFPS()))
		}
	}
	return nil
}

func (app *Application) handleEvent(event graphics.InputEvent) error {
	switch event.Type {
	case graphics.InputEventTypeQuit:
		return graphics.ErrWindowClosed
	case graphics.InputEventTypeReset:
		app.emulator.Reset()
	case graphics.InputEventTypeButton:
		app.emulator.Do(func(*nes.NES) {
			app.joypad.SetButton(event.Button, event.Pressed)
		})
	case graphics.InputEventTypePointer:
		if app.zapper != nil {
			app.emulator.Do(func(*nes.NES) {
				app.zapper.Aim(event.X, event.Y)
			})
		}
	case graphics.InputEventTypeTrigger:
		if app.zapper != nil {
			app.emulator.Do(func(*nes.NES) {
				app.zapper.Aim(event.X, event.Y)
				app.zapper.SetTrigger(event.Pressed)
			})
		}
	}
	return nil
}

// RunFrames emulates count frames as fast as possible and hands each one to
// the window
func (app *Application) RunFrames(count int) error {
	for i := 0; i < count; i++ {
		if err := app.emulator.StepFrame(); err != nil {
			return err
		}
		app.lastSeq = app.emulator.Frame(app.frame)
		if err := app.window.RenderFrame(app.frame); err != nil {
			return err
		}
	}
	app.log.Infof(logTag, "ran %d frames in %v", count, time.Since(app.startTime).Round(time.Millisecond))
	return nil
}

// Reset presses the console reset button
func (app *Application) Reset() {
	app.emulator.Reset()
}

// Emulator returns the pacing loop, the only safe handle on the console
// once the application runs
func (app *Application) Emulator() *Emulator {
	return app.emulator
}

// Window returns the active window
func (app *Application) Window() graphics.Window {
	return app.window
}

// GetFPS returns the measured frame rate
func (app *Application) GetFPS() float64 {
	stats := app.emulator.Stats()
	if stats.ActualFrameTime <= 0 {
		return 0
	}
	return float64(time.Second) / float64(stats.ActualFrameTime)
}

// GetFrameCount returns the frames emulated so far
func (app *Application) GetFrameCount() uint64 {
	return app.emulator.Stats().Frames
}

// GetUptime returns how long the application has been running
func (app *Application) GetUptime() time.Duration {
	return time.Since(app.startTime)
}

// GetROMPath returns the path of the inserted ROM
func (app *Application) GetROMPath() string {
	return app.romPath
}

// GetConfig returns the configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// Cleanup saves NVRAM, finishes the audio recording and closes the window
func (app *Application) Cleanup() error {
	var errs []error
	if err := app.SaveNVRAM(); err != nil {
		errs = append(errs, err)
	}

	app.audioMu.Lock()
	if app.wav != nil {
		if err := app.wav.Close(); err != nil {
			errs = append(errs, err)
		}
		app.wav = nil
	}
	app.audioQueue = nil
	app.audioMu.Unlock()

	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.backend != nil {
		if err := app.backend.Cleanup(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
