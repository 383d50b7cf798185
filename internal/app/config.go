// Package app provides configuration management, save data and the
// emulation loop for the nescore frontends.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nescore/internal/apu"
	"nescore/internal/logger"
	"nescore/internal/nes"
	"nescore/internal/ppu"
	"nescore/internal/region"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Audio     AudioConfig     `json:"audio"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Fullscreen bool `json:"fullscreen"`
	Scale      int  `json:"scale"` // NES resolution multiplier
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	Backend    string  `json:"backend"` // "ebitengine", "headless"
	VSync      bool    `json:"vsync"`
	Palette    string  `json:"palette"` // path to a 192 byte .pal file, empty for built-in
	Hue        float64 `json:"hue"`     // degrees
	Saturation float64 `json:"saturation"`
	Clip       string  `json:"clip"` // "auto", "on", "off"
}

// AudioConfig contains audio configuration
type AudioConfig struct {
	Enabled        bool                      `json:"enabled"`
	SampleRate     int                       `json:"sample_rate"`
	Volume         float64                   `json:"volume"`
	ChannelVolumes [apu.ChannelCount]float64 `json:"channel_volumes"` // pulse 1, pulse 2, triangle, noise, dmc
}

// InputConfig contains input configuration
type InputConfig struct {
	Player1Keys KeyMapping `json:"player1_keys"`
	Port2       string     `json:"port2"` // "joypad", "zapper", "none"
}

// KeyMapping represents keyboard key mappings for NES controller
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	Region string `json:"region"` // "auto", "ntsc", "pal"
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	ShowFPS   bool   `json:"show_fps"`
	LogLevel  string `json:"log_level"`  // "DEBUG", "INFO", "WARN", "ERROR"
	DebugAddr string `json:"debug_addr"` // gRPC debug service, empty to disable
	StatsAddr string `json:"stats_addr"` // runtime stats view, empty to disable
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	SaveData    string `json:"save_data"`
	Screenshots string `json:"screenshots"`
	Recordings  string `json:"recordings"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Fullscreen: false,
			Scale:      3,
		},
		Video: VideoConfig{
			Backend:    "ebitengine",
			VSync:      true,
			Saturation: 1.0,
			Clip:       "auto",
		},
		Audio: AudioConfig{
			Enabled:        true,
			SampleRate:     44100,
			Volume:         0.8,
			ChannelVolumes: [apu.ChannelCount]float64{1, 1, 1, 1, 1},
		},
		Input: InputConfig{
			Player1Keys: KeyMapping{
				Up:     "ArrowUp",
				Down:   "ArrowDown",
				Left:   "ArrowLeft",
				Right:  "ArrowRight",
				A:      "X",
				B:      "Z",
				Start:  "Enter",
				Select: "ShiftRight",
			},
			Port2: "zapper",
		},
		Emulation: EmulationConfig{
			Region: "auto",
		},
		Debug: DebugConfig{
			LogLevel: "INFO",
		},
		Paths: PathsConfig{
			SaveData:    "./saves",
			Screenshots: "./screenshots",
			Recordings:  "./recordings",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the current values.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := c.createDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}
	return c.SaveToFile(c.configPath)
}

// validate rejects values the core cannot use and repairs cosmetic ones
func (c *Config) validate() error {
	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}

	switch c.Video.Backend {
	case "ebitengine", "headless":
	default:
		return &ConfigError{Field: "video.backend", Value: c.Video.Backend, Err: errors.New("unknown backend")}
	}
	if _, err := parseClip(c.Video.Clip); err != nil {
		return &ConfigError{Field: "video.clip", Value: c.Video.Clip, Err: err}
	}
	if c.Video.Saturation < 0 || c.Video.Saturation > 3 {
		c.Video.Saturation = 1.0
	}

	if c.Audio.SampleRate < 0 {
		return &ConfigError{Field: "audio.sample_rate", Value: c.Audio.SampleRate, Err: errors.New("must not be negative")}
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		c.Audio.Volume = 0.8
	}
	for i, v := range c.Audio.ChannelVolumes {
		if v < 0 || v > 1 {
			return &ConfigError{Field: fmt.Sprintf("audio.channel_volumes[%d]", i), Value: v, Err: errors.New("must be between 0 and 1")}
		}
	}

	switch c.Input.Port2 {
	case "joypad", "zapper", "none":
	default:
		return &ConfigError{Field: "input.port2", Value: c.Input.Port2, Err: errors.New("unknown device")}
	}

	if _, err := region.Parse(c.Emulation.Region); err != nil {
		return &ConfigError{Field: "emulation.region", Value: c.Emulation.Region, Err: err}
	}
	if _, err := logger.ParseLevel(c.Debug.LogLevel); err != nil {
		return &ConfigError{Field: "debug.log_level", Value: c.Debug.LogLevel, Err: err}
	}

	return nil
}

// createDirectories creates required directories
func (c *Config) createDirectories() error {
	dirs := []string{
		c.Paths.SaveData,
		c.Paths.Screenshots,
		c.Paths.Recordings,
	}

	for _, dir := range dirs {
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

func parseClip(s string) (nes.ClipMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return nes.ClipAuto, nil
	case "on":
		return nes.ClipOn, nil
	case "off":
		return nes.ClipOff, nil
	}
	return nes.ClipAuto, fmt.Errorf("unknown clip mode %q", s)
}

// Core derives the console settings. The palette file, when set, is read
// here.
func (c *Config) Core() (nes.Config, error) {
	cfg := nes.DefaultConfig()

	r, err := region.Parse(c.Emulation.Region)
	if err != nil {
		return cfg, &ConfigError{Field: "emulation.region", Value: c.Emulation.Region, Err: err}
	}
	cfg.Region = r

	clip, err := parseClip(c.Video.Clip)
	if err != nil {
		return cfg, &ConfigError{Field: "video.clip", Value: c.Video.Clip, Err: err}
	}
	cfg.Clip = clip

	if c.Audio.Enabled {
		cfg.SampleRate = c.Audio.SampleRate
	} else {
		cfg.SampleRate = 0
	}
	for i, v := range c.Audio.ChannelVolumes {
		cfg.Volumes[i] = v * c.Audio.Volume
	}

	base := ppu.DefaultPalette
	if c.Video.Palette != "" {
		base, err = ppu.LoadPaletteFile(c.Video.Palette)
		if err != nil {
			return cfg, &ConfigError{Field: "video.palette", Value: c.Video.Palette, Err: err}
		}
	}
	if c.Video.Palette != "" || c.Video.Hue != 0 || c.Video.Saturation != 1 {
		pal := ppu.NewPalette(base, c.Video.Hue, c.Video.Saturation)
		cfg.Palette = &pal
	}

	return cfg, nil
}

// LogLevel returns the configured log level, Info when unparseable
func (c *Config) LogLevel() logger.Level {
	level, err := logger.ParseLevel(c.Debug.LogLevel)
	if err != nil {
		return logger.LevelInfo
	}
	return level
}

// GetWindowResolution returns the window resolution based on scale
func (c *Config) GetWindowResolution() (int, int) {
	return ppu.Width * c.Window.Scale, ppu.Height * c.Window.Scale
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/nescore.json"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
