package nes

import (
	"fmt"

	"nescore/internal/apu"
	"nescore/internal/audio"
	"nescore/internal/ppu"
	"nescore/internal/region"
)

// ClipMode controls blanking of the top and bottom 8 lines of the picture
type ClipMode uint8

const (
	// ClipAuto clips on NTSC, where those lines are hidden by the TV
	ClipAuto ClipMode = iota
	ClipOn
	ClipOff
)

func (m ClipMode) String() string {
	switch m {
	case ClipAuto:
		return "auto"
	case ClipOn:
		return "on"
	case ClipOff:
		return "off"
	}
	return fmt.Sprintf("clip(%d)", uint8(m))
}

// Config is the core configuration. The zero value is not valid, start from
// DefaultConfig.
type Config struct {
	Region     region.Region
	SampleRate int
	Volumes    [apu.ChannelCount]float64

	// Palette replaces the built-in palette when non-nil
	Palette *ppu.Palette
	Clip    ClipMode
}

// DefaultConfig returns the settings a new console starts with
func DefaultConfig() Config {
	return Config{
		Region:     region.Auto,
		SampleRate: audio.DefaultSampleRate,
		Volumes:    [apu.ChannelCount]float64{1, 1, 1, 1, 1},
		Clip:       ClipAuto,
	}
}

// Apply updates the console settings. Emulation state is kept.
func (n *NES) Apply(cfg Config) error {
	if cfg.Clip > ClipOff {
		return fmt.Errorf("invalid clip mode %v", cfg.Clip)
	}
	if err := n.SetAudioSampleRate(cfg.SampleRate); err != nil {
		return err
	}
	for ch, gain := range cfg.Volumes {
		n.SetAudioVolume(apu.Channel(ch), gain)
	}
	if cfg.Palette != nil {
		n.ppu.SetPalette(*cfg.Palette)
	} else {
		n.ppu.SetPalette(ppu.DefaultPalette)
	}
	n.clip = cfg.Clip
	n.SetRegion(cfg.Region)
	return nil
}
