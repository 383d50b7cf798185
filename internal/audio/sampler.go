// Package audio turns the per-cycle APU channel levels into a PCM stream.
package audio

import (
	"fmt"

	"nescore/internal/apu"
)

const (
	// DefaultSampleRate is used until the host asks for another one
	DefaultSampleRate = 44100

	// samples kept before the callback is forced, when nobody flushes
	maxBatch = 4096

	// one pole DC blocker, roughly 90Hz at 44.1kHz
	highPassPole = 0.996
)

// Callback receives a batch of mono samples in [-1, 1]. The slice is a copy
// owned by the receiver.
type Callback func(samples []float32)

// Sampler mixes the five channels with the nonlinear DAC formulas, applies
// per channel gains and downsamples from the CPU clock to the output rate by
// averaging every CPU cycle that falls into a sample.
type Sampler struct {
	cpuClock   float64
	sampleRate int

	gains [apu.ChannelCount]float64

	// resampling state
	phase float64
	sum   float64
	count int

	// DC blocker state
	lastIn  float64
	lastOut float64

	buffer   []float32
	callback Callback
}

// NewSampler creates a sampler for a CPU running at cpuClock Hz. All gains
// start at 1.
func NewSampler(cpuClock float64, sampleRate int) *Sampler {
	s := &Sampler{
		cpuClock:   cpuClock,
		sampleRate: sampleRate,
		buffer:     make([]float32, 0, maxBatch),
	}
	for i := range s.gains {
		s.gains[i] = 1
	}
	return s
}

// SetClock changes the input rate, after a region switch
func (s *Sampler) SetClock(cpuClock float64) {
	s.cpuClock = cpuClock
	s.Reset()
}

// SetSampleRate changes the output rate. Zero turns sampling off.
func (s *Sampler) SetSampleRate(rate int) error {
	if rate < 0 {
		return fmt.Errorf("invalid sample rate %d", rate)
	}
	s.sampleRate = rate
	s.Reset()
	return nil
}

func (s *Sampler) SampleRate() int {
	return s.sampleRate
}

func (s *Sampler) SetCallback(cb Callback) {
	s.callback = cb
}

// SetGain sets the volume of one channel, clamped to [0, 1]
func (s *Sampler) SetGain(ch apu.Channel, gain float64) {
	if ch < 0 || ch >= apu.ChannelCount {
		panic(fmt.Sprintf("audio: invalid channel %d", ch))
	}
	switch {
	case gain < 0:
		gain = 0
	case gain > 1:
		gain = 1
	}
	s.gains[ch] = gain
}

func (s *Sampler) Gain(ch apu.Channel) float64 {
	return s.gains[ch]
}

// Add feeds the channel levels of one CPU cycle
func (s *Sampler) Add(levels [apu.ChannelCount]uint8) {
	if s.sampleRate == 0 || s.cpuClock <= 0 {
		return
	}

	s.sum += Mix(levels, &s.gains)
	s.count++

	s.phase += float64(s.sampleRate)
	if s.phase < s.cpuClock {
		return
	}
	s.phase -= s.cpuClock

	in := s.sum / float64(s.count)
	s.sum, s.count = 0, 0

	out := in - s.lastIn + highPassPole*s.lastOut
	s.lastIn, s.lastOut = in, out

	s.buffer = append(s.buffer, clamp(float32(out*2)))
	if len(s.buffer) >= maxBatch {
		s.Flush()
	}
}

// Flush hands the buffered samples to the callback
func (s *Sampler) Flush() {
	if len(s.buffer) == 0 {
		return
	}
	if s.callback != nil {
		out := make([]float32, len(s.buffer))
		copy(out, s.buffer)
		s.callback(out)
	}
	s.buffer = s.buffer[:0]
}

// Buffered returns the number of samples waiting for Flush
func (s *Sampler) Buffered() int {
	return len(s.buffer)
}

// Reset drops buffered samples and filter state. Gains are kept.
func (s *Sampler) Reset() {
	s.phase, s.sum, s.count = 0, 0, 0
	s.lastIn, s.lastOut = 0, 0
	s.buffer = s.buffer[:0]
}

// Mix combines the channel levels into a value in [0, 1) using the
// nonlinear approximation of the 2A03 DAC.
func Mix(levels [apu.ChannelCount]uint8, gains *[apu.ChannelCount]float64) float64 {
	var v [apu.ChannelCount]float64
	for i, l := range levels {
		v[i] = float64(l) * gains[i]
	}

	var pulse, tnd float64
	if p := v[apu.ChannelPulse1] + v[apu.ChannelPulse2]; p > 0 {
		pulse = 95.88 / (8128/p + 100)
	}
	if t := v[apu.ChannelTriangle]/8227 + v[apu.ChannelNoise]/12241 + v[apu.ChannelDMC]/22638; t > 0 {
		tnd = 159.79 / (1/t + 100)
	}
	return pulse + tnd
}

func clamp(v float32) float32 {
	switch {
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}
