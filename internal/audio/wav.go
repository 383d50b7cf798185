package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth     = 16
	wavPCM          = 1
	wavMaxAmplitude = 32767
)

// WAVWriter records the sample stream as a 16-bit mono PCM file. Consume
// can be used directly as a Callback.
type WAVWriter struct {
	enc    *wav.Encoder
	closer io.Closer
	buffer *goaudio.IntBuffer
	frames int
	err    error
}

// NewWAVWriter writes to w. The header is completed by Close.
func NewWAVWriter(w io.WriteSeeker, sampleRate int) *WAVWriter {
	return &WAVWriter{
		enc: wav.NewEncoder(w, sampleRate, wavBitDepth, 1, wavPCM),
		buffer: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: wavBitDepth,
		},
	}
}

// CreateWAV creates the file at path and returns a writer for it
func CreateWAV(path string, sampleRate int) (*WAVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	ww := NewWAVWriter(f, sampleRate)
	ww.closer = f
	return ww, nil
}

// Write appends samples in [-1, 1]. The first error is kept and returned by
// every later call.
func (ww *WAVWriter) Write(samples []float32) error {
	if ww.err != nil {
		return ww.err
	}
	data := ww.buffer.Data[:0]
	for _, s := range samples {
		data = append(data, int(clamp(s)*wavMaxAmplitude))
	}
	ww.buffer.Data = data
	if err := ww.enc.Write(ww.buffer); err != nil {
		ww.err = fmt.Errorf("wav: %w", err)
		return ww.err
	}
	ww.frames += len(samples)
	return nil
}

// Consume is a Callback that records samples and drops write errors. The
// error surfaces on Close.
func (ww *WAVWriter) Consume(samples []float32) {
	_ = ww.Write(samples)
}

// Frames returns the number of samples written so far
func (ww *WAVWriter) Frames() int {
	return ww.frames
}

// Close finishes the header and closes the file when the writer owns it
func (ww *WAVWriter) Close() error {
	err := ww.enc.Close()
	if ww.closer != nil {
		if cerr := ww.closer.Close(); err == nil {
			err = cerr
		}
	}
	if ww.err != nil {
		return ww.err
	}
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}
