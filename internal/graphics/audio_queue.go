package graphics

import (
	"encoding/binary"
	"math"
	"sync"
)

// bytesPerFrame is one stereo frame of 32-bit float samples
const bytesPerFrame = 8

// SampleQueue buffers mono samples from the emulator and serves them as
// interleaved little endian float32 stereo, the format the audio player
// pulls. An empty queue repeats the last sample so the player never
// blocks.
type SampleQueue struct {
	mu      sync.Mutex
	samples []float32
	limit   int
	last    float32

	underruns uint64
	dropped   uint64
}

// NewSampleQueue creates a queue holding at most limit samples. Older
// samples are dropped when the producer runs ahead.
func NewSampleQueue(limit int) *SampleQueue {
	return &SampleQueue{limit: limit}
}

// Push appends samples. It has the audio.Callback signature.
func (q *SampleQueue) Push(samples []float32) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.samples = append(q.samples, samples...)
	if over := len(q.samples) - q.limit; q.limit > 0 && over > 0 {
		q.samples = append(q.samples[:0], q.samples[over:]...)
		q.dropped += uint64(over)
	}
}

// Read implements io.Reader
func (q *SampleQueue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	n := frames
	if n > len(q.samples) {
		n = len(q.samples)
	}
	for i := 0; i < frames; i++ {
		s := q.last
		if i < n {
			s = q.samples[i]
			q.last = s
		}
		bits := math.Float32bits(s)
		binary.LittleEndian.PutUint32(p[i*bytesPerFrame:], bits)
		binary.LittleEndian.PutUint32(p[i*bytesPerFrame+4:], bits)
	}
	if n < frames {
		q.underruns++
	}
	q.samples = append(q.samples[:0], q.samples[n:]...)
	return frames * bytesPerFrame, nil
}

// Len returns the number of queued samples
func (q *SampleQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.samples)
}

// Stats returns how often the player ran dry and how many samples were
// dropped for being late
func (q *SampleQueue) Stats() (underruns, dropped uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.underruns, q.dropped
}
