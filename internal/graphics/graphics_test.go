package graphics

import (
	"encoding/binary"
	"image/png"
	"math"
	"os"
	"testing"

	"nescore/internal/ppu"
)

func testFrame(color uint32) []uint32 {
	frame := make([]uint32, ppu.Width*ppu.Height)
	for i := range frame {
		frame[i] = color
	}
	return frame
}

func newHeadlessWindow(t *testing.T, cfg Config) *HeadlessWindow {
	t.Helper()
	backend, err := CreateBackend(BackendHeadless)
	if err != nil {
		t.Fatal(err)
	}
	if err := backend.Initialize(cfg); err != nil {
		t.Fatal(err)
	}
	if !backend.IsHeadless() {
		t.Error("headless backend reports a display")
	}
	window, err := backend.CreateWindow("test", ppu.Width, ppu.Height)
	if err != nil {
		t.Fatal(err)
	}
	return window.(*HeadlessWindow)
}

func TestCreateBackend_Unknown_ShouldFail(t *testing.T) {
	if _, err := CreateBackend("sdl2"); err == nil {
		t.Error("unknown backend accepted")
	}
}

func TestHeadlessBackend_CreateWindowBeforeInitialize_ShouldFail(t *testing.T) {
	if _, err := NewHeadlessBackend().CreateWindow("test", 1, 1); err == nil {
		t.Error("window created on an uninitialized backend")
	}
}

func TestFrameImage(t *testing.T) {
	frame := testFrame(0xFF000000)
	frame[1*ppu.Width+2] = 0xFF64B0FF

	img := FrameImage(frame, nil)
	if got := img.RGBAAt(2, 1); got.R != 0x64 || got.G != 0xB0 || got.B != 0xFF || got.A != 0xFF {
		t.Errorf("pixel (2,1) = %v", got)
	}
	if got := img.RGBAAt(0, 0); got.R != 0 || got.A != 0xFF {
		t.Errorf("pixel (0,0) = %v", got)
	}

	if again := FrameImage(frame, img); again != img {
		t.Error("image of the right size was not reused")
	}
}

func TestHeadlessWindow_ShouldDumpEveryNthFrame(t *testing.T) {
	dir := t.TempDir()
	w := newHeadlessWindow(t, Config{OutputDir: dir, DumpEvery: 2})

	for i := 0; i < 5; i++ {
		if err := w.RenderFrame(testFrame(0xFFFF0000)); err != nil {
			t.Fatal(err)
		}
	}

	if w.GetFrameCount() != 5 {
		t.Errorf("frame count = %d, want 5", w.GetFrameCount())
	}
	dumped := w.Dumped()
	if len(dumped) != 2 {
		t.Fatalf("dumped %d frames, want 2", len(dumped))
	}

	f, err := os.Open(dumped[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != ppu.Width || b.Dy() != ppu.Height {
		t.Errorf("image is %dx%d", b.Dx(), b.Dy())
	}
	if r, g, b, _ := img.At(10, 10).RGBA(); r>>8 != 0xFF || g != 0 || b != 0 {
		t.Errorf("pixel = %x %x %x, want red", r, g, b)
	}
}

func TestHeadlessWindow_NoOutputDir_ShouldOnlyCount(t *testing.T) {
	w := newHeadlessWindow(t, Config{DumpEvery: 1})
	if err := w.RenderFrame(testFrame(0)); err != nil {
		t.Fatal(err)
	}
	if len(w.Dumped()) != 0 {
		t.Error("frame dumped without an output directory")
	}
	if err := w.RenderFrame(make([]uint32, 10)); err == nil {
		t.Error("short frame accepted")
	}
	if w.PollEvents() != nil {
		t.Error("headless window produced events")
	}
	w.Cleanup()
	if !w.ShouldClose() {
		t.Error("window still open after Cleanup")
	}
}

func readStereo(t *testing.T, q *SampleQueue, frames int) [][2]float32 {
	t.Helper()
	buf := make([]byte, frames*bytesPerFrame)
	n, err := q.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("Read() = %d bytes, want %d", n, len(buf))
	}
	out := make([][2]float32, frames)
	for i := range out {
		out[i][0] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*8:]))
		out[i][1] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*8+4:]))
	}
	return out
}

func TestSampleQueue_ShouldServeStereoFrames(t *testing.T) {
	q := NewSampleQueue(100)
	q.Push([]float32{0.25, -0.5})

	got := readStereo(t, q, 4)
	want := [][2]float32{{0.25, 0.25}, {-0.5, -0.5}, {-0.5, -0.5}, {-0.5, -0.5}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d = %v, want %v", i, got[i], want[i])
		}
	}

	underruns, _ := q.Stats()
	if underruns != 1 {
		t.Errorf("underruns = %d, want 1", underruns)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after draining", q.Len())
	}
}

func TestSampleQueue_Overflow_ShouldDropOldest(t *testing.T) {
	q := NewSampleQueue(3)
	q.Push([]float32{1, 2, 3, 4, 5})

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	if _, dropped := q.Stats(); dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	if got := readStereo(t, q, 1); got[0][0] != 3 {
		t.Errorf("first sample = %v, want 3", got[0][0])
	}
}

func TestSampleQueue_ShortBuffer_ShouldReadNothing(t *testing.T) {
	q := NewSampleQueue(10)
	q.Push([]float32{1})
	if n, err := q.Read(make([]byte, bytesPerFrame-1)); n != 0 || err != nil {
		t.Errorf("Read() = %d, %v", n, err)
	}
	if q.Len() != 1 {
		t.Error("short read consumed a sample")
	}
}
