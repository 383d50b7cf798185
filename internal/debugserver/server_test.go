package debugserver

import (
	"bytes"
	"context"
	"image/png"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"nescore/internal/app"
	"nescore/internal/cartridge"
	"nescore/internal/nes"
	"nescore/internal/ppu"
)

// loopProgram stores $5A at $0010 and spins
var loopProgram = []byte{
	0xA9, 0x5A,       // LDA #$5A
	0x85, 0x10,       // STA $10
	0x4C, 0x04, 0xC0, // JMP $C004
}

func newTestService(t *testing.T) (*Client, *app.Emulator) {
	t.Helper()

	console := nes.New()
	cart := cartridge.NewTestROMBuilder().WithProgram(loopProgram).MustBuildCartridge()
	if err := console.SetCartridge(cart); err != nil {
		t.Fatal(err)
	}
	emulator := app.NewEmulator(console, nil)

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(emulator, nil)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	client, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })
	return client, emulator
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRegisters_ShouldReportPowerUpState(t *testing.T) {
	client, _ := newTestService(t)

	regs, err := client.Registers(testContext(t))
	if err != nil {
		t.Fatal(err)
	}
	if regs.PC != 0xC000 || regs.SP != 0xFD || regs.P != 0x34 {
		t.Errorf("Registers() = %v", regs)
	}
	if regs.Disassembly == "" {
		t.Error("no disassembly for the next instruction")
	}
}

func TestStep_ShouldPauseAndExecute(t *testing.T) {
	client, emulator := newTestService(t)
	ctx := testContext(t)

	regs, err := client.Step(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !emulator.Paused() || !regs.Paused {
		t.Error("Step did not pause the emulator")
	}
	if regs.PC != 0xC004 {
		t.Errorf("PC = $%04X, want $C004", regs.PC)
	}

	data, err := client.ReadMemory(ctx, 0x0010, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 1 || data[0] != 0x5A {
		t.Errorf("ReadMemory($10) = %v, want [$5A]", data)
	}

	if err := client.Resume(ctx); err != nil {
		t.Fatal(err)
	}
	if emulator.Paused() {
		t.Error("Resume left the emulator paused")
	}
}

func TestReadMemory_ShouldReadROM(t *testing.T) {
	client, _ := newTestService(t)

	data, err := client.ReadMemory(testContext(t), 0xC000, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, loopProgram[:4]) {
		t.Errorf("ReadMemory($C000) = % X", data)
	}
}

func TestReadMemory_InvalidArguments(t *testing.T) {
	client, _ := newTestService(t)

	tests := []struct {
		name    string
		address uint16
		size    int
	}{
		{"zero size", 0, 0},
		{"too large", 0, MaxReadSize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ReadMemory(testContext(t), tt.address, tt.size)
			if status.Code(err) != codes.InvalidArgument {
				t.Errorf("ReadMemory() = %v, want InvalidArgument", err)
			}
		})
	}
}

func TestPauseAndReset(t *testing.T) {
	client, emulator := newTestService(t)
	ctx := testContext(t)

	if err := client.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	if !emulator.Paused() {
		t.Error("Pause did not pause")
	}

	if _, err := client.Step(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if err := client.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	regs, err := client.Step(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if regs.PC != 0xC000 {
		t.Errorf("PC after reset = $%04X, want $C000", regs.PC)
	}
}

func TestFrame(t *testing.T) {
	client, emulator := newTestService(t)
	ctx := testContext(t)

	if _, err := client.Frame(ctx); status.Code(err) != codes.Unavailable {
		t.Errorf("Frame() before rendering = %v, want Unavailable", err)
	}

	if err := emulator.StepFrame(); err != nil {
		t.Fatal(err)
	}
	data, err := client.Frame(ctx)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != ppu.Width || b.Dy() != ppu.Height {
		t.Errorf("frame is %dx%d", b.Dx(), b.Dy())
	}
}
