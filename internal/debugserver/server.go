package debugserver

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"nescore/internal/cpu"
	"nescore/internal/logger"
	"nescore/internal/nes"
	"nescore/internal/ppu"
)

const logTag = "debugserver"

// Limits on a single request
const (
	MaxReadSize = 0x1000
	MaxSteps    = 100000
)

// Target is the running emulator the service drives. app.Emulator
// implements it.
type Target interface {
	Do(fn func(console *nes.NES))
	Pause()
	Resume()
	Paused() bool
	StepInstruction() (cpu.Registers, error)
	Reset()
	Frame(dst []uint32) uint64
}

// Server implements DebuggerServer on top of a Target
type Server struct {
	mu       sync.Mutex
	target   Target
	log      *logger.Logger
	listener net.Listener
	server   *grpc.Server
}

// NewServer creates the service for target
func NewServer(target Target, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard
	}
	s := &Server{target: target, log: log, server: grpc.NewServer()}
	RegisterDebuggerServer(s.server, s)
	return s
}

// ListenAndServe listens on addr and serves until Stop
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Serve answers requests on lis until Stop
func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	s.listener = lis
	s.mu.Unlock()

	s.log.Infof(logTag, "debug service listening on %s", lis.Addr())
	return s.server.Serve(lis)
}

// Addr returns the listening address, nil before Serve
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop finishes pending calls and closes the listener
func (s *Server) Stop() {
	s.server.GracefulStop()
}

func (s *Server) registers() (*structpb.Struct, error) {
	var (
		c   cpu.Registers
		p   ppu.Registers
		dis string
	)
	s.target.Do(func(console *nes.NES) {
		c = console.CPU()
		p = console.PPU()
		dis, _ = console.Disassemble(c.PC)
	})
	return registersStruct(c, p, dis, s.target.Paused())
}

func registersStruct(c cpu.Registers, p ppu.Registers, dis string, paused bool) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"a":           float64(c.A),
		"x":           float64(c.X),
		"y":           float64(c.Y),
		"sp":          float64(c.SP),
		"p":           float64(c.P),
		"pc":          float64(c.PC),
		"cycles":      float64(c.Cycles),
		"scanline":    float64(p.Scanline),
		"dot":         float64(p.Dot),
		"frame":       float64(p.Frame),
		"disassembly": dis,
		"paused":      paused,
	})
}

// Registers returns the CPU registers and beam position
func (s *Server) Registers(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
	return s.registers()
}

// ReadMemory reads CPU memory without side effects
func (s *Server) ReadMemory(ctx context.Context, in *structpb.Struct) (*wrapperspb.BytesValue, error) {
	fields := in.GetFields()
	addrValue, ok := fields["address"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "address is required")
	}
	address := addrValue.GetNumberValue()
	size := 1.0
	if v, ok := fields["size"]; ok {
		size = v.GetNumberValue()
	}
	if address < 0 || address > 0xFFFF {
		return nil, status.Errorf(codes.InvalidArgument, "address %v out of range", address)
	}
	if size < 1 || size > MaxReadSize {
		return nil, status.Errorf(codes.InvalidArgument, "size must be between 1 and %d", MaxReadSize)
	}

	data := make([]byte, int(size))
	s.target.Do(func(console *nes.NES) {
		for i := range data {
			data[i] = console.Peek(uint16(int(address) + i))
		}
	})
	return wrapperspb.Bytes(data), nil
}

// Step pauses the emulator and executes count instructions, one when count
// is zero
func (s *Server) Step(ctx context.Context, in *wrapperspb.UInt32Value) (*structpb.Struct, error) {
	count := in.GetValue()
	if count == 0 {
		count = 1
	}
	if count > MaxSteps {
		return nil, status.Errorf(codes.InvalidArgument, "at most %d steps per call", MaxSteps)
	}

	s.target.Pause()
	for i := uint32(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, status.FromContextError(err).Err()
		}
		if _, err := s.target.StepInstruction(); err != nil {
			return nil, status.Error(codes.FailedPrecondition, err.Error())
		}
	}
	return s.registers()
}

// Pause stops the emulation loop
func (s *Server) Pause(ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error) {
	s.target.Pause()
	s.log.Infof(logTag, "paused")
	return &emptypb.Empty{}, nil
}

// Resume restarts the emulation loop
func (s *Server) Resume(ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error) {
	s.target.Resume()
	s.log.Infof(logTag, "resumed")
	return &emptypb.Empty{}, nil
}

// Reset presses the reset button
func (s *Server) Reset(ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error) {
	s.target.Reset()
	return &emptypb.Empty{}, nil
}

// Frame returns the last completed frame as a PNG
func (s *Server) Frame(ctx context.Context, in *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	frame := make([]uint32, ppu.Width*ppu.Height)
	if s.target.Frame(frame) == 0 {
		return nil, status.Error(codes.Unavailable, "no frame rendered yet")
	}

	img := image.NewRGBA(image.Rect(0, 0, ppu.Width, ppu.Height))
	for i, pixel := range frame {
		img.SetRGBA(i%ppu.Width, i/ppu.Width, color.RGBA{R: uint8(pixel >> 16), G: uint8(pixel >> 8), B: uint8(pixel), A: 0xFF})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.Bytes(buf.Bytes()), nil
}
