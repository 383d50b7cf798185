package debugserver

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Registers is the decoded answer of the Registers and Step calls
type Registers struct {
	A, X, Y, SP, P uint8
	PC             uint16
	Cycles         uint64
	Scanline, Dot  int
	Frame          uint64
	Disassembly    string
	Paused         bool
}

func (r Registers) String() string {
	return fmt.Sprintf("A:%02X X:%02X Y:%02X P:%02X SP:%02X PC:%04X CYC:%d SL:%d DOT:%d  %s",
		r.A, r.X, r.Y, r.P, r.SP, r.PC, r.Cycles, r.Scanline, r.Dot, r.Disassembly)
}

func decodeRegisters(s *structpb.Struct) Registers {
	f := s.GetFields()
	num := func(name string) float64 { return f[name].GetNumberValue() }
	return Registers{
		A:           uint8(num("a")),
		X:           uint8(num("x")),
		Y:           uint8(num("y")),
		SP:          uint8(num("sp")),
		P:           uint8(num("p")),
		PC:          uint16(num("pc")),
		Cycles:      uint64(num("cycles")),
		Scanline:    int(num("scanline")),
		Dot:         int(num("dot")),
		Frame:       uint64(num("frame")),
		Disassembly: f["disassembly"].GetStringValue(),
		Paused:      f["paused"].GetBoolValue(),
	}
}

// Client calls the debug service
type Client struct {
	cc   grpc.ClientConnInterface
	conn *grpc.ClientConn
}

// Dial connects to the debug service at addr without transport security
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: conn, conn: conn}, nil
}

// NewClient wraps an existing connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close closes a connection opened by Dial
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, in, out interface{}) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out)
}

// Registers returns the CPU registers and beam position
func (c *Client) Registers(ctx context.Context) (Registers, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "Registers", &emptypb.Empty{}, out); err != nil {
		return Registers{}, err
	}
	return decodeRegisters(out), nil
}

// ReadMemory reads size bytes of CPU memory starting at address
func (c *Client) ReadMemory(ctx context.Context, address uint16, size int) ([]byte, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"address": float64(address),
		"size":    float64(size),
	})
	if err != nil {
		return nil, err
	}
	out := new(wrapperspb.BytesValue)
	if err := c.invoke(ctx, "ReadMemory", in, out); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}

// Step pauses the emulator and executes count instructions
func (c *Client) Step(ctx context.Context, count uint32) (Registers, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "Step", wrapperspb.UInt32(count), out); err != nil {
		return Registers{}, err
	}
	return decodeRegisters(out), nil
}

// Pause stops the emulation loop
func (c *Client) Pause(ctx context.Context) error {
	return c.invoke(ctx, "Pause", &emptypb.Empty{}, new(emptypb.Empty))
}

// Resume restarts the emulation loop
func (c *Client) Resume(ctx context.Context) error {
	return c.invoke(ctx, "Resume", &emptypb.Empty{}, new(emptypb.Empty))
}

// Reset presses the reset button
func (c *Client) Reset(ctx context.Context) error {
	return c.invoke(ctx, "Reset", &emptypb.Empty{}, new(emptypb.Empty))
}

// Frame returns the last completed frame as a PNG
func (c *Client) Frame(ctx context.Context) ([]byte, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.invoke(ctx, "Frame", &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}
