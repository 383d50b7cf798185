// Package debugserver exposes a running console over gRPC: registers,
// memory, single stepping, pause/resume, reset and frame capture.
//
// The service uses the protobuf well-known types for its messages, so no
// generated code is needed on either side.
package debugserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "nescore.debug.Debugger"

// DebuggerServer is the server API of the debug service.
//
// Registers and Step answer with a struct of numbers (a, x, y, sp, p, pc,
// cycles, scanline, dot, frame) plus the disassembly of the next
// instruction. ReadMemory takes a struct with address and size.
type DebuggerServer interface {
	Registers(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ReadMemory(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
	Step(context.Context, *wrapperspb.UInt32Value) (*structpb.Struct, error)
	Pause(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Resume(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Reset(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Frame(context.Context, *emptypb.Empty) (*wrapperspb.BytesValue, error)
}

// unaryMethod builds the method descriptor for one unary call
func unaryMethod[Req any, Resp any](name string, call func(DebuggerServer, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(DebuggerServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the debug service for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DebuggerServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Registers", DebuggerServer.Registers),
		unaryMethod("ReadMemory", DebuggerServer.ReadMemory),
		unaryMethod("Step", DebuggerServer.Step),
		unaryMethod("Pause", DebuggerServer.Pause),
		unaryMethod("Resume", DebuggerServer.Resume),
		unaryMethod("Reset", DebuggerServer.Reset),
		unaryMethod("Frame", DebuggerServer.Frame),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nescore/debug.proto",
}

// RegisterDebuggerServer registers srv with s
func RegisterDebuggerServer(s grpc.ServiceRegistrar, srv DebuggerServer) {
	s.RegisterService(&ServiceDesc, srv)
}
