// Package grpcseq carries wire-encoded Sequence requests over gRPC.
package grpcseq

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	serviceName     = "xdao.seqnet.transport.v1.Sequence"
	readFullMethod  = "/" + serviceName + "/Read"
	writeFullMethod = "/" + serviceName + "/Write"
)

// SequenceServer is the server API for the Sequence gRPC service.
//
// Requests and responses are wire envelopes carried in protobuf well-known
// wrapper types, so no protoc/codegen step is needed.
type SequenceServer interface {
	Read(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Write(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedSequenceServer can be embedded to have forward compatible implementations.
type UnimplementedSequenceServer struct{}

func (UnimplementedSequenceServer) Read(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Read not implemented")
}
func (UnimplementedSequenceServer) Write(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Write not implemented")
}

// RegisterSequenceServer registers the Sequence service on a gRPC server.
func RegisterSequenceServer(s grpc.ServiceRegistrar, srv SequenceServer) {
	s.RegisterService(&Sequence_ServiceDesc, srv)
}

// SequenceClient is the client API for the Sequence gRPC service.
type SequenceClient interface {
	Read(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Write(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type sequenceClient struct{ cc grpc.ClientConnInterface }

func NewSequenceClient(cc grpc.ClientConnInterface) SequenceClient { return &sequenceClient{cc: cc} }

func (c *sequenceClient) Read(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, readFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sequenceClient) Write(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, writeFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _Sequence_Read_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SequenceServer).Read(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: readFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SequenceServer).Read(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Sequence_Write_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SequenceServer).Write(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: writeFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SequenceServer).Write(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Sequence_ServiceDesc is the grpc.ServiceDesc for Sequence service.
var Sequence_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SequenceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Read", Handler: _Sequence_Read_Handler},
		{MethodName: "Write", Handler: _Sequence_Write_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sequence.proto",
}
