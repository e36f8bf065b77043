package grpcseq

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/seqnet/dispatch"
	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/wire"
)

// Server exposes a dispatch.Service over the Sequence gRPC service.
//
// Calls naming a requester are only accepted with a valid signature by that
// key; see Authenticate.
type Server struct {
	UnimplementedSequenceServer
	Service dispatch.Service

	// MaxSkew defaults to DefaultMaxSkew.
	MaxSkew time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

func (s *Server) authenticate(ctx context.Context, method string, body []byte) (keys.PublicKey, error) {
	now, skew := time.Now, s.MaxSkew
	if s.Clock != nil {
		now = s.Clock
	}
	if skew <= 0 {
		skew = DefaultMaxSkew
	}
	return Authenticate(ctx, method, body, now(), skew)
}

func (s *Server) Read(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Service == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing service")
	}
	op, err := wire.DecodeRead(in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	requester, err := s.authenticate(ctx, readFullMethod, in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := wire.EncodeQueryResponse(s.Service.Read(ctx, requester, op))
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bytes(out), nil
}

func (s *Server) Write(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Service == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing service")
	}
	op, err := wire.DecodeWrite(in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	requester, err := s.authenticate(ctx, writeFullMethod, in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := wire.EncodeCmdResult(s.Service.Write(ctx, requester, op))
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bytes(out), nil
}
