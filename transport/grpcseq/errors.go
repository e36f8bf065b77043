package grpcseq

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/messaging"
	"xdao.co/seqnet/wire"
)

// mapErr turns a server-side transport failure into a gRPC status. Domain
// errors never take this path; they travel inside the response body.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, wire.ErrUnknownVariant):
		return status.Error(codes.Unimplemented, err.Error())
	case errors.Is(err, wire.ErrMalformed):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, keys.ErrInvalidKey),
		errors.Is(err, keys.ErrBadSignature),
		errors.Is(err, ErrUnsigned),
		errors.Is(err, ErrStaleSignature):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// mapRPC turns a failed call into a domain error so the client can still
// answer in the request's response shape.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return messaging.WrapError(messaging.KindInternal, err.Error(), err)
	}

	switch st.Code() {
	case codes.NotFound:
		return messaging.WrapError(messaging.KindNoSuchData, st.Message(), err)
	case codes.InvalidArgument, codes.Unimplemented:
		return messaging.WrapError(messaging.KindInvalidOperation, st.Message(), err)
	case codes.Unauthenticated, codes.PermissionDenied:
		return messaging.WrapError(messaging.KindAccessDenied, st.Message(), err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return messaging.WrapError(messaging.KindInternal, "node unavailable: "+st.Message(), err)
	default:
		return messaging.WrapError(messaging.KindInternal, st.Message(), err)
	}
}
