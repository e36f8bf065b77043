package dispatch

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/messaging"
)

type tracingService struct {
	tracer  trace.Tracer
	service Service
}

// NewTracingService opens one span per request, named after the request's
// diagnostic name.
func NewTracingService(s Service, tracer trace.Tracer) Service {
	return &tracingService{tracer: tracer, service: s}
}

func (s *tracingService) Read(ctx context.Context, requester keys.PublicKey, op messaging.SequenceRead) messaging.QueryResponse {
	ctx, span := s.tracer.Start(ctx, messaging.ReadName(op),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("seq.request", messaging.Describe(op)),
			attribute.String("seq.auth", messaging.ReadAuthorisation(op).String()),
			attribute.String("seq.dst", messaging.ReadDestination(op).String()),
		),
	)
	defer span.End()

	resp := s.service.Read(ctx, requester, op)
	record(span, resp.Err())
	return resp
}

func (s *tracingService) Write(ctx context.Context, requester keys.PublicKey, op messaging.SequenceWrite) *messaging.CmdError {
	ctx, span := s.tracer.Start(ctx, messaging.WriteName(op),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("seq.request", messaging.Describe(op)),
			attribute.String("seq.auth", messaging.WriteAuthorisation(op).String()),
			attribute.String("seq.dst", messaging.WriteDestination(op).String()),
		),
	)
	defer span.End()

	cmdErr := s.service.Write(ctx, requester, op)
	var err error
	if cmdErr != nil {
		err = cmdErr
	}
	record(span, err)
	return cmdErr
}

func record(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	if kind := messaging.KindOf(err); kind != "" {
		span.SetAttributes(attribute.String("seq.error_kind", string(kind)))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
