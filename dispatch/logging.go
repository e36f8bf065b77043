package dispatch

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/messaging"
)

type loggingService struct {
	logger  log.Logger
	service Service
}

// NewLoggingService wraps a provided existing
// service with the provided logger.
func NewLoggingService(s Service, logger log.Logger) Service {
	return &loggingService{logger, s}
}

func (s *loggingService) Read(ctx context.Context, requester keys.PublicKey, op messaging.SequenceRead) messaging.QueryResponse {
	begin := time.Now()
	resp := s.service.Read(ctx, requester, op)

	logger := log.With(s.logger,
		"method", messaging.ReadName(op),
		"auth", messaging.ReadAuthorisation(op),
		"dst", messaging.ReadDestination(op).Short(),
		"requester", requesterField(requester),
		"took", time.Since(begin),
	)
	if err := resp.Err(); err != nil {
		level.Info(logger).Log("msg", "read failed", "kind", messaging.KindOf(err), "err", err)
	} else {
		level.Debug(logger).Log()
	}
	return resp
}

func (s *loggingService) Write(ctx context.Context, requester keys.PublicKey, op messaging.SequenceWrite) *messaging.CmdError {
	begin := time.Now()
	cmdErr := s.service.Write(ctx, requester, op)

	logger := log.With(s.logger,
		"method", messaging.WriteName(op),
		"dst", messaging.WriteDestination(op).Short(),
		"requester", requesterField(requester),
		"took", time.Since(begin),
	)
	if cmdErr != nil {
		level.Info(logger).Log("msg", "write failed", "kind", messaging.KindOf(cmdErr), "err", cmdErr)
	} else {
		level.Debug(logger).Log()
	}
	return cmdErr
}

func requesterField(k keys.PublicKey) string {
	if k.IsZero() {
		return "anonymous"
	}
	return k.Name().Short()
}
