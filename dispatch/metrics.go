package dispatch

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"

	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/messaging"
)

// Label values for the "outcome" label. Failures are labelled with their
// messaging.ErrorKind instead.
const (
	outcomeOK      = "ok"
	outcomeUnknown = "error"
)

type metricsService struct {
	service  Service
	requests metrics.Counter
	latency  metrics.Histogram
}

// NewMetricsService counts requests by "op" and "outcome" and observes their
// latency in seconds by "op".
func NewMetricsService(s Service, requests metrics.Counter, latency metrics.Histogram) Service {
	return &metricsService{
		service:  s,
		requests: requests,
		latency:  latency,
	}
}

func (s *metricsService) Read(ctx context.Context, requester keys.PublicKey, op messaging.SequenceRead) messaging.QueryResponse {
	begin := time.Now()
	resp := s.service.Read(ctx, requester, op)
	s.observe(messaging.ReadName(op), resp.Err(), begin)
	return resp
}

func (s *metricsService) Write(ctx context.Context, requester keys.PublicKey, op messaging.SequenceWrite) *messaging.CmdError {
	begin := time.Now()
	cmdErr := s.service.Write(ctx, requester, op)
	var err error
	if cmdErr != nil {
		err = cmdErr
	}
	s.observe(messaging.WriteName(op), err, begin)
	return cmdErr
}

func (s *metricsService) observe(name string, err error, begin time.Time) {
	s.requests.With("op", name, "outcome", outcome(err)).Add(1)
	s.latency.With("op", name).Observe(time.Since(begin).Seconds())
}

func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	if kind := messaging.KindOf(err); kind != "" {
		return string(kind)
	}
	return outcomeUnknown
}
