package main

import (
	"net/http"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type NodeMetrics struct {
	Requests metrics.Counter
	Latency  metrics.Histogram
}

// newNodeMetrics registers Prometheus collectors when exposed is true and
// hands out discarding metrics otherwise.
func newNodeMetrics(exposed bool) *NodeMetrics {
	if !exposed {
		return &NodeMetrics{
			Requests: discard.NewCounter(),
			Latency:  discard.NewHistogram(),
		}
	}

	return &NodeMetrics{
		Requests: prometheus.NewCounterFrom(prom.CounterOpts{
			Namespace: "seqnet",
			Subsystem: "dispatch",
			Name:      "requests_total",
			Help:      "Number of Sequence requests by operation and outcome",
		}, []string{"op", "outcome"}),
		Latency: prometheus.NewHistogramFrom(prom.HistogramOpts{
			Namespace: "seqnet",
			Subsystem: "dispatch",
			Name:      "request_duration_seconds",
			Help:      "Sequence request latency by operation",
			Buckets:   prom.DefBuckets,
		}, []string{"op"}),
	}
}

func metricsHandler() http.Handler {
	return promhttp.Handler()
}
