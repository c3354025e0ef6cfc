package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "move_tracer"

var (
	TraceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trace_requests_total",
		Help:      "Call trace requests by chain and outcome.",
	}, []string{"chain", "status"})

	TraceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "trace_duration_seconds",
		Help:      "Time spent producing one call trace.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"chain"})

	ResultCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "result_cache_hits_total",
		Help:      "Trace requests answered from the finished result cache.",
	})

	ResolvedFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolved_frames_total",
		Help:      "Frames by source attribution result.",
	}, []string{"result"})

	RemoteCompileRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_compile_requests_total",
		Help:      "Requests sent to the remote compile service.",
	})

	RemoteCompileFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_compile_failures_total",
		Help:      "Remote compile requests that degraded to an empty module map.",
	}, []string{"reason"})

	MirroredTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mirrored_transactions_total",
		Help:      "Transactions copied into the local store.",
	}, []string{"chain"})
)
