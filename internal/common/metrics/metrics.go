// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_http_requests_total",
			Help: "Total number of HTTP requests served per persona, route and status",
		},
		[]string{"persona", "route", "status"},
	)

	Completions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_completions_total",
			Help: "Total number of chat completions by persona, terminal state and delivery mode",
		},
		[]string{"persona", "state", "mode"},
	)

	ProviderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_provider_fallbacks_total",
			Help: "Total number of live data lookups that failed and were recovered locally",
		},
		[]string{"persona", "stage", "error_code"},
	)

	RecoveredFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_recovered_failures_total",
			Help: "Total number of pipeline failures answered with a canned reply, by error category",
		},
		[]string{"persona", "category"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_provider_duration_seconds",
			Help:    "Duration of outbound data provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"persona", "stage"},
	)

	StreamChunks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_stream_chunks_total",
			Help: "Total number of content chunks written to event streams",
		},
		[]string{"persona"},
	)

	StreamsAborted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_streams_aborted_total",
			Help: "Total number of event streams stopped early by a client disconnect",
		},
		[]string{"persona"},
	)

	StdioCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_stdio_calls_total",
			Help: "Total number of JSON-RPC calls handled by the stdio tool server",
		},
		[]string{"method", "outcome"},
	)
)
