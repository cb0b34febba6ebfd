package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaignsync_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campaignsync_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// publish attempts labelled by outcome (success, noop, error)
	PublishCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaignsync_publishes_total",
			Help: "Total campaign publish attempts",
		},
		[]string{"outcome"},
	)

	// outbound Google Ads calls labelled by operation and outcome
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaignsync_gateway_requests_total",
			Help: "Total Google Ads gateway calls",
		},
		[]string{"operation", "outcome"},
	)

	// latency of outbound Google Ads calls per operation
	GatewayLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campaignsync_gateway_duration_seconds",
			Help:    "Duration of Google Ads gateway calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// lifecycle events recorded, labelled by type
	LifecycleEventCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaignsync_lifecycle_events_total",
			Help: "Total campaign lifecycle events recorded",
		},
		[]string{"type"},
	)

	// update notifications that failed to publish
	NotifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campaignsync_notify_failures_total",
			Help: "Total failed update notifications",
		},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		PublishCount,
		GatewayRequests,
		GatewayLatency,
		LifecycleEventCount,
		NotifyFailures,
	)
}
