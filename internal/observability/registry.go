package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics.
// Handlers and the gateway receive a registry by injection instead of
// touching the global Prometheus metrics directly.
type MetricsRegistry interface {
	// HTTP request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Publish lifecycle metrics
	IncrementPublishes(outcome string)

	// Outbound gateway metrics
	IncrementGatewayRequests(operation, outcome string)
	RecordGatewayLatency(operation string, duration time.Duration)

	// Lifecycle event sink metrics
	IncrementLifecycleEvents(eventType string)

	// Update notification metrics
	IncrementNotifyFailures()
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics.
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry.
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementPublishes(outcome string) {
	PublishCount.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) IncrementGatewayRequests(operation, outcome string) {
	GatewayRequests.WithLabelValues(operation, outcome).Inc()
}

func (r *PrometheusRegistry) RecordGatewayLatency(operation string, duration time.Duration) {
	GatewayLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementLifecycleEvents(eventType string) {
	LifecycleEventCount.WithLabelValues(eventType).Inc()
}

func (r *PrometheusRegistry) IncrementNotifyFailures() {
	NotifyFailures.Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing.
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry.
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementPublishes(outcome string)                                    {}
func (r *NoOpRegistry) IncrementGatewayRequests(operation, outcome string)                   {}
func (r *NoOpRegistry) RecordGatewayLatency(operation string, duration time.Duration)        {}
func (r *NoOpRegistry) IncrementLifecycleEvents(eventType string)                            {}
func (r *NoOpRegistry) IncrementNotifyFailures()                                             {}
