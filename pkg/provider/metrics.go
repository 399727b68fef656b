package provider

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics exported by a provider instance.
type Metrics struct {
	// RequestsTotal counts dispatched requests by method and outcome
	// (resolved or rejected).
	RequestsTotal *prometheus.CounterVec
	// EventsEmitted counts event-bus emissions by event name.
	EventsEmitted *prometheus.CounterVec
	// ConnectivityTransitions counts tracker edges by direction
	// (connect or disconnect).
	ConnectivityTransitions *prometheus.CounterVec
	// SubscriptionPushes counts raw pushes routed into message events.
	SubscriptionPushes prometheus.Counter
	// DroppedPushes counts raw pushes no decoder recognized.
	DroppedPushes prometheus.Counter
	// ActiveListeners tracks the current number of event registrations.
	ActiveListeners prometheus.Gauge
}

// NewMetrics registers the provider metrics on the default registerer.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// NewMetricsWithRegistry registers the provider metrics on the given
// registerer, falling back to the default one when nil.
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "The total number of dispatched RPC requests by method and outcome",
		}, []string{"method", "outcome"}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_events_emitted_total",
			Help: "The total number of event emissions by event name",
		}, []string{"event"}),
		ConnectivityTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_connectivity_transitions_total",
			Help: "The total number of connectivity state transitions by direction",
		}, []string{"direction"}),
		SubscriptionPushes: factory.NewCounter(prometheus.CounterOpts{
			Name: "provider_subscription_pushes_total",
			Help: "The total number of raw pushes routed into message events",
		}),
		DroppedPushes: factory.NewCounter(prometheus.CounterOpts{
			Name: "provider_dropped_pushes_total",
			Help: "The total number of raw pushes no decoder recognized",
		}),
		ActiveListeners: factory.NewGauge(prometheus.GaugeOpts{
			Name: "provider_active_listeners",
			Help: "The current number of registered event listeners",
		}),
	}
}
