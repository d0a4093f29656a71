package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "swapgrid").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the engine's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	cacheEvents     *prometheus.CounterVec
	toggles         *prometheus.CounterVec
	exchanges       *prometheus.CounterVec
	windowRenders   prometheus.Counter
	measureFailures prometheus.Counter
	beaconsDropped  prometheus.Counter
}

// NewMetrics registers the engine's collectors.
//
// Metrics collected:
//   - swapgrid_cache_events_total: cache hits, misses, stores and prefetches
//   - swapgrid_toggles_total: toggle outcomes (success, failure, conflict)
//   - swapgrid_exchanges_total: partial-update outcomes
//   - swapgrid_window_renders_total: window renders that touched the page
//   - swapgrid_measure_failures_total: swallowed measurement failures
//   - swapgrid_beacons_dropped_total: beacons dropped under load
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "swapgrid",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		cacheEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "cache_events_total",
			Help:        "Total response cache events by type",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		toggles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "toggles_total",
			Help:        "Total optimistic toggles by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		exchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "exchanges_total",
			Help:        "Total partial-update exchanges by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		windowRenders: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "window_renders_total",
			Help:        "Total window renders that mutated the page",
			ConstLabels: config.ConstLabels,
		}),

		measureFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "measure_failures_total",
			Help:        "Total item measurements that failed and kept the previous estimate",
			ConstLabels: config.ConstLabels,
		}),

		beaconsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "beacons_dropped_total",
			Help:        "Total beacons dropped because too many were in flight",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// CacheEvent counts a cache event ("hit", "miss", "store", "prefetch").
func (m *Metrics) CacheEvent(event string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(event).Inc()
}

// Toggle counts a toggle outcome.
func (m *Metrics) Toggle(result string) {
	if m == nil {
		return
	}
	m.toggles.WithLabelValues(result).Inc()
}

// Exchange counts a partial-update outcome ("swapped", "send_error",
// "response_error", "cancelled").
func (m *Metrics) Exchange(outcome string) {
	if m == nil {
		return
	}
	m.exchanges.WithLabelValues(outcome).Inc()
}

// WindowRender counts a window render.
func (m *Metrics) WindowRender() {
	if m == nil {
		return
	}
	m.windowRenders.Inc()
}

// MeasureFailure counts a swallowed measurement failure.
func (m *Metrics) MeasureFailure() {
	if m == nil {
		return
	}
	m.measureFailures.Inc()
}

// BeaconDropped counts a dropped beacon.
func (m *Metrics) BeaconDropped() {
	if m == nil {
		return
	}
	m.beaconsDropped.Inc()
}
