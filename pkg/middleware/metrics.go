package middleware

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/router"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "medapi").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "medapi",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the route host's Prometheus collectors.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseBytes   *prometheus.CounterVec
	inFlight        prometheus.Gauge
	routesMounted   prometheus.Gauge
	modulesFailed   prometheus.Gauge
	modulesEmpty    prometheus.Gauge
}

// NewMetrics registers the collectors.
//
// Metrics collected:
//   - medapi_requests_total: requests by method, route and status
//   - medapi_request_duration_seconds: handler duration by method and route
//   - medapi_response_bytes_total: bytes written by method and route
//   - medapi_requests_in_flight: requests currently being served
//   - medapi_routes_mounted: (method, path) pairs mounted at startup
//   - medapi_route_modules_failed: modules skipped at startup
//   - medapi_route_modules_empty: modules that exported no verbs
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of requests served by mounted routes",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method", "route"}),

		responseBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "response_bytes_total",
			Help:        "Total response body bytes written",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "route"}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_in_flight",
			Help:        "Number of requests currently being served",
			ConstLabels: config.ConstLabels,
		}),

		routesMounted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes_mounted",
			Help:        "Number of (method, path) pairs mounted at startup",
			ConstLabels: config.ConstLabels,
		}),

		modulesFailed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_modules_failed",
			Help:        "Number of route modules skipped because they failed to load",
			ConstLabels: config.ConstLabels,
		}),

		modulesEmpty: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_modules_empty",
			Help:        "Number of route modules that export no HTTP handlers",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Middleware records request metrics for one registration. The route label
// is the mount pattern, never the concrete path.
func (m *Metrics) Middleware(reg router.Registration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		snoop := httpsnoop.CaptureMetrics(next, w, r)

		m.requestDuration.WithLabelValues(reg.Method, reg.Pattern).Observe(snoop.Duration.Seconds())
		m.requestsTotal.WithLabelValues(reg.Method, reg.Pattern, strconv.Itoa(snoop.Code)).Inc()
		m.responseBytes.WithLabelValues(reg.Method, reg.Pattern).Add(float64(snoop.Written))
	})
}

// RecordRegistration records the startup summary.
func (m *Metrics) RecordRegistration(sum router.Summary) {
	m.routesMounted.Set(float64(sum.Mounted))
	m.modulesFailed.Set(float64(sum.Failed))
	m.modulesEmpty.Set(float64(sum.Empty))
}
