// Package metrics provides Prometheus metrics collection for cloudrest.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/artpar/cloudrest/ports"
)

const namespace = "cloudrest"

// Collector holds all Prometheus metrics for cloudrest.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Driver metrics
	InvocationsTotal   *prometheus.CounterVec
	InvocationDuration *prometheus.HistogramVec
	SchemaBuilds       *prometheus.CounterVec

	// Error metrics
	ErrorsTotal *prometheus.CounterVec

	// Config metrics
	ConfigReloads prometheus.Counter
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		InvocationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocations_total",
				Help:      "Total number of driver method invocations",
			},
			[]string{"service", "provider", "method", "outcome"},
		),
		InvocationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "invocation_duration_seconds",
				Help:      "Driver method invocation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"service", "provider", "method"},
		),
		SchemaBuilds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schema_builds_total",
				Help:      "Total number of method schemas built",
			},
			[]string{"outcome"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of error responses by error class",
			},
			[]string{"name"},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
	}
}

// ObserveInvocation records one driver method invocation.
func (c *Collector) ObserveInvocation(service, provider, method, outcome string, seconds float64) {
	c.InvocationsTotal.WithLabelValues(service, provider, method, outcome).Inc()
	c.InvocationDuration.WithLabelValues(service, provider, method).Observe(seconds)
}

// ObserveSchemaBuild records one schema build.
func (c *Collector) ObserveSchemaBuild(_, _ string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.SchemaBuilds.WithLabelValues(outcome).Inc()
}

// ObserveError records an error response.
func (c *Collector) ObserveError(name string) {
	c.ErrorsTotal.WithLabelValues(name).Inc()
}

var _ ports.InvocationRecorder = (*Collector)(nil)

// Nop discards all observations.
type Nop struct{}

func (Nop) ObserveInvocation(string, string, string, string, float64) {}
func (Nop) ObserveSchemaBuild(string, string, error)                  {}

var _ ports.InvocationRecorder = Nop{}
