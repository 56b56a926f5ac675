// Package prom provides a Prometheus client_golang implementation of the
// MetricsCollector interface.
//
// Metrics are registered on the given registry at construction:
//
//	reg := prometheus.NewRegistry()
//	collector := prom.New(reg)
//	conn, _ := connectors.NewSearchIndexConnector(cfg,
//	    connectors.WithMetrics(collector),
//	)
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/squashedelephant/connectors/types"
)

// Option configures a Collector.
type Option func(*options)

type options struct {
	namespace string
	buckets   []float64
}

// WithNamespace sets the metric namespace. Default: "connectors".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithDurationBuckets sets the buckets of the operation duration histogram.
func WithDurationBuckets(buckets []float64) Option {
	return func(o *options) {
		o.buckets = buckets
	}
}

// Collector implements types.MetricsCollector with Prometheus vectors.
type Collector struct {
	operations    *prometheus.CounterVec
	statuses      *prometheus.CounterVec
	durations     *prometheus.HistogramVec
	pages         *prometheus.HistogramVec
	sessionErrors *prometheus.CounterVec
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a collector and registers its metrics on reg.
//
// A nil reg registers on prometheus.DefaultRegisterer. Registering twice on
// the same registry panics, as with promauto.
func New(reg prometheus.Registerer, opts ...Option) *Collector {
	o := options{
		namespace: "connectors",
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "operations_total",
			Help:      "Total number of connector operations",
		}, []string{"backend", "op"}),
		statuses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "operation_status_total",
			Help:      "Envelopes returned by status code",
		}, []string{"backend", "op", "code", "status"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "operation_duration_seconds",
			Help:      "Operation duration in seconds, session setup and teardown included",
			Buckets:   o.buckets,
		}, []string{"backend", "op"}),
		pages: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "pages_drained",
			Help:      "Result pages fetched per read",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"backend"}),
		sessionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "session_errors_total",
			Help:      "Failed session setups or teardowns",
		}, []string{"backend"}),
	}
}

// IncOperationTotal increments the operation counter.
func (c *Collector) IncOperationTotal(backend types.Backend, op string) {
	c.operations.WithLabelValues(backend.String(), op).Inc()
}

// IncOperationStatus increments the envelope counter of a status code.
func (c *Collector) IncOperationStatus(backend types.Backend, op string, code types.StatusCode) {
	c.statuses.WithLabelValues(backend.String(), op, strconv.Itoa(int(code)), code.Name()).Inc()
}

// ObserveOperationDuration records an operation latency.
func (c *Collector) ObserveOperationDuration(backend types.Backend, op string, seconds float64) {
	c.durations.WithLabelValues(backend.String(), op).Observe(seconds)
}

// ObservePagesDrained records how many pages a read fetched.
func (c *Collector) ObservePagesDrained(backend types.Backend, pages int) {
	c.pages.WithLabelValues(backend.String()).Observe(float64(pages))
}

// IncSessionError increments the session failure counter.
func (c *Collector) IncSessionError(backend types.Backend) {
	c.sessionErrors.WithLabelValues(backend.String()).Inc()
}
