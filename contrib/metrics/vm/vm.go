package vm

import (
	"fmt"
	"io"
	"net/http"

	"github.com/VictoriaMetrics/metrics"

	"github.com/squashedelephant/connectors/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "connectors"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

var backends = []types.Backend{types.BackendCQL, types.BackendSearch, types.BackendQueue}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// Per-backend metrics are pre-created at initialization time; metrics
// labeled by operation or status code are created on first use.
// Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	pagesDrained  map[types.Backend]*metrics.Histogram
	sessionErrors map[types.Backend]*metrics.Counter
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	conn, _ := connectors.NewQueueConnector(cfg,
//	    connectors.WithMetrics(collector),
//	)
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "connectors",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

func (c *Collector) initMetrics() {
	c.pagesDrained = make(map[types.Backend]*metrics.Histogram, len(backends))
	c.sessionErrors = make(map[types.Backend]*metrics.Counter, len(backends))

	for _, b := range backends {
		c.pagesDrained[b] = c.set.NewHistogram(fmt.Sprintf(`%s_pages_drained{backend="%s"}`, c.prefix, b))
		c.sessionErrors[b] = c.set.NewCounter(fmt.Sprintf(`%s_session_errors_total{backend="%s"}`, c.prefix, b))
	}
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// IncOperationTotal increments the operation counter.
func (c *Collector) IncOperationTotal(backend types.Backend, op string) {
	c.set.GetOrCreateCounter(fmt.Sprintf(`%s_operations_total{backend="%s",op="%s"}`, c.prefix, backend, op)).Inc()
}

// IncOperationStatus increments the envelope counter of a status code.
func (c *Collector) IncOperationStatus(backend types.Backend, op string, code types.StatusCode) {
	c.set.GetOrCreateCounter(fmt.Sprintf(
		`%s_operation_status_total{backend="%s",op="%s",code="%d",status="%s"}`,
		c.prefix, backend, op, int(code), code.Name(),
	)).Inc()
}

// ObserveOperationDuration records an operation latency.
func (c *Collector) ObserveOperationDuration(backend types.Backend, op string, seconds float64) {
	c.set.GetOrCreateHistogram(fmt.Sprintf(`%s_operation_duration_seconds{backend="%s",op="%s"}`, c.prefix, backend, op)).Update(seconds)
}

// ObservePagesDrained records how many pages a read fetched.
func (c *Collector) ObservePagesDrained(backend types.Backend, pages int) {
	if h, ok := c.pagesDrained[backend]; ok {
		h.Update(float64(pages))
	}
}

// IncSessionError increments the session failure counter.
func (c *Collector) IncSessionError(backend types.Backend) {
	if ctr, ok := c.sessionErrors[backend]; ok {
		ctr.Inc()
	}
}
