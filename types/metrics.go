package types

// MetricsCollector defines methods for collecting operational metrics.
//
// All methods accept the Backend that produced the measurement and, where it
// applies, the connector operation name (e.g. "read", "add_document", "get").
// Implementations should be thread-safe as methods may be called concurrently.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/squashedelephant/connectors/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	conn, _ := connectors.NewWideColumnConnector(cfg,
//	    connectors.WithMetrics(collector),
//	)
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// IncOperationTotal increments the operation counter.
	IncOperationTotal(backend Backend, op string)

	// IncOperationStatus increments the counter of envelopes returned with code.
	IncOperationStatus(backend Backend, op string, code StatusCode)

	// ObserveOperationDuration records an operation duration in seconds,
	// session setup and teardown included.
	ObserveOperationDuration(backend Backend, op string, seconds float64)

	// ObservePagesDrained records how many result pages a read needed.
	ObservePagesDrained(backend Backend, pages int)

	// IncSessionError increments the counter of failed session setups or teardowns.
	IncSessionError(backend Backend)
}
