// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// high-performance Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "connectors":
//
//	collector := vm.New()
//	conn, _ := connectors.NewWideColumnConnector(cfg,
//	    connectors.WithMetrics(collector),
//	)
//
// # Exposing Metrics
//
// Use the Handler method to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// # Metrics Provided
//
//   - {prefix}_operations_total{backend,op} - Counter of operations
//   - {prefix}_operation_status_total{backend,op,code,status} - Counter of envelopes by status code
//   - {prefix}_operation_duration_seconds{backend,op} - Histogram of operation latencies
//   - {prefix}_pages_drained{backend} - Histogram of pages fetched per read
//   - {prefix}_session_errors_total{backend} - Counter of session setup/teardown failures
package vm
