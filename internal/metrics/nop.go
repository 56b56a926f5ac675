// Package metrics provides internal metrics utilities for connectors.
package metrics

import "github.com/squashedelephant/connectors/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is configured,
// avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// IncOperationTotal discards the metric.
func (m *NopMetrics) IncOperationTotal(_ types.Backend, _ string) {}

// IncOperationStatus discards the metric.
func (m *NopMetrics) IncOperationStatus(_ types.Backend, _ string, _ types.StatusCode) {}

// ObserveOperationDuration discards the metric.
func (m *NopMetrics) ObserveOperationDuration(_ types.Backend, _ string, _ float64) {}

// ObservePagesDrained discards the metric.
func (m *NopMetrics) ObservePagesDrained(_ types.Backend, _ int) {}

// IncSessionError discards the metric.
func (m *NopMetrics) IncSessionError(_ types.Backend) {}
