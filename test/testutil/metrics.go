package testutil

import (
	"sync"

	"github.com/squashedelephant/connectors/types"
)

// TestMetricsCollector is a test implementation of types.MetricsCollector
// that records every call for assertion.
type TestMetricsCollector struct {
	mu sync.RWMutex

	// OperationTotal counts operations by "backend/op".
	OperationTotal map[string]int64

	// OperationStatus counts envelopes by status code.
	OperationStatus map[types.StatusCode]int64

	// OperationDuration records durations by "backend/op".
	OperationDuration map[string][]float64

	// PagesDrained records page counts by backend.
	PagesDrained map[types.Backend][]int

	// SessionErrors counts session setup/teardown failures by backend.
	SessionErrors map[types.Backend]int64
}

// Compile-time assertion that TestMetricsCollector implements types.MetricsCollector.
var _ types.MetricsCollector = (*TestMetricsCollector)(nil)

// NewTestMetricsCollector creates a new test metrics collector.
func NewTestMetricsCollector() *TestMetricsCollector {
	m := &TestMetricsCollector{}
	m.Reset()

	return m
}

func opKey(backend types.Backend, op string) string {
	return string(backend) + "/" + op
}

// IncOperationTotal records an operation.
func (m *TestMetricsCollector) IncOperationTotal(backend types.Backend, op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OperationTotal[opKey(backend, op)]++
}

// IncOperationStatus records an envelope status.
func (m *TestMetricsCollector) IncOperationStatus(_ types.Backend, _ string, code types.StatusCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OperationStatus[code]++
}

// ObserveOperationDuration records a duration.
func (m *TestMetricsCollector) ObserveOperationDuration(backend types.Backend, op string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := opKey(backend, op)
	m.OperationDuration[key] = append(m.OperationDuration[key], seconds)
}

// ObservePagesDrained records a page count.
func (m *TestMetricsCollector) ObservePagesDrained(backend types.Backend, pages int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PagesDrained[backend] = append(m.PagesDrained[backend], pages)
}

// IncSessionError records a session failure.
func (m *TestMetricsCollector) IncSessionError(backend types.Backend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionErrors[backend]++
}

// GetOperationTotal returns the operation count of backend/op.
func (m *TestMetricsCollector) GetOperationTotal(backend types.Backend, op string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.OperationTotal[opKey(backend, op)]
}

// GetStatusCount returns how many envelopes carried code.
func (m *TestMetricsCollector) GetStatusCount(code types.StatusCode) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.OperationStatus[code]
}

// GetPagesDrained returns the recorded page counts of backend.
func (m *TestMetricsCollector) GetPagesDrained(backend types.Backend) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]int(nil), m.PagesDrained[backend]...)
}

// GetSessionErrors returns the session failure count of backend.
func (m *TestMetricsCollector) GetSessionErrors(backend types.Backend) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.SessionErrors[backend]
}

// Reset clears all recorded metrics.
func (m *TestMetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.OperationTotal = make(map[string]int64)
	m.OperationStatus = make(map[types.StatusCode]int64)
	m.OperationDuration = make(map[string][]float64)
	m.PagesDrained = make(map[types.Backend][]int)
	m.SessionErrors = make(map[types.Backend]int64)
}
