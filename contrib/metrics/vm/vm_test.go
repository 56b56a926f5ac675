package vm

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squashedelephant/connectors/types"
)

func TestCollector_WritePrometheus(t *testing.T) {
	c := New(WithPrefix("test"), WithMetricsSet(metrics.NewSet()))

	c.IncOperationTotal(types.BackendCQL, "read")
	c.IncOperationTotal(types.BackendCQL, "read")
	c.IncOperationStatus(types.BackendCQL, "read", types.CQLReadManyRows)
	c.ObserveOperationDuration(types.BackendCQL, "read", 0.25)
	c.ObservePagesDrained(types.BackendCQL, 3)
	c.IncSessionError(types.BackendQueue)

	var buf bytes.Buffer
	c.WritePrometheus(&buf)
	out := buf.String()

	assert.Contains(t, out, `test_operations_total{backend="cql",op="read"} 2`)
	assert.Contains(t, out, `test_operation_status_total{backend="cql",op="read",code="2011",status="read_many_rows"} 1`)
	assert.Contains(t, out, `test_operation_duration_seconds_count{backend="cql",op="read"} 1`)
	assert.Contains(t, out, `test_pages_drained_sum{backend="cql"} 3`)
	assert.Contains(t, out, `test_session_errors_total{backend="queue"} 1`)
}

func TestCollector_UnknownBackendIgnored(t *testing.T) {
	c := New(WithMetricsSet(metrics.NewSet()))

	require.NotPanics(t, func() {
		c.ObservePagesDrained(types.Backend("kafka"), 1)
		c.IncSessionError(types.Backend("kafka"))
	})
}

func TestCollector_Handler(t *testing.T) {
	c := New(WithPrefix("handler"), WithMetricsSet(metrics.NewSet()))
	c.IncOperationTotal(types.BackendSearch, "add_document")

	rec := httptest.NewRecorder()
	c.Handler(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Contains(t, rec.Body.String(), `handler_operations_total{backend="search",op="add_document"} 1`)
}
