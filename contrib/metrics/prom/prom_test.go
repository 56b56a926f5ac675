package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squashedelephant/connectors/types"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, WithNamespace("test"))

	c.IncOperationTotal(types.BackendQueue, "insert")
	c.IncOperationTotal(types.BackendQueue, "insert")
	c.IncOperationStatus(types.BackendQueue, "insert", types.QueueItemSubmitted)
	c.IncSessionError(types.BackendCQL)

	assert.InDelta(t, 2, testutil.ToFloat64(c.operations.WithLabelValues("queue", "insert")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.statuses.WithLabelValues("queue", "insert", "4007", "item_submitted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.sessionErrors.WithLabelValues("cql")), 0)
}

func TestCollector_Histograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, WithDurationBuckets([]float64{0.1, 1}))

	c.ObserveOperationDuration(types.BackendSearch, "find_document", 0.05)
	c.ObservePagesDrained(types.BackendCQL, 4)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]uint64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if h := m.GetHistogram(); h != nil {
				names[mf.GetName()] += h.GetSampleCount()
			}
		}
	}
	assert.Equal(t, uint64(1), names["connectors_operation_duration_seconds"])
	assert.Equal(t, uint64(1), names["connectors_pages_drained"])
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}
