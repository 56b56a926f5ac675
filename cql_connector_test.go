package connectors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squashedelephant/connectors"
	"github.com/squashedelephant/connectors/adapter/cql"
	"github.com/squashedelephant/connectors/policy"
	"github.com/squashedelephant/connectors/test/testutil"
	"github.com/squashedelephant/connectors/types"
)

func cqlConfig(env types.Environment, pageSize int) connectors.CQLConfig {
	return connectors.CQLConfig{
		ConnectionConfig: connectors.ConnectionConfig{
			Hosts:       []string{"10.0.0.1"},
			Target:      "inventory",
			Environment: env,
		},
		PageSize: pageSize,
	}
}

func newWideColumn(t *testing.T, session *testutil.MockCQLSession, cfg connectors.CQLConfig, opts ...connectors.Option) *connectors.WideColumnConnector {
	t.Helper()

	opts = append([]connectors.Option{connectors.WithCQLDialer(session.Dialer())}, opts...)
	conn, err := connectors.NewWideColumnConnector(cfg, opts...)
	require.NoError(t, err)

	return conn
}

func makeRows(n int) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{"pk": i, "name": fmt.Sprintf("item-%d", i)}
	}

	return rows
}

func TestNewWideColumnConnector_Validation(t *testing.T) {
	_, err := connectors.NewWideColumnConnector(connectors.CQLConfig{
		ConnectionConfig: connectors.ConnectionConfig{Target: "ks"},
	})
	require.ErrorIs(t, err, types.ErrNoHosts)

	_, err = connectors.NewWideColumnConnector(connectors.CQLConfig{
		ConnectionConfig: connectors.ConnectionConfig{Hosts: []string{"h"}},
	})
	require.ErrorIs(t, err, types.ErrNoTarget)

	_, err = connectors.NewWideColumnConnector(connectors.CQLConfig{
		ConnectionConfig: connectors.ConnectionConfig{Hosts: []string{"h"}, Target: "ks", Port: 70000},
	})
	require.ErrorIs(t, err, types.ErrInvalidPort)

	_, err = connectors.NewWideColumnConnector(connectors.CQLConfig{
		ConnectionConfig: connectors.ConnectionConfig{Hosts: []string{"h"}, Target: "ks", Environment: "staging"},
	})
	require.ErrorIs(t, err, types.ErrInvalidEnvironment)
}

func TestWideColumn_ConfigIsCopied(t *testing.T) {
	hosts := []string{"10.0.0.1"}
	cfg := cqlConfig(types.EnvLocal, 0)
	cfg.Hosts = hosts

	conn := newWideColumn(t, testutil.NewMockCQLSession(), cfg)
	hosts[0] = "mutated"

	assert.Equal(t, []string{"10.0.0.1"}, conn.Config().Hosts)
	assert.Equal(t, cql.DefaultPort, conn.Config().Port)
	assert.Equal(t, connectors.DefaultPageSize, conn.Config().PageSize)
}

func TestWideColumn_ReadCardinality(t *testing.T) {
	tests := []struct {
		name   string
		rows   int
		code   types.StatusCode
		reason string
	}{
		{"no rows", 0, types.CQLReadNoRows, "No rows found"},
		{"one row", 1, types.CQLReadOneRow, "OK"},
		{"many rows", 3, types.CQLReadManyRows, "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newWideColumn(t, testutil.NewMockCQLSession(makeRows(tt.rows)...), cqlConfig(types.EnvLocal, 0))

			env := conn.Read(context.Background(), "SELECT * FROM items")
			assert.Equal(t, tt.code, env.StatusCode)
			assert.Equal(t, tt.reason, env.Reason)
			assert.Len(t, env.Data, tt.rows)
			assert.NotNil(t, env.Data)
		})
	}
}

func TestWideColumn_WriteCardinality(t *testing.T) {
	tests := []struct {
		name   string
		rows   int
		code   types.StatusCode
		reason string
	}{
		{"no rows", 0, types.CQLObjectCreated, "object created successfully"},
		{"one row", 1, types.CQLWriteOneRow, "OK"},
		{"many rows", 2, types.CQLWriteManyRows, "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newWideColumn(t, testutil.NewMockCQLSession(makeRows(tt.rows)...), cqlConfig(types.EnvLocal, 0))

			env := conn.Write(context.Background(), "INSERT INTO items (pk) VALUES (?)", 1)
			assert.Equal(t, tt.code, env.StatusCode)
			assert.Equal(t, tt.reason, env.Reason)
			assert.Len(t, env.Data, tt.rows)
		})
	}
}

func TestWideColumn_PageDrainingIsSizeInvariant(t *testing.T) {
	rows := makeRows(23)

	var baseline []types.Record
	for _, pageSize := range []int{1, 4, 5, 22, 23, 24, 5000} {
		t.Run(fmt.Sprintf("page_size_%d", pageSize), func(t *testing.T) {
			session := testutil.NewMockCQLSession(rows...)
			collector := testutil.NewTestMetricsCollector()
			conn := newWideColumn(t, session, cqlConfig(types.EnvLocal, pageSize), connectors.WithMetrics(collector))

			env := conn.Read(context.Background(), "SELECT * FROM items")
			require.Equal(t, types.CQLReadManyRows, env.StatusCode)
			require.Len(t, env.Data, len(rows))

			if baseline == nil {
				baseline = env.Data
			}
			assert.Equal(t, baseline, env.Data)

			wantPages := (len(rows) + pageSize - 1) / pageSize
			assert.Equal(t, wantPages, session.Pages())
			assert.Equal(t, []int{wantPages}, collector.GetPagesDrained(types.BackendCQL))
		})
	}
}

func TestWideColumn_UUIDCoercion(t *testing.T) {
	id := uuid.New()
	raw := [16]byte(uuid.New())
	bytesID := uuid.New()

	session := testutil.NewMockCQLSession(map[string]any{
		"item_id":  id,
		"owner_id": raw,
		"batch_id": bytesID[:],
		"text_id":  "already-a-string",
		"null_id":  nil,
		"checksum": raw,
		"count":    7,
	})
	conn := newWideColumn(t, session, cqlConfig(types.EnvLocal, 0))

	env := conn.Read(context.Background(), "SELECT * FROM items WHERE item_id = ?", id)
	require.Equal(t, types.CQLReadOneRow, env.StatusCode)

	row := env.First()
	assert.Equal(t, id.String(), row["item_id"])
	assert.Equal(t, uuid.UUID(raw).String(), row["owner_id"])
	assert.Equal(t, bytesID.String(), row["batch_id"])
	assert.Equal(t, "already-a-string", row["text_id"])
	assert.Nil(t, row["null_id"])
	assert.Equal(t, raw, row["checksum"])
	assert.Equal(t, 7, row["count"])
}

func TestWideColumn_CustomUUIDSuffix(t *testing.T) {
	id := uuid.New()
	cfg := cqlConfig(types.EnvLocal, 0)
	cfg.UUIDSuffix = "_uuid"

	conn := newWideColumn(t, testutil.NewMockCQLSession(map[string]any{"owner_uuid": id, "item_id": 3}), cfg)

	row := conn.Read(context.Background(), "SELECT * FROM items").First()
	assert.Equal(t, id.String(), row["owner_uuid"])
	assert.Equal(t, 3, row["item_id"])
}

func TestWideColumn_EnvironmentProfile(t *testing.T) {
	tests := []struct {
		env         types.Environment
		consistency types.Consistency
		selection   policy.HostSelection
	}{
		{types.EnvProduction, types.LocalQuorum, policy.DCAwareRoundRobin},
		{types.EnvLocal, types.One, policy.RoundRobin},
	}

	for _, tt := range tests {
		t.Run(tt.env.String(), func(t *testing.T) {
			session := testutil.NewMockCQLSession(makeRows(1)...)
			conn := newWideColumn(t, session, cqlConfig(tt.env, 0))

			env := conn.Read(context.Background(), "SELECT * FROM items WHERE pk = ?", 0)
			require.Equal(t, types.CQLReadOneRow, env.StatusCode)

			cfg := session.LastConfig()
			assert.Equal(t, "inventory", cfg.Keyspace)
			assert.Equal(t, []string{"10.0.0.1"}, cfg.Hosts)
			assert.Equal(t, cql.DefaultProtoVersion, cfg.ProtoVersion)
			assert.Equal(t, tt.consistency, cfg.Policy.Consistency)
			assert.Equal(t, tt.selection, cfg.Policy.HostSelection)

			queries := session.Queries()
			require.Len(t, queries, 1)
			assert.Equal(t, tt.consistency, queries[0].GetConsistency())
			assert.Equal(t, []any{0}, queries[0].Values())
		})
	}
}

func TestWideColumn_SessionPerCall(t *testing.T) {
	session := testutil.NewMockCQLSession(makeRows(2)...)
	conn := newWideColumn(t, session, cqlConfig(types.EnvLocal, 0))

	conn.Read(context.Background(), "SELECT * FROM items")
	conn.Write(context.Background(), "DELETE FROM items WHERE pk = 1")

	assert.Equal(t, 2, session.Dials())
	assert.Equal(t, 2, session.Closes())
}

func TestWideColumn_Failures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   types.StatusCode
		reason string
	}{
		{
			name:   "unreachable",
			err:    types.NewError(types.KindUnreachable, "connect", errors.New("no hosts available")),
			code:   types.CQLUnreachable,
			reason: "Unable to reach Cassandra at [10.0.0.1]:9042",
		},
		{
			name:   "timeout",
			err:    types.NewError(types.KindTimeout, "execute", errors.New("request timed out")),
			code:   types.CQLTimeout,
			reason: "connectors: execute failed (timeout): request timed out",
		},
		{
			name:   "keyspace missing",
			err:    types.NewError(types.KindTargetMissing, "connect", errors.New("keyspace does not exist")),
			code:   types.CQLKeyspaceMissing,
			reason: "Keyspace: inventory not loaded",
		},
		{
			name:   "invalid request",
			err:    types.NewError(types.KindInvalidRequest, "execute", errors.New("line 1:0 no viable alternative")),
			code:   types.CQLInvalidRequest,
			reason: "connectors: execute failed (invalid_request): line 1:0 no viable alternative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" on dial", func(t *testing.T) {
			session := testutil.NewMockCQLSession()
			session.DialErr = tt.err
			conn := newWideColumn(t, session, cqlConfig(types.EnvLocal, 0))

			env := conn.Read(context.Background(), "SELECT * FROM items")
			assert.Equal(t, tt.code, env.StatusCode)
			assert.Equal(t, tt.reason, env.Reason)
			assert.Empty(t, env.Data)
			assert.NotNil(t, env.Data)
			assert.Equal(t, 0, session.Closes())
		})

		t.Run(tt.name+" on execute", func(t *testing.T) {
			session := testutil.NewMockCQLSession()
			session.OnQuery = func(string, ...any) ([]map[string]any, error) { return nil, tt.err }
			conn := newWideColumn(t, session, cqlConfig(types.EnvLocal, 0))

			env := conn.Write(context.Background(), "INSERT INTO items (pk) VALUES (?)", 1)
			assert.Equal(t, tt.code, env.StatusCode)
			assert.Equal(t, tt.reason, env.Reason)
			assert.Equal(t, 1, session.Closes())
		})
	}
}

func TestWideColumn_UnknownFailureCarriesDiagnostics(t *testing.T) {
	session := testutil.NewMockCQLSession()
	session.OnQuery = func(string, ...any) ([]map[string]any, error) { return nil, errors.New("driver exploded") }
	conn := newWideColumn(t, session, cqlConfig(types.EnvLocal, 0))

	env := conn.Read(context.Background(), "SELECT * FROM items WHERE pk = ?", 42)
	assert.Equal(t, types.CQLUnknown, env.StatusCode)
	assert.Contains(t, env.Reason, "sql: SELECT * FROM items WHERE pk = ?")
	assert.Contains(t, env.Reason, "values: [42]")
	assert.Contains(t, env.Reason, "driver exploded")
	assert.Contains(t, env.Reason, "observe.go")
}

func TestWideColumn_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conn := newWideColumn(t, testutil.NewMockCQLSession(makeRows(1)...), cqlConfig(types.EnvLocal, 0))

	env := conn.Read(ctx, "SELECT * FROM items")
	assert.Equal(t, types.CQLTimeout, env.StatusCode)
}

func TestWideColumn_DeadlineDuringPaging(t *testing.T) {
	mock := testutil.NewMockCQLSession(makeRows(10)...)
	slow := &testutil.SlowCQLSession{Session: mock, Delay: 20 * time.Millisecond}

	conn, err := connectors.NewWideColumnConnector(cqlConfig(types.EnvLocal, 2),
		connectors.WithCQLDialer(slow.Dialer()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	env := conn.Read(ctx, "SELECT * FROM items")
	assert.Equal(t, types.CQLTimeout, env.StatusCode)
	assert.Empty(t, env.Data)
	assert.Less(t, mock.Pages(), 5)
	assert.Equal(t, 1, mock.Closes())
}

func TestWideColumn_PanicIsRecovered(t *testing.T) {
	session := testutil.NewMockCQLSession()
	session.PanicOnQuery = "kaboom"
	conn := newWideColumn(t, session, cqlConfig(types.EnvLocal, 0))

	var env types.Envelope
	require.NotPanics(t, func() {
		env = conn.Read(context.Background(), "SELECT * FROM items")
	})
	assert.Equal(t, types.CQLUnknown, env.StatusCode)
	assert.Contains(t, env.Reason, "panic: kaboom")
	assert.Contains(t, env.Reason, "sql: SELECT * FROM items")
	assert.Equal(t, 1, session.Closes())
}

func TestWideColumn_TeardownFailure(t *testing.T) {
	t.Run("overrides success", func(t *testing.T) {
		session := testutil.NewMockCQLSession(makeRows(1)...)
		session.CloseErr = types.NewError(types.KindUnreachable, "close", errors.New("connection reset"))
		collector := testutil.NewTestMetricsCollector()
		conn := newWideColumn(t, session, cqlConfig(types.EnvLocal, 0), connectors.WithMetrics(collector))

		env := conn.Read(context.Background(), "SELECT * FROM items")
		assert.Equal(t, types.CQLUnreachable, env.StatusCode)
		assert.Empty(t, env.Data)
		assert.Equal(t, int64(1), collector.GetSessionErrors(types.BackendCQL))
	})

	t.Run("operation failure wins", func(t *testing.T) {
		session := testutil.NewMockCQLSession()
		session.OnQuery = func(string, ...any) ([]map[string]any, error) {
			return nil, types.NewError(types.KindInvalidRequest, "execute", errors.New("bad"))
		}
		session.CloseErr = errors.New("close failed")
		logger := testutil.NewTestLogger()
		conn := newWideColumn(t, session, cqlConfig(types.EnvLocal, 0), connectors.WithLogger(logger))

		env := conn.Read(context.Background(), "SELECT * FROM items")
		assert.Equal(t, types.CQLInvalidRequest, env.StatusCode)

		var teardown bool
		for _, e := range logger.Entries("warn") {
			if e.Msg == "session teardown failed" {
				teardown = true
			}
		}
		assert.True(t, teardown)
	})
}

func TestWideColumn_Metrics(t *testing.T) {
	collector := testutil.NewTestMetricsCollector()
	conn := newWideColumn(t, testutil.NewMockCQLSession(), cqlConfig(types.EnvLocal, 0), connectors.WithMetrics(collector))

	conn.Read(context.Background(), "SELECT * FROM items")
	conn.Write(context.Background(), "INSERT INTO items (pk) VALUES (1)")

	assert.Equal(t, int64(1), collector.GetOperationTotal(types.BackendCQL, "read"))
	assert.Equal(t, int64(1), collector.GetOperationTotal(types.BackendCQL, "write"))
	assert.Equal(t, int64(1), collector.GetStatusCount(types.CQLReadNoRows))
	assert.Equal(t, int64(1), collector.GetStatusCount(types.CQLObjectCreated))
}
