package connectors

import (
	"context"
	"fmt"

	"github.com/squashedelephant/connectors/adapter/cql"
	"github.com/squashedelephant/connectors/policy"
	"github.com/squashedelephant/connectors/types"
)

// WideColumnConnector runs CQL statements against a Cassandra or ScyllaDB
// keyspace.
//
// Every call dials its own session, drains all result pages, closes the
// session and reports the outcome as an Envelope in the 2000 range.
//
// # Thread Safety
//
// WideColumnConnector holds only immutable configuration and is safe for
// concurrent use from multiple goroutines.
type WideColumnConnector struct {
	cfg    CQLConfig
	policy policy.CQL
	opts   *Options
	dial   cql.Dialer
}

// NewWideColumnConnector creates a connector bound to cfg.Target (the keyspace).
//
// Unset fields of cfg take the values of DefaultCQLConfig. The environment
// selects the resilience profile (see policy.ForCQL).
//
// Parameters:
//   - cfg: Connection configuration
//   - opts: Optional configuration options
//
// Returns:
//   - *WideColumnConnector: A new connector
//   - error: Validation error
func NewWideColumnConnector(cfg CQLConfig, opts ...Option) (*WideColumnConnector, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions(opts)

	return &WideColumnConnector{
		cfg:    cfg,
		policy: policy.ForCQL(cfg.Environment),
		opts:   o,
		dial:   cqlDialer(o, cfg.Driver),
	}, nil
}

// Config returns a copy of the connector's configuration.
func (c *WideColumnConnector) Config() CQLConfig {
	cfg := c.cfg
	cfg.ConnectionConfig = cfg.clone()

	return cfg
}

// Write executes a mutation statement.
//
// Rows returned by the statement (e.g. lightweight transaction results)
// select the code: none is CQLObjectCreated, one is CQLWriteOneRow, more
// is CQLWriteManyRows.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - stmt: CQL statement with ? placeholders
//   - values: Values to bind to placeholders
//
// Returns:
//   - types.Envelope: The outcome; never an error
func (c *WideColumnConnector) Write(ctx context.Context, stmt string, values ...any) types.Envelope {
	return c.execute(ctx, "write", stmt, values, writeEnvelope)
}

// Read executes a query and returns every row of every page.
//
// No rows is CQLReadNoRows, one is CQLReadOneRow, more is CQLReadManyRows.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - stmt: CQL statement with ? placeholders
//   - values: Values to bind to placeholders
//
// Returns:
//   - types.Envelope: The outcome; never an error
func (c *WideColumnConnector) Read(ctx context.Context, stmt string, values ...any) types.Envelope {
	return c.execute(ctx, "read", stmt, values, readEnvelope)
}

func (c *WideColumnConnector) execute(
	ctx context.Context,
	op string,
	stmt string,
	values []any,
	shape func([]types.Record) types.Envelope,
) (env types.Envelope) {
	call := c.opts.begin(types.BackendCQL, op, "keyspace", c.cfg.Target)
	defer func() { call.finish(env) }()
	defer func() {
		if r := recover(); r != nil {
			env = types.Failure(types.CQLUnknown, diagnose(recovered(r), "sql", stmt, "values", values))
		}
	}()

	session, err := c.dial(ctx, c.clusterConfig())
	if err != nil {
		call.sessionError("setup", err)
		return c.failure(err, stmt, values)
	}
	defer func() {
		if err := session.Close(); err != nil {
			call.sessionError("teardown", err)
			if env.OK() {
				env = c.failure(err, stmt, values)
			}
		}
	}()

	rows, pages, err := c.drain(ctx, session, stmt, values)
	c.opts.Metrics.ObservePagesDrained(types.BackendCQL, pages)
	if err != nil {
		return c.failure(err, stmt, values)
	}

	return shape(rows)
}

// drain fetches pages until the driver reports no further page state.
func (c *WideColumnConnector) drain(ctx context.Context, s cql.Session, stmt string, values []any) ([]types.Record, int, error) {
	rows := []types.Record{}
	var state []byte
	pages := 0

	for {
		iter := s.Query(stmt, values...).
			Consistency(c.policy.Consistency).
			PageSize(c.cfg.PageSize).
			PageState(state).
			IterContext(ctx)
		pages++

		for {
			row := make(map[string]any)
			if !iter.MapScan(row) {
				break
			}
			rows = append(rows, formatRow(row, c.cfg.UUIDSuffix))
		}

		state = iter.PageState()
		if err := iter.Close(); err != nil {
			return nil, pages, err
		}
		if len(state) == 0 {
			return rows, pages, nil
		}
	}
}

func (c *WideColumnConnector) clusterConfig() cql.ClusterConfig {
	cfg := c.Config()

	return cql.ClusterConfig{
		Hosts:          cfg.Hosts,
		Port:           cfg.Port,
		Keyspace:       cfg.Target,
		CQLVersion:     cfg.CQLVersion,
		ProtoVersion:   cfg.ProtocolVersion,
		LocalDC:        cfg.LocalDC,
		Timeout:        cfg.Timeout,
		ConnectTimeout: cfg.ConnectTimeout,
		Compression:    !cfg.DisableCompression,
		Policy:         c.policy,
	}
}

func (c *WideColumnConnector) failure(err error, stmt string, values []any) types.Envelope {
	switch types.KindOf(err) {
	case types.KindUnreachable:
		return types.Failure(types.CQLUnreachable,
			fmt.Sprintf("Unable to reach Cassandra at %v:%d", c.cfg.Hosts, c.cfg.Port))
	case types.KindTimeout:
		return types.Failure(types.CQLTimeout, err.Error())
	case types.KindTargetMissing:
		return types.Failure(types.CQLKeyspaceMissing, fmt.Sprintf("Keyspace: %s not loaded", c.cfg.Target))
	case types.KindInvalidRequest:
		return types.Failure(types.CQLInvalidRequest, err.Error())
	default:
		return types.Failure(types.CQLUnknown, diagnose(err, "sql", stmt, "values", values))
	}
}

func writeEnvelope(rows []types.Record) types.Envelope {
	switch len(rows) {
	case 0:
		return types.NewEnvelope(types.CQLObjectCreated, "object created successfully", rows...)
	case 1:
		return types.NewEnvelope(types.CQLWriteOneRow, "OK", rows...)
	default:
		return types.NewEnvelope(types.CQLWriteManyRows, "OK", rows...)
	}
}

func readEnvelope(rows []types.Record) types.Envelope {
	switch len(rows) {
	case 0:
		return types.NewEnvelope(types.CQLReadNoRows, "No rows found", rows...)
	case 1:
		return types.NewEnvelope(types.CQLReadOneRow, "OK", rows...)
	default:
		return types.NewEnvelope(types.CQLReadManyRows, "OK", rows...)
	}
}
