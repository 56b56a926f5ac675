// Package cql provides CQL-specific adapter interfaces for different gocql versions.
package cql

import (
	"context"
	"strconv"
	"time"

	"github.com/squashedelephant/connectors/policy"
	"github.com/squashedelephant/connectors/types"
)

// Consistency is re-exported from the types package for convenience.
type Consistency = types.Consistency

// Re-export consistency level constants for convenience.
const (
	Any         = types.Any
	One         = types.One
	Two         = types.Two
	Three       = types.Three
	Quorum      = types.Quorum
	All         = types.All
	LocalQuorum = types.LocalQuorum
	EachQuorum  = types.EachQuorum
	Serial      = types.Serial
	LocalSerial = types.LocalSerial
	LocalOne    = types.LocalOne
)

// Connection defaults.
const (
	DefaultPort           = 9042
	DefaultCQLVersion     = "3.4.0"
	DefaultProtoVersion   = 4
	DefaultLocalDC        = "dc1"
	DefaultConnectTimeout = 5 * time.Second
)

// ClusterConfig describes how to open a CQL session.
//
// Connectors build one per operation from their immutable configuration and
// the environment's resilience profile.
type ClusterConfig struct {
	// Hosts are the contact points.
	Hosts []string

	// Port is the native protocol port.
	Port int

	// Keyspace is the default keyspace of the session.
	Keyspace string

	// CQLVersion is the CQL language version requested on startup.
	CQLVersion string

	// ProtoVersion is the native protocol version.
	ProtoVersion int

	// LocalDC is the datacenter preferred by DC-aware host selection.
	LocalDC string

	// Timeout bounds each request.
	Timeout time.Duration

	// ConnectTimeout bounds each connection attempt.
	ConnectTimeout time.Duration

	// Compression enables Snappy frame compression where the driver supports it.
	Compression bool

	// Policy is the environment's resilience profile.
	Policy policy.CQL
}

// Addr returns the first contact point as host:port, used in diagnostics.
func (c ClusterConfig) Addr() string {
	host := ""
	if len(c.Hosts) > 0 {
		host = c.Hosts[0]
	}

	return host + ":" + strconv.Itoa(c.Port)
}

// Dialer opens a CQL session.
//
// Implementations must classify connection failures as *types.Error.
type Dialer func(ctx context.Context, cfg ClusterConfig) (Session, error)

// Session represents a raw CQL session from the underlying driver.
//
// This interface is implemented by adapters for gocql v1 and v2.
type Session interface {
	// Query creates a new query for the given statement.
	//
	// Parameters:
	//   - stmt: CQL statement with ? placeholders
	//   - values: Values to bind to placeholders
	//
	// Returns:
	//   - Query: A query builder
	Query(stmt string, values ...any) Query

	// Close terminates the session.
	//
	// Returns:
	//   - error: nil on success, classified error if teardown fails
	Close() error
}

// Query represents a raw CQL query from the underlying driver.
type Query interface {
	// Consistency sets the consistency level.
	Consistency(c Consistency) Query

	// PageSize sets the page size.
	PageSize(n int) Query

	// PageState sets the pagination state and disables driver auto-paging.
	PageState(state []byte) Query

	// IterContext executes the query and returns an iterator over one page.
	IterContext(ctx context.Context) Iter

	// Statement returns the CQL statement.
	Statement() string

	// Values returns the bound values.
	Values() []any
}

// Iter represents a raw CQL iterator over a single result page.
type Iter interface {
	// MapScan reads the next row into a map.
	MapScan(m map[string]any) bool

	// PageState returns the pagination token of the next page. An empty
	// token means the result is exhausted.
	PageState() []byte

	// NumRows returns the number of rows in the current page.
	NumRows() int

	// Columns returns metadata about the columns in the result set.
	Columns() []ColumnInfo

	// Close closes the iterator.
	//
	// Returns:
	//   - error: Classified execution error, if any
	Close() error
}

// ColumnInfo holds metadata about a column in query results.
type ColumnInfo struct {
	Keyspace string
	Table    string
	Name     string
	TypeInfo any
}
