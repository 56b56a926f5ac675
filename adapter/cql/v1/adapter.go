// Package v1 provides an adapter for gocql v1 (github.com/gocql/gocql).
package v1

import (
	"context"

	"github.com/gocql/gocql"

	"github.com/squashedelephant/connectors/adapter/cql"
	"github.com/squashedelephant/connectors/types"
)

var (
	_ cql.Dialer  = Dial
	_ cql.Session = (*Session)(nil)
	_ cql.Query   = (*Query)(nil)
	_ cql.Iter    = (*Iter)(nil)
)

// Dial opens a gocql v1 session.
//
// The cluster is configured from cfg (see NewCluster) and connected
// immediately. Connection failures are classified into *types.Error.
//
// Parameters:
//   - ctx: Context checked before connecting
//   - cfg: Cluster configuration
//
// Returns:
//   - cql.Session: The connected session
//   - error: Classified connection error
func Dial(ctx context.Context, cfg cql.ClusterConfig) (cql.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify("connect", err)
	}

	session, err := NewCluster(cfg).CreateSession()
	if err != nil {
		return nil, classify("connect", err)
	}

	return NewSession(session), nil
}

// Session wraps a gocql v1 session.
type Session struct {
	session *gocql.Session
}

// NewSession creates a new v1 adapter from a gocql session.
//
// Parameters:
//   - session: A gocql.Session instance
//
// Returns:
//   - *Session: An adapter implementing cql.Session
func NewSession(session *gocql.Session) *Session {
	return &Session{session: session}
}

// Query creates a new query for the given statement.
//
// Parameters:
//   - stmt: CQL statement with ? placeholders
//   - values: Values to bind to placeholders
//
// Returns:
//   - cql.Query: A query builder
func (s *Session) Query(stmt string, values ...any) cql.Query {
	return &Query{
		query:     s.session.Query(stmt, values...),
		statement: stmt,
		values:    values,
	}
}

// Close terminates the session.
//
// Returns:
//   - error: types.ErrSessionClosed (classified) if the session was already closed
func (s *Session) Close() error {
	if s.session == nil || s.session.Closed() {
		return types.NewError(types.KindUnknown, "close", types.ErrSessionClosed)
	}
	s.session.Close()

	return nil
}

// Query wraps a gocql v1 query.
type Query struct {
	query     *gocql.Query
	statement string
	values    []any
}

// Consistency sets the consistency level.
func (q *Query) Consistency(c cql.Consistency) cql.Query {
	q.query = q.query.Consistency(gocql.Consistency(c))
	return q
}

// PageSize sets the page size.
func (q *Query) PageSize(n int) cql.Query {
	q.query = q.query.PageSize(n)
	return q
}

// PageState sets the pagination state.
func (q *Query) PageState(state []byte) cql.Query {
	q.query = q.query.PageState(state)
	return q
}

// IterContext executes the query and returns an iterator over one page.
func (q *Query) IterContext(ctx context.Context) cql.Iter {
	return &Iter{iter: q.query.WithContext(ctx).Iter()}
}

// Statement returns the CQL statement.
func (q *Query) Statement() string {
	return q.statement
}

// Values returns the bound values.
func (q *Query) Values() []any {
	return q.values
}

// Iter wraps a gocql v1 iterator.
type Iter struct {
	iter *gocql.Iter
}

// MapScan reads the next row into a map.
func (i *Iter) MapScan(m map[string]any) bool {
	if i.iter == nil {
		return false
	}

	return i.iter.MapScan(m)
}

// PageState returns the pagination token.
func (i *Iter) PageState() []byte {
	if i.iter == nil {
		return nil
	}

	return i.iter.PageState()
}

// NumRows returns the number of rows in the current page.
func (i *Iter) NumRows() int {
	if i.iter == nil {
		return 0
	}

	return i.iter.NumRows()
}

// Columns returns metadata about the columns in the result set.
func (i *Iter) Columns() []cql.ColumnInfo {
	if i.iter == nil {
		return nil
	}

	gocqlCols := i.iter.Columns()
	result := make([]cql.ColumnInfo, len(gocqlCols))
	for idx, col := range gocqlCols {
		result[idx] = cql.ColumnInfo{
			Keyspace: col.Keyspace,
			Table:    col.Table,
			Name:     col.Name,
			TypeInfo: col.TypeInfo,
		}
	}

	return result
}

// Close closes the iterator and classifies any execution error.
func (i *Iter) Close() error {
	if i.iter == nil {
		return nil
	}

	if err := i.iter.Close(); err != nil {
		return classify("execute", err)
	}

	return nil
}
