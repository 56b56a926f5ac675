package testutil

import (
	"context"
	"time"

	"github.com/squashedelephant/connectors/adapter/cql"
	"github.com/squashedelephant/connectors/types"
)

// SlowCQLSession wraps a CQL session and delays every page fetch.
// This is useful for testing deadline handling.
type SlowCQLSession struct {
	Session cql.Session
	Delay   time.Duration
}

// Compile-time assertion that SlowCQLSession implements cql.Session.
var _ cql.Session = (*SlowCQLSession)(nil)

// Dialer returns a cql.Dialer handing out this session.
func (s *SlowCQLSession) Dialer() cql.Dialer {
	return func(context.Context, cql.ClusterConfig) (cql.Session, error) {
		return s, nil
	}
}

// Query returns a query that waits before each page fetch.
func (s *SlowCQLSession) Query(stmt string, values ...any) cql.Query {
	return &SlowCQLQuery{
		Query: s.Session.Query(stmt, values...),
		Delay: s.Delay,
	}
}

// Close closes the wrapped session.
func (s *SlowCQLSession) Close() error {
	return s.Session.Close()
}

// SlowCQLQuery wraps a CQL query and delays IterContext.
type SlowCQLQuery struct {
	Query cql.Query
	Delay time.Duration
}

// Compile-time assertion that SlowCQLQuery implements cql.Query.
var _ cql.Query = (*SlowCQLQuery)(nil)

// Consistency sets the consistency level.
func (q *SlowCQLQuery) Consistency(c cql.Consistency) cql.Query {
	q.Query = q.Query.Consistency(c)
	return q
}

// PageSize sets the page size.
func (q *SlowCQLQuery) PageSize(n int) cql.Query {
	q.Query = q.Query.PageSize(n)
	return q
}

// PageState sets the page state for pagination.
func (q *SlowCQLQuery) PageState(state []byte) cql.Query {
	q.Query = q.Query.PageState(state)
	return q
}

// IterContext waits Delay, then fetches the page. A context that ends first
// yields an iterator failing with KindTimeout.
func (q *SlowCQLQuery) IterContext(ctx context.Context) cql.Iter {
	timer := time.NewTimer(q.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return &MockIter{err: types.NewError(types.KindTimeout, "execute", ctx.Err())}
	case <-timer.C:
	}

	return q.Query.IterContext(ctx)
}

// Statement returns the CQL statement.
func (q *SlowCQLQuery) Statement() string {
	return q.Query.Statement()
}

// Values returns the bound values.
func (q *SlowCQLQuery) Values() []any {
	return q.Query.Values()
}
