package testutil

import (
	"context"
	"maps"
	"strconv"
	"sync"

	"github.com/squashedelephant/connectors/adapter/cql"
	"github.com/squashedelephant/connectors/adapter/queue"
	"github.com/squashedelephant/connectors/types"
)

// MockCQLSession is an in-memory cql.Session serving a fixed result set.
//
// Results are split into pages of the query's PageSize; page states are
// row offsets. The same session is handed out by every Dialer call.
type MockCQLSession struct {
	mu sync.Mutex

	// Rows is the result of every query unless OnQuery is set.
	Rows []map[string]any

	// OnQuery, if set, returns the result of a statement.
	OnQuery func(stmt string, values ...any) ([]map[string]any, error)

	// DialErr fails every dial.
	DialErr error

	// CloseErr is returned by Close.
	CloseErr error

	// PanicOnQuery makes Query panic with its value.
	PanicOnQuery any

	dials      int
	closes     int
	pages      int
	lastConfig cql.ClusterConfig
	queries    []*MockQuery
}

// Compile-time assertion that MockCQLSession implements cql.Session.
var _ cql.Session = (*MockCQLSession)(nil)

// NewMockCQLSession creates a session returning rows.
func NewMockCQLSession(rows ...map[string]any) *MockCQLSession {
	return &MockCQLSession{Rows: rows}
}

// Dialer returns a cql.Dialer handing out this session.
func (m *MockCQLSession) Dialer() cql.Dialer {
	return func(_ context.Context, cfg cql.ClusterConfig) (cql.Session, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.dials++
		m.lastConfig = cfg
		if m.DialErr != nil {
			return nil, m.DialErr
		}

		return m, nil
	}
}

// Query returns a query over the configured rows.
func (m *MockCQLSession) Query(stmt string, values ...any) cql.Query {
	if m.PanicOnQuery != nil {
		panic(m.PanicOnQuery)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	q := &MockQuery{session: m, stmt: stmt, values: values}
	m.queries = append(m.queries, q)

	return q
}

// Close records the teardown and returns CloseErr.
func (m *MockCQLSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closes++

	return m.CloseErr
}

// Dials returns how many sessions were dialed.
func (m *MockCQLSession) Dials() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.dials
}

// Closes returns how many sessions were closed.
func (m *MockCQLSession) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closes
}

// Pages returns how many pages were served.
func (m *MockCQLSession) Pages() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pages
}

// LastConfig returns the configuration of the last dial.
func (m *MockCQLSession) LastConfig() cql.ClusterConfig {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastConfig
}

// Queries returns every query built so far.
func (m *MockCQLSession) Queries() []*MockQuery {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*MockQuery(nil), m.queries...)
}

// MockQuery is a query built by MockCQLSession.
type MockQuery struct {
	session     *MockCQLSession
	stmt        string
	values      []any
	consistency cql.Consistency
	pageSize    int
	pageState   []byte
}

// Compile-time assertion that MockQuery implements cql.Query.
var _ cql.Query = (*MockQuery)(nil)

// Consistency sets the consistency level.
func (q *MockQuery) Consistency(c cql.Consistency) cql.Query {
	q.consistency = c
	return q
}

// PageSize sets the page size.
func (q *MockQuery) PageSize(n int) cql.Query {
	q.pageSize = n
	return q
}

// PageState sets the offset of the page to fetch.
func (q *MockQuery) PageState(state []byte) cql.Query {
	q.pageState = state
	return q
}

// Statement returns the statement.
func (q *MockQuery) Statement() string {
	return q.stmt
}

// Values returns the bound values.
func (q *MockQuery) Values() []any {
	return q.values
}

// GetConsistency returns the consistency level set on the query.
func (q *MockQuery) GetConsistency() cql.Consistency {
	return q.consistency
}

// IterContext serves one page.
func (q *MockQuery) IterContext(ctx context.Context) cql.Iter {
	if err := ctx.Err(); err != nil {
		return &MockIter{err: types.NewError(types.KindTimeout, "execute", err)}
	}

	m := q.session
	rows, err := m.Rows, error(nil)
	if m.OnQuery != nil {
		rows, err = m.OnQuery(q.stmt, q.values...)
	}
	if err != nil {
		return &MockIter{err: err}
	}

	m.mu.Lock()
	m.pages++
	m.mu.Unlock()

	offset := 0
	if len(q.pageState) > 0 {
		offset, _ = strconv.Atoi(string(q.pageState))
	}
	end := len(rows)
	if q.pageSize > 0 && offset+q.pageSize < end {
		end = offset + q.pageSize
	}

	it := &MockIter{}
	if offset < len(rows) {
		it.rows = rows[offset:end]
	}
	if end < len(rows) {
		it.state = []byte(strconv.Itoa(end))
	}

	return it
}

// MockIter iterates over one page of a MockQuery.
type MockIter struct {
	rows  []map[string]any
	pos   int
	state []byte
	err   error
}

// Compile-time assertion that MockIter implements cql.Iter.
var _ cql.Iter = (*MockIter)(nil)

// MapScan copies the next row into row.
func (i *MockIter) MapScan(row map[string]any) bool {
	if i.err != nil || i.pos >= len(i.rows) {
		return false
	}
	maps.Copy(row, i.rows[i.pos])
	i.pos++

	return true
}

// PageState returns the offset of the next page, empty when exhausted.
func (i *MockIter) PageState() []byte {
	return i.state
}

// NumRows returns the number of rows in the page.
func (i *MockIter) NumRows() int {
	return len(i.rows)
}

// Columns returns no metadata.
func (i *MockIter) Columns() []cql.ColumnInfo {
	return nil
}

// Close returns the execution error, if any.
func (i *MockIter) Close() error {
	return i.err
}

// MemoryQueueService is an in-memory queue service shared by the clients its
// Dialer hands out.
type MemoryQueueService struct {
	mu       sync.Mutex
	queues   map[string][]queue.Message
	inflight map[string]string
	seq      int
	dials    int
	closes   int
	lastCfg  queue.Config

	// FailOn injects an error into a client method: "dial", "lookup",
	// "create", "send", "receive", "delete" or "close".
	FailOn map[string]error

	// ConflictOnCreate makes CreateQueue on an existing queue fail with
	// queue.ErrQueueExists.
	ConflictOnCreate bool
}

// NewMemoryQueueService creates an empty service.
func NewMemoryQueueService() *MemoryQueueService {
	return &MemoryQueueService{
		queues:   make(map[string][]queue.Message),
		inflight: make(map[string]string),
		FailOn:   make(map[string]error),
	}
}

// Dialer returns a queue.Dialer for this service.
func (s *MemoryQueueService) Dialer() queue.Dialer {
	return func(_ context.Context, cfg queue.Config) (queue.Client, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.dials++
		s.lastCfg = cfg
		if err := s.FailOn["dial"]; err != nil {
			return nil, err
		}

		return &memoryQueueClient{s: s}, nil
	}
}

// AddQueue creates a queue directly.
func (s *MemoryQueueService) AddQueue(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queues[name]; !ok {
		s.queues[name] = nil
	}
}

// Exists reports whether a queue exists.
func (s *MemoryQueueService) Exists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.queues[name]

	return ok
}

// Len returns the number of visible messages of a queue.
func (s *MemoryQueueService) Len(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.queues[name])
}

// Dials returns how many clients were dialed.
func (s *MemoryQueueService) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dials
}

// LastConfig returns the configuration of the most recent dial.
func (s *MemoryQueueService) LastConfig() queue.Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastCfg
}

// Closes returns how many clients were closed.
func (s *MemoryQueueService) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closes
}

type memoryQueueClient struct {
	s *MemoryQueueService
}

var _ queue.Client = (*memoryQueueClient)(nil)

func (c *memoryQueueClient) LookupQueue(_ context.Context, name string) (queue.Handle, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailOn["lookup"]; err != nil {
		return "", err
	}
	if _, ok := s.queues[name]; !ok {
		return "", types.NewError(types.KindTargetMissing, "lookup_queue", nil)
	}

	return queue.Handle(name), nil
}

func (c *memoryQueueClient) CreateQueue(_ context.Context, name string) (queue.Handle, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailOn["create"]; err != nil {
		return "", err
	}
	if _, ok := s.queues[name]; ok {
		if s.ConflictOnCreate {
			return "", types.NewError(types.KindInvalidRequest, "create_queue", queue.ErrQueueExists)
		}

		return queue.Handle(name), nil
	}
	s.queues[name] = nil

	return queue.Handle(name), nil
}

func (c *memoryQueueClient) Send(_ context.Context, h queue.Handle, body, metadata string) (queue.Sent, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailOn["send"]; err != nil {
		return queue.Sent{}, err
	}
	if _, ok := s.queues[string(h)]; !ok {
		return queue.Sent{}, types.NewError(types.KindTargetMissing, "send", nil)
	}

	s.seq++
	id := "msg-" + strconv.Itoa(s.seq)
	s.queues[string(h)] = append(s.queues[string(h)], queue.Message{
		MessageID: id,
		Body:      body,
		Metadata:  metadata,
	})

	return queue.Sent{MessageID: id, BodyMD5: queue.BodyMD5(body)}, nil
}

func (c *memoryQueueClient) Receive(_ context.Context, h queue.Handle) (*queue.Message, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailOn["receive"]; err != nil {
		return nil, err
	}
	msgs := s.queues[string(h)]
	if len(msgs) == 0 {
		return nil, nil
	}

	msg := msgs[0]
	s.queues[string(h)] = msgs[1:]
	s.seq++
	msg.ReceiptHandle = "receipt-" + strconv.Itoa(s.seq)
	s.inflight[msg.ReceiptHandle] = string(h)

	return &msg, nil
}

func (c *memoryQueueClient) Delete(_ context.Context, _ queue.Handle, receipt string) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailOn["delete"]; err != nil {
		return err
	}
	if _, ok := s.inflight[receipt]; !ok {
		return types.NewError(types.KindLeaseExpired, "delete", queue.ErrUnknownReceipt)
	}
	delete(s.inflight, receipt)

	return nil
}

func (c *memoryQueueClient) Close() error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closes++

	return s.FailOn["close"]
}
