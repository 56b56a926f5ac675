// Package testutil provides fakes and container helpers for connector tests.
//
// # Fakes
//
//   - [MockCQLSession]: In-memory cql.Session serving a fixed result set in pages
//   - [SlowCQLSession]: Wraps a cql.Session and delays every page fetch
//   - [SearchServer]: httptest server speaking the Elasticsearch/OpenSearch REST subset
//   - [MemoryQueueService]: In-memory queue service with error injection
//   - [TestMetricsCollector], [TestLogger]: Recording collaborators
//
// Fakes are wired into connectors through dialer options:
//
//	session := testutil.NewMockCQLSession(rows...)
//	conn, _ := connectors.NewWideColumnConnector(cfg,
//	    connectors.WithCQLDialer(session.Dialer()),
//	)
//
// # Integration Test Helpers
//
// These require Docker, except the embedded NATS server:
//
//   - StartCQLCluster: ScyllaDB or Cassandra with a test keyspace
//   - StartSearchContainer: Elasticsearch with security disabled
//   - StartQueueContainer: LocalStack serving SQS
//   - StartNATSServer: Embedded NATS server with JetStream
package testutil
