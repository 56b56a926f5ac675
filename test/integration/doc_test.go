// Package integration_test runs the connectors against real backends.
//
// # Running Integration Tests
//
// Integration tests are skipped by default when using -short flag:
//
//	go test -short ./...           # Skips integration tests
//	go test ./test/integration/... # Runs integration tests
//
// The wide-column, search and SQS tests require Docker: TestMain starts a
// ScyllaDB (or Cassandra) container, an Elasticsearch container and a
// LocalStack container. A backend whose container fails to start has its
// tests skipped. JetStream tests use an embedded NATS server.
//
// Set SKIP_INTEGRATION_TESTS=1 to skip container setup entirely.
package integration_test
