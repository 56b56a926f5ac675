// Package connectors provides uniform connectors for a wide-column database
// (Cassandra/ScyllaDB), a search engine (Elasticsearch/OpenSearch) and a
// message queue (SQS/NATS JetStream).
//
// Every public operation returns a types.Envelope and never an error. The
// envelope's status code alone tells the caller what happened; backend
// failures are classified by the adapters and mapped to a fixed code range
// per backend (2000s CQL, 3000s search, 4000s queue).
//
// # Key Features
//
//   - Session per call: each operation dials, executes and closes its own
//     session; nothing is pooled or cached between calls
//   - Environment profiles: production and local postures for consistency,
//     host selection, reconnection and node discovery (see package policy)
//   - Page draining: CQL reads fetch every page explicitly
//   - UUID coercion: columns ending in "_id" are returned as strings
//   - Pluggable drivers: gocql v1 or the Apache v2 driver, Elasticsearch 8
//     or OpenSearch, SQS or JetStream
//
// # Basic Usage
//
//	conn, err := connectors.NewWideColumnConnector(connectors.CQLConfig{
//	    ConnectionConfig: connectors.ConnectionConfig{
//	        Hosts:       []string{"10.0.0.1", "10.0.0.2"},
//	        Target:      "inventory",
//	        Environment: connectors.EnvProduction,
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	env := conn.Read(ctx, "SELECT * FROM items WHERE item_id = ?", id)
//	switch env.StatusCode {
//	case types.CQLReadOneRow:
//	    use(env.First())
//	case types.CQLReadNoRows:
//	    // not found
//	default:
//	    log.Printf("read failed: %d %s", env.StatusCode, env.Reason)
//	}
//
// # Errors
//
// Construction is the only step that returns an error: configuration
// validation failures are the sentinel errors of package types
// (types.ErrNoHosts, types.ErrInvalidPort, types.ErrNoTarget, ...).
//
// Unknown failures carry a reason holding the operation inputs, the error
// message and the call stack. A panic inside an operation is recovered and
// reported the same way.
//
// # Session Teardown
//
// A failure to close the session after a successful operation replaces the
// result with the teardown failure. When the operation itself failed, its
// failure is kept and the teardown failure is only logged.
//
// # Queue Consumption
//
// QueueConnector.Get deletes the received item before returning it. This is
// at-most-once delivery without atomicity: an item whose lease expires before
// the delete is redelivered after the visibility timeout.
package connectors
