// Package v2 provides an adapter for gocql v2 (github.com/apache/cassandra-gocql-driver).
//
// This adapter wraps the Apache Cassandra gocql driver v2 to implement the
// connectors CQL interfaces. Error classification matches the v1 adapter.
//
// # Usage
//
//	import (
//	    "github.com/squashedelephant/connectors"
//	    v2 "github.com/squashedelephant/connectors/adapter/cql/v2"
//	)
//
//	conn, err := connectors.NewWideColumnConnector(cfg,
//	    connectors.WithCQLDialer(v2.Dial),
//	)
package v2
