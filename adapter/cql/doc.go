// Package cql provides adapter interfaces and implementations for CQL (Cassandra Query Language)
// database drivers.
//
// This package defines the common interfaces that CQL driver adapters must implement,
// allowing connectors to work with different versions of gocql.
//
// # Interfaces
//
// The package defines a narrow subset of the gocql API:
//
//   - Session: Wraps a database session for executing queries
//   - Query: Represents a CQL query with bind parameters
//   - Iter: Iterates over one page of query results
//   - Dialer: Opens a Session from a ClusterConfig
//
// Adapters classify driver failures into *types.Error values so that callers
// never inspect driver-specific errors.
//
// # Adapters
//
// Driver-specific adapters are provided in subpackages:
//
//   - [github.com/squashedelephant/connectors/adapter/cql/v1]: Adapter for gocql v1.x
//   - [github.com/squashedelephant/connectors/adapter/cql/v2]: Adapter for apache/cassandra-gocql-driver v2.x
//
// # Usage
//
//	conn, _ := connectors.NewWideColumnConnector(cfg,
//	    connectors.WithCQLDialer(v1.Dial),
//	)
package cql
