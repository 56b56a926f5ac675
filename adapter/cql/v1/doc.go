// Package v1 provides an adapter for gocql v1.x to work with the connectors library.
//
// This adapter wraps gocql sessions, queries and iterators to implement the
// connectors CQL interfaces, and classifies gocql errors into *types.Error.
//
// # Usage
//
// Pass Dial as the CQL dialer of a wide-column connector:
//
//	import (
//	    "github.com/squashedelephant/connectors"
//	    v1 "github.com/squashedelephant/connectors/adapter/cql/v1"
//	)
//
//	conn, err := connectors.NewWideColumnConnector(cfg,
//	    connectors.WithCQLDialer(v1.Dial),
//	)
//
// v1.Dial is the default dialer.
//
// # Error Classification
//
//   - ErrNoConnections, ErrNoHosts, ErrNoConnectionsStarted, unavailable: KindUnreachable
//   - ErrTimeoutNoResponse, read/write timeouts, context deadlines: KindTimeout
//   - ErrKeyspaceDoesNotExist, invalid requests naming a keyspace or table: KindTargetMissing
//   - syntax, invalid and config request errors: KindInvalidRequest
//
// Everything else is KindUnknown.
package v1
