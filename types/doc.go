// Package types provides shared types and error definitions for the connectors library.
//
// This is a leaf package with zero connectors imports to prevent import cycles.
// All packages in connectors can safely import this package.
//
// # Envelope
//
// Every connector operation returns an Envelope:
//
//	type Envelope struct {
//	    Data       []Record   // rows, documents or items
//	    StatusCode StatusCode // outcome code
//	    Reason     string     // explanation or diagnostic
//	}
//
// # Status Codes
//
// Each backend owns a range of status codes:
//
//   - 2001..2011: wide-column database (CQL)
//   - 3001..3010: search engine
//   - 4001..4009, 4099: queue
//
// StatusCode.Outcome classifies a code as failure, empty, single or many.
//
// # Errors
//
// Adapters report driver failures as *Error values carrying an ErrorKind:
//
//	var e *types.Error
//	if errors.As(err, &e) && e.Kind == types.KindTimeout {
//	    // ...
//	}
//
// Sentinel errors cover configuration problems:
//
//   - ErrInvalidEnvironment: Unrecognized environment name
//   - ErrNoHosts: Configuration without hosts
//   - ErrNoTarget: Configuration without keyspace/index/queue
//   - ErrInvalidPort: Port out of range
//   - ErrNoRegion: Queue configuration without region
//   - ErrNilDialer: Nil adapter dialer
package types
