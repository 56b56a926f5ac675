package types

import (
	"context"
	"errors"
	"strings"
)

// Backend identifies one of the remote systems a connector talks to.
type Backend string

// String returns the string representation of the Backend.
func (b Backend) String() string {
	return string(b)
}

const (
	// BackendCQL is the wide-column database (Cassandra, ScyllaDB).
	BackendCQL Backend = "cql"
	// BackendSearch is the search/index engine (Elasticsearch, OpenSearch).
	BackendSearch Backend = "search"
	// BackendQueue is the message queue (SQS, NATS JetStream).
	BackendQueue Backend = "queue"
)

// Environment selects the connection and resilience posture of a connector.
type Environment string

const (
	// EnvLocal targets a single-node development backend.
	EnvLocal Environment = "local"
	// EnvProduction targets a multi-node production cluster.
	EnvProduction Environment = "production"
)

// String returns the string representation of the Environment.
func (e Environment) String() string {
	return string(e)
}

// IsLocal reports whether e is the local/dev environment.
func (e Environment) IsLocal() bool {
	return e == EnvLocal
}

// ParseEnvironment parses an environment name.
//
// Accepted values are "local", "dev" and "development" for EnvLocal and
// "production" and "prod" for EnvProduction (case-insensitive).
//
// Parameters:
//   - s: Environment name
//
// Returns:
//   - Environment: The parsed environment
//   - error: ErrInvalidEnvironment if s is not recognized
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local", "dev", "development":
		return EnvLocal, nil
	case "production", "prod":
		return EnvProduction, nil
	default:
		return "", ErrInvalidEnvironment
	}
}

// Consistency represents the Cassandra consistency level.
type Consistency uint16

// Common consistency levels matching gocql.
const (
	Any         Consistency = 0x00
	One         Consistency = 0x01
	Two         Consistency = 0x02
	Three       Consistency = 0x03
	Quorum      Consistency = 0x04
	All         Consistency = 0x05
	LocalQuorum Consistency = 0x06
	EachQuorum  Consistency = 0x07
	Serial      Consistency = 0x08
	LocalSerial Consistency = 0x09
	LocalOne    Consistency = 0x0A
)

// String returns the CQL name of the consistency level.
func (c Consistency) String() string {
	switch c {
	case Any:
		return "ANY"
	case One:
		return "ONE"
	case Two:
		return "TWO"
	case Three:
		return "THREE"
	case Quorum:
		return "QUORUM"
	case All:
		return "ALL"
	case LocalQuorum:
		return "LOCAL_QUORUM"
	case EachQuorum:
		return "EACH_QUORUM"
	case Serial:
		return "SERIAL"
	case LocalSerial:
		return "LOCAL_SERIAL"
	case LocalOne:
		return "LOCAL_ONE"
	default:
		return "UNKNOWN"
	}
}

// ErrorKind is the backend-neutral classification of a driver failure.
//
// Adapters translate the typed errors reported by their driver into one of
// these kinds; connectors translate kinds into status codes. Anything an
// adapter cannot recognize is KindUnknown.
type ErrorKind int

const (
	// KindUnknown is any failure not explicitly recognized.
	KindUnknown ErrorKind = iota
	// KindUnreachable means no node of the backend could be reached.
	KindUnreachable
	// KindTimeout means the backend did not answer within the configured timeout.
	KindTimeout
	// KindTargetMissing means the keyspace, table, index or queue does not exist.
	KindTargetMissing
	// KindInvalidRequest means the backend rejected the request as malformed.
	KindInvalidRequest
	// KindIndexCreate means an index could not be created.
	KindIndexCreate
	// KindCredentials means the credentials are invalid or expired.
	KindCredentials
	// KindClockSkew means the request signature was rejected, usually because
	// the caller's clock is out of sync with the service.
	KindClockSkew
	// KindLeaseExpired means a received item's visibility lease expired before
	// it was deleted.
	KindLeaseExpired
	// KindInvalidItem means a queue item failed validation.
	KindInvalidItem
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindTimeout:
		return "timeout"
	case KindTargetMissing:
		return "target_missing"
	case KindInvalidRequest:
		return "invalid_request"
	case KindIndexCreate:
		return "index_create"
	case KindCredentials:
		return "credentials"
	case KindClockSkew:
		return "clock_skew"
	case KindLeaseExpired:
		return "lease_expired"
	case KindInvalidItem:
		return "invalid_item"
	default:
		return "unknown"
	}
}

// Error is a classified failure reported by an adapter.
type Error struct {
	// Kind is the classification of the failure.
	Kind ErrorKind

	// Op describes what operation failed (e.g. "connect", "execute", "send").
	Op string

	// Cause is the underlying driver error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := "connectors: " + e.Op + " failed (" + e.Kind.String() + ")"
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a classified error.
//
// Parameters:
//   - kind: Classification of the failure
//   - op: Operation that failed
//   - cause: Underlying error (may be nil)
//
// Returns:
//   - *Error: The classified error
func NewError(kind ErrorKind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// KindOf returns the ErrorKind carried by err.
//
// Errors that do not wrap a *Error are KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// IsDeadline reports whether err is a context deadline or cancellation.
func IsDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// Sentinel errors for configuration and validation failures.
var (
	// ErrInvalidEnvironment indicates an unrecognized environment name.
	ErrInvalidEnvironment = errors.New("connectors: invalid environment")

	// ErrNoHosts indicates that a configuration has no hosts.
	ErrNoHosts = errors.New("connectors: at least one host is required")

	// ErrNoTarget indicates that a configuration has no keyspace/index/queue name.
	ErrNoTarget = errors.New("connectors: target name is required")

	// ErrInvalidPort indicates a port outside 1..65535.
	ErrInvalidPort = errors.New("connectors: port must be between 1 and 65535")

	// ErrNoRegion indicates a queue configuration without an AWS region.
	ErrNoRegion = errors.New("connectors: region is required")

	// ErrNilDialer indicates that a nil dialer was configured.
	ErrNilDialer = errors.New("connectors: dialer cannot be nil")

	// ErrSessionClosed indicates an operation on a released session.
	ErrSessionClosed = errors.New("connectors: session is closed")
)
