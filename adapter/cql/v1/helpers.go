package v1

import (
	"errors"

	"github.com/gocql/gocql"

	"github.com/squashedelephant/connectors/adapter/cql"
	"github.com/squashedelephant/connectors/policy"
	"github.com/squashedelephant/connectors/types"
)

// NewCluster builds a gocql cluster configuration from cfg.
//
// The resilience profile in cfg.Policy selects the consistency level, host
// selection, connection attempts, retry policy and background reconnection.
//
// Parameters:
//   - cfg: Cluster configuration
//
// Returns:
//   - *gocql.ClusterConfig: The driver configuration
func NewCluster(cfg cql.ClusterConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Port = cfg.Port
	cluster.Keyspace = cfg.Keyspace
	cluster.CQLVersion = cfg.CQLVersion
	cluster.ProtoVersion = cfg.ProtoVersion
	cluster.Consistency = ToGocqlConsistency(cfg.Policy.Consistency)
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
	}
	if cfg.ConnectTimeout > 0 {
		cluster.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.Compression {
		cluster.Compressor = &gocql.SnappyCompressor{}
	}

	switch cfg.Policy.HostSelection {
	case policy.DCAwareRoundRobin:
		cluster.PoolConfig.HostSelectionPolicy = gocql.DCAwareRoundRobinPolicy(cfg.LocalDC)
	default:
		cluster.PoolConfig.HostSelectionPolicy = gocql.RoundRobinHostPolicy()
	}

	cluster.ReconnectionPolicy = &gocql.ConstantReconnectionPolicy{
		MaxRetries: cfg.Policy.Reconnect.MaxRetries,
		Interval:   cfg.Policy.Reconnect.Interval,
	}
	if cfg.Policy.RetryAttempts > 0 {
		cluster.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: cfg.Policy.RetryAttempts}
	} else {
		cluster.RetryPolicy = nil
	}
	if cfg.Policy.BackgroundReconnect {
		cluster.ReconnectInterval = cfg.Policy.BackgroundReconnectInterval
	} else {
		cluster.ReconnectInterval = 0
	}

	return cluster
}

// ToGocqlConsistency converts a connectors Consistency to gocql.Consistency.
//
// Parameters:
//   - c: Consistency level
//
// Returns:
//   - gocql.Consistency: The equivalent gocql consistency level
func ToGocqlConsistency(c cql.Consistency) gocql.Consistency {
	return gocql.Consistency(c)
}

// UnwrapSession returns the underlying gocql.Session from a Session adapter.
//
// Parameters:
//   - s: v1 Session adapter
//
// Returns:
//   - *gocql.Session: The underlying gocql session
func UnwrapSession(s *Session) *gocql.Session {
	return s.session
}

// classify converts a gocql v1 error into a *types.Error.
func classify(op string, err error) error {
	var classified *types.Error
	if errors.As(err, &classified) {
		return err
	}

	return types.NewError(kindOf(err), op, err)
}

func kindOf(err error) types.ErrorKind {
	switch {
	case errors.Is(err, gocql.ErrNoConnections),
		errors.Is(err, gocql.ErrNoHosts),
		errors.Is(err, gocql.ErrNoConnectionsStarted),
		errors.Is(err, gocql.ErrConnectionClosed),
		errors.Is(err, gocql.ErrUnavailable):
		return types.KindUnreachable
	case errors.Is(err, gocql.ErrTimeoutNoResponse), types.IsDeadline(err):
		return types.KindTimeout
	case errors.Is(err, gocql.ErrKeyspaceDoesNotExist), errors.Is(err, gocql.ErrNoKeyspace):
		return types.KindTargetMissing
	}

	var unavailable *gocql.RequestErrUnavailable
	if errors.As(err, &unavailable) {
		return types.KindUnreachable
	}

	var readTimeout *gocql.RequestErrReadTimeout
	var writeTimeout *gocql.RequestErrWriteTimeout
	if errors.As(err, &readTimeout) || errors.As(err, &writeTimeout) {
		return types.KindTimeout
	}

	var reqErr gocql.RequestError
	if errors.As(err, &reqErr) && cql.IsInvalidCode(reqErr.Code()) {
		if reqErr.Code() == cql.CodeInvalid && cql.IsMissingSchema(reqErr.Message()) {
			return types.KindTargetMissing
		}

		return types.KindInvalidRequest
	}

	return types.KindUnknown
}
