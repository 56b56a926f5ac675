package v2

import (
	"errors"

	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"github.com/squashedelephant/connectors/adapter/cql"
	"github.com/squashedelephant/connectors/policy"
	"github.com/squashedelephant/connectors/types"
)

// NewCluster builds a gocql v2 cluster configuration from cfg.
//
// Compression is not configured: the v2 driver ships its compressors as
// separate modules.
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
func ToGocqlConsistency(c cql.Consistency) gocql.Consistency {
	return gocql.Consistency(c)
}

// UnwrapSession returns the underlying gocql.Session from a Session adapter.
func UnwrapSession(s *Session) *gocql.Session {
	return s.session
}

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
		errors.Is(err, gocql.ErrConnectionClosed):
		return types.KindUnreachable
	case errors.Is(err, gocql.ErrTimeoutNoResponse), types.IsDeadline(err):
		return types.KindTimeout
	case errors.Is(err, gocql.ErrKeyspaceDoesNotExist):
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
