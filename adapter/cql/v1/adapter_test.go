package v1

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/require"

	"github.com/squashedelephant/connectors/adapter/cql"
	"github.com/squashedelephant/connectors/policy"
	"github.com/squashedelephant/connectors/types"
)

type requestError struct {
	code int
	msg  string
}

func (e requestError) Code() int       { return e.code }
func (e requestError) Message() string { return e.msg }
func (e requestError) Error() string   { return e.msg }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.ErrorKind
	}{
		{"no connections", gocql.ErrNoConnections, types.KindUnreachable},
		{"no hosts", fmt.Errorf("dial: %w", gocql.ErrNoHosts), types.KindUnreachable},
		{"no connections started", gocql.ErrNoConnectionsStarted, types.KindUnreachable},
		{"unavailable", &gocql.RequestErrUnavailable{}, types.KindUnreachable},
		{"timeout", gocql.ErrTimeoutNoResponse, types.KindTimeout},
		{"read timeout", &gocql.RequestErrReadTimeout{}, types.KindTimeout},
		{"write timeout", &gocql.RequestErrWriteTimeout{}, types.KindTimeout},
		{"deadline", context.DeadlineExceeded, types.KindTimeout},
		{"keyspace", gocql.ErrKeyspaceDoesNotExist, types.KindTargetMissing},
		{"keyspace message", requestError{cql.CodeInvalid, "Keyspace 'shop' does not exist"}, types.KindTargetMissing},
		{"unconfigured table", requestError{cql.CodeInvalid, "unconfigured table users"}, types.KindTargetMissing},
		{"invalid", requestError{cql.CodeInvalid, "Undefined column name nme"}, types.KindInvalidRequest},
		{"syntax", requestError{cql.CodeSyntax, "line 1:0 no viable alternative"}, types.KindInvalidRequest},
		{"config", requestError{cql.CodeConfig, "bad option"}, types.KindInvalidRequest},
		{"unknown", errors.New("boom"), types.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("execute", tt.err)
			require.Equal(t, tt.want, types.KindOf(err))
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassifyKeepsClassifiedErrors(t *testing.T) {
	orig := types.NewError(types.KindTimeout, "connect", nil)
	require.Same(t, orig, classify("execute", orig))
}

func TestNewClusterProduction(t *testing.T) {
	cluster := NewCluster(cql.ClusterConfig{
		Hosts:          []string{"10.0.0.1", "10.0.0.2"},
		Port:           cql.DefaultPort,
		Keyspace:       "shop",
		CQLVersion:     cql.DefaultCQLVersion,
		ProtoVersion:   cql.DefaultProtoVersion,
		LocalDC:        cql.DefaultLocalDC,
		Timeout:        2 * time.Second,
		ConnectTimeout: cql.DefaultConnectTimeout,
		Compression:    true,
		Policy:         policy.ForCQL(types.EnvProduction),
	})

	require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cluster.Hosts)
	require.Equal(t, 9042, cluster.Port)
	require.Equal(t, "shop", cluster.Keyspace)
	require.Equal(t, "3.4.0", cluster.CQLVersion)
	require.Equal(t, 4, cluster.ProtoVersion)
	require.Equal(t, gocql.LocalQuorum, cluster.Consistency)
	require.Equal(t, 2*time.Second, cluster.Timeout)
	require.Equal(t, 5*time.Second, cluster.ConnectTimeout)
	require.IsType(t, &gocql.SnappyCompressor{}, cluster.Compressor)
	require.Nil(t, cluster.RetryPolicy)
	require.Zero(t, cluster.ReconnectInterval)

	reconnect, ok := cluster.ReconnectionPolicy.(*gocql.ConstantReconnectionPolicy)
	require.True(t, ok)
	require.Equal(t, 1, reconnect.MaxRetries)
}

func TestNewClusterLocal(t *testing.T) {
	cluster := NewCluster(cql.ClusterConfig{
		Hosts:        []string{"127.0.0.1"},
		Port:         cql.DefaultPort,
		ProtoVersion: cql.DefaultProtoVersion,
		Policy:       policy.ForCQL(types.EnvLocal),
	})

	require.Equal(t, gocql.One, cluster.Consistency)
	require.Nil(t, cluster.Compressor)

	retry, ok := cluster.RetryPolicy.(*gocql.SimpleRetryPolicy)
	require.True(t, ok)
	require.Equal(t, policy.LocalRetryAttempts, retry.NumRetries)

	reconnect, ok := cluster.ReconnectionPolicy.(*gocql.ConstantReconnectionPolicy)
	require.True(t, ok)
	require.Equal(t, 5, reconnect.MaxRetries)
	require.Equal(t, 3*time.Second, reconnect.Interval)
	require.Equal(t, 3*time.Second, cluster.ReconnectInterval)
}

func TestDialCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session, err := Dial(ctx, cql.ClusterConfig{Hosts: []string{"127.0.0.1"}})
	require.Nil(t, session)
	require.Equal(t, types.KindTimeout, types.KindOf(err))
}

func TestNilIterIsEmpty(t *testing.T) {
	iter := &Iter{}

	require.False(t, iter.MapScan(map[string]any{}))
	require.Nil(t, iter.PageState())
	require.Zero(t, iter.NumRows())
	require.Nil(t, iter.Columns())
	require.NoError(t, iter.Close())
}

func TestConsistencyConstants(t *testing.T) {
	require.Equal(t, cql.Consistency(gocql.One), cql.One)
	require.Equal(t, cql.Consistency(gocql.Quorum), cql.Quorum)
	require.Equal(t, cql.Consistency(gocql.LocalQuorum), cql.LocalQuorum)
	require.Equal(t, cql.Consistency(gocql.LocalOne), cql.LocalOne)
}
