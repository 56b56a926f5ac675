package v2

import (
	"context"
	"errors"
	"testing"
	"time"

	gocql "github.com/apache/cassandra-gocql-driver/v2"
	"github.com/stretchr/testify/require"

	"github.com/squashedelephant/connectors/adapter/cql"
	"github.com/squashedelephant/connectors/policy"
	"github.com/squashedelephant/connectors/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.ErrorKind
	}{
		{"no connections", gocql.ErrNoConnections, types.KindUnreachable},
		{"unavailable", &gocql.RequestErrUnavailable{}, types.KindUnreachable},
		{"timeout", gocql.ErrTimeoutNoResponse, types.KindTimeout},
		{"read timeout", &gocql.RequestErrReadTimeout{}, types.KindTimeout},
		{"deadline", context.DeadlineExceeded, types.KindTimeout},
		{"keyspace", gocql.ErrKeyspaceDoesNotExist, types.KindTargetMissing},
		{"unknown", errors.New("boom"), types.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, types.KindOf(classify("execute", tt.err)))
		})
	}
}

func TestNewCluster(t *testing.T) {
	cluster := NewCluster(cql.ClusterConfig{
		Hosts:        []string{"10.0.0.1"},
		Port:         cql.DefaultPort,
		Keyspace:     "shop",
		CQLVersion:   cql.DefaultCQLVersion,
		ProtoVersion: cql.DefaultProtoVersion,
		LocalDC:      cql.DefaultLocalDC,
		Timeout:      time.Second,
		Policy:       policy.ForCQL(types.EnvProduction),
	})

	require.Equal(t, gocql.LocalQuorum, cluster.Consistency)
	require.Equal(t, "shop", cluster.Keyspace)
	require.Equal(t, time.Second, cluster.Timeout)
	require.Nil(t, cluster.RetryPolicy)
	require.Zero(t, cluster.ReconnectInterval)

	local := NewCluster(cql.ClusterConfig{Hosts: []string{"127.0.0.1"}, Policy: policy.ForCQL(types.EnvLocal)})
	require.Equal(t, gocql.One, local.Consistency)
	require.NotNil(t, local.RetryPolicy)
}
