package connectors_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squashedelephant/connectors"
	"github.com/squashedelephant/connectors/types"
)

const sampleConfig = `
cql:
  hosts: [10.0.0.1, 10.0.0.2]
  target: inventory
  environment: prod
  timeout: 3s
  driver: v2
  page_size: 100
search:
  hosts: [search.internal]
  port: 9201
  flavor: opensearch
  scheme: https
  username: admin
queue:
  transport: jetstream
  endpoint: nats://queue.internal:4222
  wait_time: 2s
  disable_auto_create: true
`

func TestParseConfig(t *testing.T) {
	cfg, err := connectors.ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.CQL.Hosts)
	assert.Equal(t, "inventory", cfg.CQL.Target)
	assert.Equal(t, types.Environment("prod"), cfg.CQL.Environment)
	assert.Equal(t, 3*time.Second, cfg.CQL.Timeout)
	assert.Equal(t, connectors.DriverApache, cfg.CQL.Driver)
	assert.Equal(t, 100, cfg.CQL.PageSize)

	assert.Equal(t, 9201, cfg.Search.Port)
	assert.Equal(t, connectors.FlavorOpenSearch, cfg.Search.Flavor)
	assert.Equal(t, []string{"https://search.internal:9201"}, cfg.Search.Addresses())

	assert.Equal(t, connectors.TransportJetStream, cfg.Queue.Transport)
	assert.Equal(t, 2*time.Second, cfg.Queue.WaitTime)
	assert.True(t, cfg.Queue.DisableAutoCreate)
}

func TestParseConfig_DefaultsAppliedByConnectors(t *testing.T) {
	cfg, err := connectors.ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	conn, err := connectors.NewWideColumnConnector(cfg.CQL)
	require.NoError(t, err)

	got := conn.Config()
	assert.Equal(t, types.EnvProduction, got.Environment)
	assert.Equal(t, 9042, got.Port)
	assert.Equal(t, "3.4.0", got.CQLVersion)
	assert.Equal(t, 4, got.ProtocolVersion)
	assert.Equal(t, "dc1", got.LocalDC)
	assert.Equal(t, "_id", got.UUIDSuffix)
	assert.Equal(t, 100, got.PageSize)
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := connectors.ParseConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.CQL.Hosts)
}

func TestParseConfig_UnknownField(t *testing.T) {
	_, err := connectors.ParseConfig([]byte("cql:\n  hostz: [a]\n"))
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := connectors.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "inventory", cfg.CQL.Target)

	_, err = connectors.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefaultConfigs(t *testing.T) {
	cql := connectors.DefaultCQLConfig()
	assert.Equal(t, types.EnvLocal, cql.Environment)
	assert.ErrorIs(t, cql.Validate(), types.ErrNoTarget)

	cql.Target = "ks"
	assert.NoError(t, cql.Validate())

	assert.NoError(t, connectors.DefaultSearchConfig().Validate())
	assert.NoError(t, connectors.DefaultQueueConfig().Validate())

	file := connectors.DefaultFileConfig()
	assert.Equal(t, connectors.TransportSQS, file.Queue.Transport)
	assert.Equal(t, 10*time.Second, file.Queue.VisibilityTimeout)
}

func TestZeroConfigs_TakeDefaults(t *testing.T) {
	cqlConn, err := connectors.NewWideColumnConnector(connectors.CQLConfig{
		ConnectionConfig: connectors.ConnectionConfig{Target: "ks"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1"}, cqlConn.Config().Hosts)
	assert.Equal(t, 10*time.Second, cqlConn.Config().Timeout)
	assert.False(t, cqlConn.Config().DisableCompression)

	searchConn, err := connectors.NewSearchIndexConnector(connectors.SearchConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://127.0.0.1:9200"}, searchConn.Config().Addresses())

	cfg, err := connectors.ParseConfig([]byte("queue:\n  region: us-east-1\n"))
	require.NoError(t, err)
	queueConn, err := connectors.NewQueueConnector(cfg.Queue)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, queueConn.Config().WaitTime)
	assert.False(t, queueConn.Config().DisableAutoCreate)
}
