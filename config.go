package connectors

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/squashedelephant/connectors/adapter/cql"
	cqlv1 "github.com/squashedelephant/connectors/adapter/cql/v1"
	cqlv2 "github.com/squashedelephant/connectors/adapter/cql/v2"
	"github.com/squashedelephant/connectors/adapter/queue"
	"github.com/squashedelephant/connectors/adapter/queue/jetstream"
	"github.com/squashedelephant/connectors/adapter/queue/sqs"
	"github.com/squashedelephant/connectors/adapter/search"
	"github.com/squashedelephant/connectors/adapter/search/es8"
	"github.com/squashedelephant/connectors/adapter/search/opensearch"
	"github.com/squashedelephant/connectors/internal/logging"
	"github.com/squashedelephant/connectors/internal/metrics"
	"github.com/squashedelephant/connectors/types"
)

// Driver, flavor and transport names accepted in configuration.
const (
	DriverGocql  = "v1"
	DriverApache = "v2"

	FlavorElasticsearch = "elasticsearch"
	FlavorOpenSearch    = "opensearch"

	TransportSQS       = "sqs"
	TransportJetStream = "jetstream"
)

// Configuration defaults.
const (
	DefaultPageSize   = 5000
	DefaultUUIDSuffix = "_id"
	DefaultNATSPort   = 4222
)

// ConnectionConfig is the part of a connector configuration shared by every
// backend.
type ConnectionConfig struct {
	// Hosts are the backend nodes (host names or IPs, without port).
	Hosts []string `yaml:"hosts" mapstructure:"hosts"`

	// Port is the backend port.
	Port int `yaml:"port" mapstructure:"port"`

	// Target is the keyspace, index or queue the connector is bound to.
	// Search and queue connectors take the index/queue per call and may
	// leave it empty.
	Target string `yaml:"target" mapstructure:"target"`

	// Environment selects the resilience profile.
	Environment types.Environment `yaml:"environment" mapstructure:"environment"`

	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// clone returns a copy owning its Hosts slice, with the environment name in
// canonical form.
func (c ConnectionConfig) clone() ConnectionConfig {
	c.Hosts = slices.Clone(c.Hosts)
	if env, err := types.ParseEnvironment(string(c.Environment)); err == nil {
		c.Environment = env
	}

	return c
}

func (c ConnectionConfig) validate(requireTarget bool) error {
	if len(c.Hosts) == 0 {
		return types.ErrNoHosts
	}
	if c.Port < 1 || c.Port > 65535 {
		return types.ErrInvalidPort
	}
	if _, err := types.ParseEnvironment(string(c.Environment)); err != nil {
		return err
	}
	if requireTarget && c.Target == "" {
		return types.ErrNoTarget
	}

	return nil
}

// CQLConfig configures a WideColumnConnector.
type CQLConfig struct {
	ConnectionConfig `yaml:",inline" mapstructure:",squash"`

	// Driver selects the gocql flavor: "v1" (github.com/gocql/gocql) or
	// "v2" (github.com/apache/cassandra-gocql-driver/v2).
	Driver string `yaml:"driver" mapstructure:"driver"`

	CQLVersion      string        `yaml:"cql_version" mapstructure:"cql_version"`
	ProtocolVersion int           `yaml:"protocol_version" mapstructure:"protocol_version"`
	LocalDC         string        `yaml:"local_dc" mapstructure:"local_dc"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`

	// DisableCompression turns off Snappy frame compression, which is on by
	// default.
	DisableCompression bool `yaml:"disable_compression" mapstructure:"disable_compression"`

	// PageSize is the number of rows fetched per page while draining.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`

	// UUIDSuffix marks the columns coerced to their canonical UUID string.
	UUIDSuffix string `yaml:"uuid_suffix" mapstructure:"uuid_suffix"`
}

// DefaultCQLConfig returns a configuration for a local single-node cluster.
//
// Returns:
//   - CQLConfig: Configuration with default settings
func DefaultCQLConfig() CQLConfig {
	return CQLConfig{
		ConnectionConfig: ConnectionConfig{
			Hosts:       []string{"127.0.0.1"},
			Port:        cql.DefaultPort,
			Environment: types.EnvLocal,
			Timeout:     10 * time.Second,
		},
		Driver:          DriverGocql,
		CQLVersion:      cql.DefaultCQLVersion,
		ProtocolVersion: cql.DefaultProtoVersion,
		LocalDC:         cql.DefaultLocalDC,
		ConnectTimeout:  cql.DefaultConnectTimeout,
		PageSize:        DefaultPageSize,
		UUIDSuffix:      DefaultUUIDSuffix,
	}
}

func (c CQLConfig) withDefaults() CQLConfig {
	d := DefaultCQLConfig()
	if len(c.Hosts) == 0 {
		c.Hosts = d.Hosts
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.Environment == "" {
		c.Environment = d.Environment
	}
	if c.Driver == "" {
		c.Driver = d.Driver
	}
	if c.CQLVersion == "" {
		c.CQLVersion = d.CQLVersion
	}
	if c.ProtocolVersion == 0 {
		c.ProtocolVersion = d.ProtocolVersion
	}
	if c.LocalDC == "" {
		c.LocalDC = d.LocalDC
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.UUIDSuffix == "" {
		c.UUIDSuffix = d.UUIDSuffix
	}
	c.ConnectionConfig = c.clone()

	return c
}

// Validate checks the configuration.
//
// Returns:
//   - error: nil if valid, a sentinel error describing the first problem otherwise
func (c CQLConfig) Validate() error {
	if err := c.validate(true); err != nil {
		return err
	}
	if c.Driver != DriverGocql && c.Driver != DriverApache {
		return fmt.Errorf("connectors: unknown CQL driver %q", c.Driver)
	}

	return nil
}

// SearchConfig configures a SearchIndexConnector.
type SearchConfig struct {
	ConnectionConfig `yaml:",inline" mapstructure:",squash"`

	// Flavor selects the client: "elasticsearch" or "opensearch".
	Flavor string `yaml:"flavor" mapstructure:"flavor"`

	Scheme   string `yaml:"scheme" mapstructure:"scheme"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// DefaultSearchConfig returns a configuration for a local single node.
//
// Returns:
//   - SearchConfig: Configuration with default settings
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		ConnectionConfig: ConnectionConfig{
			Hosts:       []string{"127.0.0.1"},
			Port:        search.DefaultPort,
			Environment: types.EnvLocal,
			Timeout:     search.DefaultTimeout,
		},
		Flavor: FlavorElasticsearch,
		Scheme: search.DefaultScheme,
	}
}

func (c SearchConfig) withDefaults() SearchConfig {
	d := DefaultSearchConfig()
	if len(c.Hosts) == 0 {
		c.Hosts = d.Hosts
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.Environment == "" {
		c.Environment = d.Environment
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.Flavor == "" {
		c.Flavor = d.Flavor
	}
	if c.Scheme == "" {
		c.Scheme = d.Scheme
	}
	c.ConnectionConfig = c.clone()

	return c
}

// Validate checks the configuration.
//
// Returns:
//   - error: nil if valid, a sentinel error describing the first problem otherwise
func (c SearchConfig) Validate() error {
	if err := c.validate(false); err != nil {
		return err
	}
	if c.Flavor != FlavorElasticsearch && c.Flavor != FlavorOpenSearch {
		return fmt.Errorf("connectors: unknown search flavor %q", c.Flavor)
	}

	return nil
}

// Addresses returns the node URLs built from Scheme, Hosts and Port.
func (c SearchConfig) Addresses() []string {
	addrs := make([]string, 0, len(c.Hosts))
	for _, h := range c.Hosts {
		addrs = append(addrs, fmt.Sprintf("%s://%s:%d", c.Scheme, h, c.Port))
	}

	return addrs
}

// QueueConfig configures a QueueConnector.
type QueueConfig struct {
	ConnectionConfig `yaml:",inline" mapstructure:",squash"`

	// Transport selects the queue service: "sqs" or "jetstream".
	Transport string `yaml:"transport" mapstructure:"transport"`

	Region          string `yaml:"region" mapstructure:"region"`
	AccessKeyID     string `yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key"`
	SessionToken    string `yaml:"session_token" mapstructure:"session_token"`

	// Endpoint overrides the service endpoint (LocalStack URL for SQS, server
	// URL for JetStream). When empty for JetStream it is built from Hosts
	// and Port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	VisibilityTimeout time.Duration `yaml:"visibility_timeout" mapstructure:"visibility_timeout"`

	// WaitTime is the long-poll duration of a receive. 0 selects the
	// default; a negative value turns long polling off.
	WaitTime time.Duration `yaml:"wait_time" mapstructure:"wait_time"`

	// DisableAutoCreate makes a missing queue fail instead of being created
	// on first use.
	DisableAutoCreate bool `yaml:"disable_auto_create" mapstructure:"disable_auto_create"`
}

// DefaultQueueConfig returns a configuration for SQS in us-east-1.
//
// Returns:
//   - QueueConfig: Configuration with default settings
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		ConnectionConfig: ConnectionConfig{
			Hosts:       []string{"sqs.us-east-1.amazonaws.com"},
			Port:        443,
			Environment: types.EnvLocal,
			Timeout:     queue.DefaultTimeout,
		},
		Transport:         TransportSQS,
		Region:            "us-east-1",
		VisibilityTimeout: queue.DefaultVisibilityTimeout,
		WaitTime:          queue.DefaultWaitTime,
	}
}

func (c QueueConfig) withDefaults() QueueConfig {
	d := DefaultQueueConfig()
	if c.Transport == "" {
		c.Transport = d.Transport
	}
	if len(c.Hosts) == 0 {
		if c.Transport == TransportJetStream {
			c.Hosts = []string{"127.0.0.1"}
		} else {
			c.Hosts = d.Hosts
		}
	}
	if c.Port == 0 {
		if c.Transport == TransportJetStream {
			c.Port = DefaultNATSPort
		} else {
			c.Port = d.Port
		}
	}
	if c.Environment == "" {
		c.Environment = d.Environment
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.VisibilityTimeout <= 0 {
		c.VisibilityTimeout = d.VisibilityTimeout
	}
	if c.WaitTime == 0 {
		c.WaitTime = d.WaitTime
	}
	c.ConnectionConfig = c.clone()

	return c
}

// Validate checks the configuration.
//
// Returns:
//   - error: nil if valid, a sentinel error describing the first problem otherwise
func (c QueueConfig) Validate() error {
	if err := c.validate(false); err != nil {
		return err
	}
	switch c.Transport {
	case TransportSQS:
		if c.Region == "" {
			return types.ErrNoRegion
		}
	case TransportJetStream:
	default:
		return fmt.Errorf("connectors: unknown queue transport %q", c.Transport)
	}

	return nil
}

func (c QueueConfig) adapterConfig() queue.Config {
	endpoint := c.Endpoint
	if endpoint == "" && c.Transport == TransportJetStream {
		endpoint = fmt.Sprintf("nats://%s:%d", c.Hosts[0], c.Port)
	}
	wait := c.WaitTime
	if wait < 0 {
		wait = 0
	}

	return queue.Config{
		Region:            c.Region,
		AccessKeyID:       c.AccessKeyID,
		SecretAccessKey:   c.SecretAccessKey,
		SessionToken:      c.SessionToken,
		Endpoint:          endpoint,
		Timeout:           c.Timeout,
		VisibilityTimeout: c.VisibilityTimeout,
		WaitTime:          wait,
	}
}

// FileConfig is the layout of a connectors YAML configuration file.
type FileConfig struct {
	CQL    CQLConfig    `yaml:"cql" mapstructure:"cql"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Queue  QueueConfig  `yaml:"queue" mapstructure:"queue"`
}

// DefaultFileConfig returns a FileConfig holding every backend's defaults.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		CQL:    DefaultCQLConfig(),
		Search: DefaultSearchConfig(),
		Queue:  DefaultQueueConfig(),
	}
}

// LoadConfig reads a YAML configuration file.
//
// Fields absent from the file are left zero; connectors fill them with
// their defaults at construction.
//
// Parameters:
//   - path: Path of the YAML file
//
// Returns:
//   - FileConfig: The decoded configuration
//   - error: Read or decode error
func LoadConfig(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("connectors: read config: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes a YAML configuration document.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - FileConfig: The decoded configuration
//   - error: Decode error
func ParseConfig(data []byte) (FileConfig, error) {
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, fmt.Errorf("connectors: decode config: %w", err)
	}

	return cfg, nil
}

// Options holds the collaborators shared by every connector.
type Options struct {
	Logger       types.Logger
	Metrics      types.MetricsCollector
	CQLDialer    cql.Dialer
	SearchDialer search.Dialer
	QueueDialer  queue.Dialer
}

// DefaultOptions returns Options with no-op logging and metrics.
//
// Dialers are left nil; each connector then picks the adapter named by its
// configuration (driver, flavor or transport).
//
// Returns:
//   - *Options: Options with default settings
func DefaultOptions() *Options {
	return &Options{
		Logger:  logging.NewNopLogger(),
		Metrics: metrics.NewNopMetrics(),
	}
}

// Option configures Options.
type Option func(*Options)

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
// The logger interface is compatible with zap.SugaredLogger; see
// contrib/logging/zap.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
func WithLogger(logger types.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm or contrib/metrics/prom for a real backend.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	import vmmetrics "github.com/squashedelephant/connectors/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	conn, _ := connectors.NewWideColumnConnector(cfg,
//	    connectors.WithMetrics(collector),
//	)
func WithMetrics(collector types.MetricsCollector) Option {
	return func(o *Options) {
		o.Metrics = collector
	}
}

// WithCQLDialer overrides the dialer used to open CQL sessions.
//
// Parameters:
//   - dialer: Session dialer (e.g. v1.Dial, or a test fake)
//
// Returns:
//   - Option: Configuration option
func WithCQLDialer(dialer cql.Dialer) Option {
	return func(o *Options) {
		o.CQLDialer = dialer
	}
}

// WithSearchDialer overrides the dialer used to open search clients.
//
// Parameters:
//   - dialer: Client dialer
//
// Returns:
//   - Option: Configuration option
func WithSearchDialer(dialer search.Dialer) Option {
	return func(o *Options) {
		o.SearchDialer = dialer
	}
}

// WithQueueDialer overrides the dialer used to open queue clients.
//
// Parameters:
//   - dialer: Client dialer
//
// Returns:
//   - Option: Configuration option
func WithQueueDialer(dialer queue.Dialer) Option {
	return func(o *Options) {
		o.QueueDialer = dialer
	}
}

func buildOptions(opts []Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	// Ensure logger and metrics are never nil
	if o.Logger == nil {
		o.Logger = logging.NewNopLogger()
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NewNopMetrics()
	}

	return o
}

func cqlDialer(o *Options, driver string) cql.Dialer {
	if o.CQLDialer != nil {
		return o.CQLDialer
	}
	if driver == DriverApache {
		return cqlv2.Dial
	}

	return cqlv1.Dial
}

func searchDialer(o *Options, flavor string) search.Dialer {
	if o.SearchDialer != nil {
		return o.SearchDialer
	}
	if flavor == FlavorOpenSearch {
		return opensearch.Dial
	}

	return es8.Dial
}

func queueDialer(o *Options, transport string) queue.Dialer {
	if o.QueueDialer != nil {
		return o.QueueDialer
	}
	if transport == TransportJetStream {
		return jetstream.Dial
	}

	return sqs.Dial
}
