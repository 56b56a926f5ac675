package main

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/squashedelephant/connectors"
	zaplog "github.com/squashedelephant/connectors/contrib/logging/zap"
	vmmetrics "github.com/squashedelephant/connectors/contrib/metrics/vm"
	"github.com/squashedelephant/connectors/types"
)

// EnvPrefix prefixes every environment variable read by connectorctl.
const EnvPrefix = "CONNECTORS"

// configKeys are the settings that may be supplied through the environment.
var configKeys = []string{
	"cql.hosts", "cql.port", "cql.target", "cql.environment", "cql.timeout",
	"cql.driver", "cql.cql_version", "cql.protocol_version", "cql.local_dc",
	"cql.connect_timeout", "cql.disable_compression", "cql.page_size", "cql.uuid_suffix",
	"search.hosts", "search.port", "search.environment", "search.timeout",
	"search.flavor", "search.scheme", "search.username", "search.password",
	"queue.hosts", "queue.port", "queue.environment", "queue.timeout",
	"queue.transport", "queue.region", "queue.access_key_id", "queue.secret_access_key",
	"queue.session_token", "queue.endpoint", "queue.visibility_timeout", "queue.wait_time",
	"queue.disable_auto_create",
}

// statusError reports an envelope carrying a failure code.
type statusError struct {
	code types.StatusCode
}

func (e *statusError) Error() string {
	return fmt.Sprintf("operation failed with status %d (%s)", int(e.code), e.code.Name())
}

// app carries the state shared by subcommands.
type app struct {
	v       *viper.Viper
	out     io.Writer
	errOut  io.Writer
	logger  *zaplog.Logger
	metrics *vmmetrics.Collector
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "connectorctl",
		Short:         "Run wide-column, search and queue connector operations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("log-level", "error", "Log level (debug, info, warn, error)")
	flags.Bool("metrics", false, "Write Prometheus metrics to stderr after the operation")
	_ = a.v.BindPFlag("config", flags.Lookup("config"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("metrics", flags.Lookup("metrics"))

	root.AddCommand(
		a.configCommand(),
		a.cqlCommand(),
		a.searchCommand(),
		a.queueCommand(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range append(configKeys, "log_level") {
		if err := a.v.BindEnv(key); err != nil {
			return err
		}
	}

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		a.v.SetConfigType("yaml")
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	logger, err := zaplog.NewProduction(a.v.GetString("log_level"))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.logger = logger

	if a.v.GetBool("metrics") {
		a.metrics = vmmetrics.New(vmmetrics.WithPrefix("connectorctl"))
	}

	a.logger.Debug("connectorctl started", "command", cmd.CommandPath())

	return nil
}

func (a *app) teardown() {
	if a.metrics != nil {
		a.metrics.WritePrometheus(a.errOut)
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// fileConfig decodes the effective configuration: file, then environment.
func (a *app) fileConfig() (connectors.FileConfig, error) {
	var cfg connectors.FileConfig
	if err := a.v.Unmarshal(&cfg); err != nil {
		return connectors.FileConfig{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func (a *app) options() []connectors.Option {
	opts := []connectors.Option{connectors.WithLogger(a.logger)}
	if a.metrics != nil {
		opts = append(opts, connectors.WithMetrics(a.metrics))
	}

	return opts
}

// print writes env as indented JSON and turns failure codes into a statusError.
func (a *app) print(env types.Envelope) error {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if _, err := fmt.Fprintln(a.out, string(data)); err != nil {
		return err
	}
	if !env.OK() {
		return &statusError{code: env.StatusCode}
	}

	return nil
}

// parseRecord decodes a JSON object argument. Empty input yields nil.
func parseRecord(name, raw string) (types.Record, error) {
	if raw == "" {
		return nil, nil
	}

	var rec types.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%s: invalid JSON object: %w", name, err)
	}

	return rec, nil
}
