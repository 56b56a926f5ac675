package connectors

import "github.com/squashedelephant/connectors/types"

// Type aliases for convenience - re-export from types package.
type (
	Envelope         = types.Envelope
	Record           = types.Record
	StatusCode       = types.StatusCode
	Environment      = types.Environment
	Consistency      = types.Consistency
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export environment constants for convenience.
const (
	EnvLocal      = types.EnvLocal
	EnvProduction = types.EnvProduction
)
