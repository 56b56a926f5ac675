package types

// Logger is the structured logger used by connectors.
//
// Messages are followed by alternating key/value pairs. The method set matches
// the "w" family of zap.SugaredLogger; use contrib/logging/zap to adapt a
// *zap.Logger.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, keysAndValues ...any)

	// Info logs an info-level message.
	Info(msg string, keysAndValues ...any)

	// Warn logs a warning-level message.
	Warn(msg string, keysAndValues ...any)

	// Error logs an error-level message.
	Error(msg string, keysAndValues ...any)
}
