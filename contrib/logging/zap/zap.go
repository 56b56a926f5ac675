// Package zap adapts go.uber.org/zap to the connectors Logger interface.
//
//	logger, _ := zap.NewProduction()
//	conn, _ := connectors.NewQueueConnector(cfg,
//	    connectors.WithLogger(zaplog.New(logger)),
//	)
package zap

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/squashedelephant/connectors/types"
)

// Logger wraps a *zap.SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// Compile-time assertion that Logger implements types.Logger.
var _ types.Logger = (*Logger)(nil)

// New adapts a zap logger. A nil logger yields zap.NewNop.
func New(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Logger{sugar: logger.Sugar()}
}

// NewFromSugar adapts an existing sugared logger.
func NewFromSugar(sugar *zap.SugaredLogger) *Logger {
	return &Logger{sugar: sugar}
}

// NewProduction builds a JSON logger at the given level with ISO8601 timestamps.
//
// Parameters:
//   - level: Minimum level ("debug", "info", "warn", "error")
//
// Returns:
//   - *Logger: The adapted logger
//   - error: If level is unknown or the logger cannot be built
func NewProduction(level string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return New(logger), nil
}

// Debug logs a debug-level message.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs an info-level message.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs a warning-level message.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs an error-level message.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
