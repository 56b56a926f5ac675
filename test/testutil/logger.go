package testutil

import (
	"sync"

	"github.com/squashedelephant/connectors/types"
)

// LogEntry is one message recorded by a TestLogger.
type LogEntry struct {
	Level         string
	Msg           string
	KeysAndValues []any
}

// TestLogger is a types.Logger that records messages.
type TestLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// Compile-time assertion that TestLogger implements types.Logger.
var _ types.Logger = (*TestLogger)(nil)

// NewTestLogger creates an empty recording logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

func (l *TestLogger) record(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, KeysAndValues: kv})
}

// Debug records a debug message.
func (l *TestLogger) Debug(msg string, keysAndValues ...any) { l.record("debug", msg, keysAndValues) }

// Info records an info message.
func (l *TestLogger) Info(msg string, keysAndValues ...any) { l.record("info", msg, keysAndValues) }

// Warn records a warning.
func (l *TestLogger) Warn(msg string, keysAndValues ...any) { l.record("warn", msg, keysAndValues) }

// Error records an error.
func (l *TestLogger) Error(msg string, keysAndValues ...any) { l.record("error", msg, keysAndValues) }

// Entries returns the recorded messages of a level, all levels when empty.
func (l *TestLogger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []LogEntry
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}

	return out
}
