package connectors

import (
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/squashedelephant/connectors/types"
)

// call tracks one public operation for logging and metrics.
type call struct {
	opts    *Options
	backend types.Backend
	op      string
	start   time.Time
}

func (o *Options) begin(backend types.Backend, op string, keysAndValues ...any) *call {
	o.Metrics.IncOperationTotal(backend, op)
	o.Logger.Debug("operation started", append([]any{"backend", backend, "op", op}, keysAndValues...)...)

	return &call{opts: o, backend: backend, op: op, start: time.Now()}
}

// finish records the envelope's outcome.
func (c *call) finish(env types.Envelope) {
	elapsed := time.Since(c.start)
	c.opts.Metrics.IncOperationStatus(c.backend, c.op, env.StatusCode)
	c.opts.Metrics.ObserveOperationDuration(c.backend, c.op, elapsed.Seconds())

	kv := []any{
		"backend", c.backend,
		"op", c.op,
		"status_code", int(env.StatusCode),
		"duration", elapsed,
	}
	if env.OK() {
		c.opts.Logger.Debug("operation completed", append(kv, "rows", len(env.Data))...)
		return
	}
	c.opts.Logger.Warn("operation failed", append(kv, "reason", firstLine(env.Reason))...)
}

func (c *call) sessionError(stage string, err error) {
	c.opts.Metrics.IncSessionError(c.backend)
	c.opts.Logger.Warn("session "+stage+" failed", "backend", c.backend, "op", c.op, "error", err)
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// diagnose renders the reason of an unknown failure: the operation inputs as
// "key: value" lines, then the error message and its call stack.
func diagnose(err error, keysAndValues ...any) string {
	var b strings.Builder
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, "%v: %v\n", keysAndValues[i], keysAndValues[i+1])
	}
	if _, ok := err.(stackTracer); !ok { //nolint:errorlint // only the outermost error carries our stack
		err = pkgerrors.WithStack(err)
	}
	fmt.Fprintf(&b, "%+v", err)

	return b.String()
}

// recovered converts a recovered panic value into an error carrying the
// stack of the panic site.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		return pkgerrors.WithStack(err)
	}

	return pkgerrors.Errorf("panic: %v", r)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}

	return s
}
