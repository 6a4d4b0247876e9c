package trailbg

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/trailbg/accum"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// live holds the accumulators of open renderers so SetLogger can reach them.
var live sync.Map // Accumulator -> struct{}

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for trailbg and its sub-packages.
// By default, trailbg produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by trailbg:
//   - [slog.LevelDebug]: buffer sizes, feed selection, GPU pipeline state
//   - [slog.LevelInfo]: lifecycle events (renderer created, GPU adapter selected)
//   - [slog.LevelWarn]: non-fatal issues (asset decode failures, CPU fallback)
//
// Example:
//
//	trailbg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	accum.SetLogger(l)

	live.Range(func(k, _ any) bool {
		propagateLogger(k.(Accumulator), l)
		return true
	})
}

// Logger returns the current logger used by trailbg.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by accumulators that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to an accumulator if it implements
// the loggerSetter interface.
func propagateLogger(a Accumulator, l *slog.Logger) {
	if ls, ok := a.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
