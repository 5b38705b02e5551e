package heatmap

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
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

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for heatmap and all registered backends.
// By default, heatmap produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by heatmap:
//   - [slog.LevelDebug]: per-render diagnostics (tile counts, buffer sizes)
//   - [slog.LevelInfo]: lifecycle events (backend mounted, GPU adapter selected)
//   - [slog.LevelWarn]: non-fatal issues (release errors, lost GPU context)
//
// Example:
//
//	heatmap.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// Backends that keep their own logger (internal/gpu) get the same one.
	for _, b := range defaultRegistry.Backends() {
		propagateLogger(b, l)
	}
}

// Logger returns the current logger used by heatmap.
// Backend packages call this to share the same logger configuration.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// propagateLogger hands l to a backend that asked for logger updates.
// Called from both SetLogger and RegisterBackend so a backend always has
// the current logger.
func propagateLogger(b Backend, l *slog.Logger) {
	if b.SetLogger != nil {
		b.SetLogger(l)
	}
}
