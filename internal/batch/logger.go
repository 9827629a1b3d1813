package batch

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record; Enabled returns false so messages are never formatted
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures batch logging. By default nothing is logged; pass nil to
// restore that. Safe for concurrent use.
//
// Levels used:
//   - [slog.LevelDebug]: per label progress
//   - [slog.LevelInfo]: batch start and completion
//   - [slog.LevelWarn]: failed or skipped products, degraded elements
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current batch logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
