// Package toposlog is a thin wrapper around log/slog providing a
// workspace-scoped logger with the fields the query database and CLI use
// most often: file, query, and generation.
package toposlog

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Level mirrors slog.Level so callers don't need to import log/slog
// directly just to configure verbosity.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger wraps a *slog.Logger, adding helpers for the attributes Topos's
// query layer logs repeatedly.
type Logger struct {
	*slog.Logger
}

// New returns a Logger writing JSON lines to w at the given minimum level.
func New(w io.Writer, level Level) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(h)}
}

// Default returns a Logger writing text to stderr at Info level, the CLI's
// default when no other configuration is given.
func Default() *Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: LevelInfo})
	return &Logger{Logger: slog.New(h)}
}

// WithFile returns a child logger tagged with the given workspace path.
func (l *Logger) WithFile(path string) *Logger {
	return &Logger{Logger: l.Logger.With("file", path)}
}

// WithQuery returns a child logger tagged with the given query name, for
// logging around a specific memoized computation (e.g. "file_diagnostics").
func (l *Logger) WithQuery(name string) *Logger {
	return &Logger{Logger: l.Logger.With("query", name)}
}

// WithGeneration returns a child logger tagged with the workspace
// generation a log line pertains to, so invalidation churn can be
// correlated across entries.
func (l *Logger) WithGeneration(gen uint64) *Logger {
	return &Logger{Logger: l.Logger.With("generation", gen)}
}

// QueryStart logs the start of a derived-query computation at Debug level.
func (l *Logger) QueryStart(ctx context.Context, query string, file string) {
	l.DebugContext(ctx, "query start", "query", query, "file", file)
}

// QueryDone logs the completion of a derived-query computation, including
// whether it was served from the memo table or recomputed.
func (l *Logger) QueryDone(ctx context.Context, query string, file string, cached bool) {
	l.DebugContext(ctx, "query done", "query", query, "file", file, "cached", cached)
}
