package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// DefaultContextProvider returns the context used by the logging methods that
// do not take one.
var DefaultContextProvider = context.TODO

var (
	defaultMu  sync.RWMutex
	defaultLog = Make(os.Stderr)
)

func current() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultLog
}

// Default returns the package-level logger.
func Default() Logger { return current() }

// Config replaces the package-level logger with one whose settings are
// overridden by opts.
func Config(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLog = defaultLog.Wrap(opts...)
}

// TraceContext logs msg at [LevelTrace] using the package-level logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	current().log(ctx, LevelTrace, msg, attrs)
}

// Trace logs msg at [LevelTrace] using the package-level logger.
func Trace(msg string, attrs ...slog.Attr) {
	current().log(DefaultContextProvider(), LevelTrace, msg, attrs)
}

// DebugContext logs msg at [LevelDebug] using the package-level logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	current().log(ctx, LevelDebug, msg, attrs)
}

// Debug logs msg at [LevelDebug] using the package-level logger.
func Debug(msg string, attrs ...slog.Attr) {
	current().log(DefaultContextProvider(), LevelDebug, msg, attrs)
}

// InfoContext logs msg at [LevelInfo] using the package-level logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	current().log(ctx, LevelInfo, msg, attrs)
}

// Info logs msg at [LevelInfo] using the package-level logger.
func Info(msg string, attrs ...slog.Attr) {
	current().log(DefaultContextProvider(), LevelInfo, msg, attrs)
}

// WarnContext logs msg at [LevelWarn] using the package-level logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	current().log(ctx, LevelWarn, msg, attrs)
}

// Warn logs msg at [LevelWarn] using the package-level logger.
func Warn(msg string, attrs ...slog.Attr) {
	current().log(DefaultContextProvider(), LevelWarn, msg, attrs)
}

// ErrorContext logs msg at [LevelError] using the package-level logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	current().log(ctx, LevelError, msg, attrs)
}

// Error logs msg at [LevelError] using the package-level logger.
func Error(msg string, attrs ...slog.Attr) {
	current().log(DefaultContextProvider(), LevelError, msg, attrs)
}

// With returns the package-level logger with attrs added to every record.
func With(attrs ...slog.Attr) Logger {
	return current().With(attrs...)
}
