// Package log provides leveled structured logging on top of [log/slog].
//
// A [Logger] adds a [LevelTrace] level below [LevelDebug] and accepts only
// typed [slog.Attr] values. Its zero value is a valid logger that discards
// all records, which lets library code accept an optional Logger without
// nil checks.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"))
//
//	logger.Info("render complete", slog.Int("bytes", n))
//
// Settings are immutable once a Logger is built. [Logger.Wrap] derives a
// Logger with some settings overridden, and [Logger.With] derives one that
// adds attributes to every record.
//
// The package-level functions log through a process-wide Logger writing to
// standard error, reconfigured with [Config].
//
// Text output may be colorized with [WithPretty]. Timestamps accept the named
// layouts of package [time] or a verbatim layout string; "none" omits them.
package log
