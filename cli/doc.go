// Package cli contains the command line interface for tfmt.
//
// # Usage
//
//	tfmt [flags] render [-d data.yaml] [--set key=value] [-t file] [format ...]
//	tfmt [flags] parse [--json|--yaml] format
//	tfmt [flags] helpers [--format table|plain]
//	tfmt [flags] repl [-d data.yaml]
//	tfmt [flags] init [--force]
//
// Render is the default command, so format strings may follow the global
// flags directly:
//
//	tfmt --set n=3.14159 '{n:.2f}'
//
// # Configuration
//
// Flags are resolved, in order of precedence, from the command line, from
// environment variables named after the executable and the flag
// (TFMT_LOG_LEVEL, TFMT_DECIMAL_POINT), and from the YAML file config.yaml
// in the user configuration directory:
//
//	log:
//	  level: debug
//	  format: json
//	decimal-point: ","
//	thousands-sep: "."
//	strict: true
//
// Nested mappings join their keys with '-'. The init command writes the
// current flag values in this form.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, none, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Rendering Options
//
//   - --locale: Derive number separators from a language tag
//   - --decimal-point, --thousands-sep: Set number separators explicitly
//   - --strict: Fail on unsafe access instead of rendering it empty
//   - --max-depth, --max-output: Bound nesting and output size
//   - --trailing-pass: Honor the second argument of foreach
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o tfmt .
//
// It adds:
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/tfmt/pprof)
package cli
