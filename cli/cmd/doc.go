// Package cmd implements the tfmt subcommands: render, parse, helpers,
// repl and init.
//
// Commands read their [github.com/alecthomas/kong] context and render
// options from the [context.Context] passed to Run. See [WithContext] and
// [WithEngine].
package cmd

var (
	// CacheIdentifier is the kong variable holding the runtime cache
	// directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the configuration file
	// path.
	ConfigIdentifier = "config"
)
