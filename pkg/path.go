package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Prefix returns the identifier used to name the configuration and cache
// directories and to prefix environment variables.
//
// It is the base name of the executable without extension, after these
// substitutions:
//   - "__debug_bin<N>" (dlv output) becomes [Name]
//   - leading dots are removed
//
// An empty result falls back to [Name].
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))
		id = debugBin.ReplaceAllString(id, Name)
		id = strings.TrimLeft(id, ".")

		if id == "" {
			return Name
		}

		return id
	},
)

//nolint:gochecknoglobals
var debugBin = regexp.MustCompile(`^__debug_bin\d*$`)

// EnvVar returns the environment variable identifier for suffix, e.g.,
// EnvVar("config_dir") is "TFMT_CONFIG_DIR" when [Prefix] is "tfmt".
func EnvVar(suffix string) string {
	id := Prefix() + "_" + suffix

	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(id))
}

// ConfigDir returns the directory holding config.yaml.
// The environment variable EnvVar("config_dir") overrides it.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return userDir("config_dir", os.UserConfigDir, ".config") },
)

// CacheDir returns the directory for transient files such as REPL history
// and profiles. The environment variable EnvVar("cache_dir") overrides it.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return userDir("cache_dir", os.UserCacheDir, ".cache") },
)

// userDir resolves a per-user directory named by Prefix. The lookup order is
// the override variable, the platform directory, then hidden under $HOME,
// then the working directory.
func userDir(env string, platform func() (string, error), hidden string) string {
	if dir, ok := os.LookupEnv(EnvVar(env)); ok && dir != "" {
		return filepath.Clean(dir)
	}

	if dir, err := platform(); err == nil {
		return filepath.Join(dir, Prefix())
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, hidden, Prefix())
	}

	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, Prefix())
	}

	return Prefix()
}
