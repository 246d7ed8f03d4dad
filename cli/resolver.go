package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/tfmt/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML configuration
// files, for use with [kong.Configuration]:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// Keys are flag names. Nested mappings join their keys with '-', so both
// of these set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Underscores may stand in for hyphens. Numbers are passed to kong as
// strings, sequences as lists of strings. A file that is not a YAML mapping
// is logged and ignored. Command-line flags and environment variables
// override configuration values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		ra, err := readahead.NewReaderSize(r, 4, 1<<16)
		if err != nil {
			return nil, err
		}
		defer ra.Close()

		buf, err := io.ReadAll(ra)
		if err != nil {
			return nil, err
		}

		var raw map[string]any
		if err := yaml.UnmarshalContext(ctx, buf, &raw); err != nil {
			log.WarnContext(ctx, "ignoring malformed configuration file",
				slog.Any("error", err))

			return config{}, nil
		}

		conf := config{}
		conf.flatten("", raw)

		log.TraceContext(ctx, "configuration loaded", slog.Int("keys", len(conf)))

		return conf, nil
	}
}

// config implements [kong.Resolver] over a flattened YAML mapping.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	return c[flag.Name], nil
}

// flatten stores every leaf of m under its '-'-joined key path, with
// underscores replaced by hyphens.
func (c config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		key = strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if nested, ok := value.(map[string]any); ok {
			c.flatten(key, nested)

			continue
		}

		if v := configScalar(value); v != nil {
			c[key] = v
		}
	}
}

// configScalar converts a YAML value to the representation kong decodes:
// numbers become strings, sequences become lists of strings.
func configScalar(value any) any {
	switch v := value.(type) {
	case nil:
		return nil

	case bool, string:
		return v

	case int:
		return strconv.Itoa(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		list := make([]any, 0, len(v))

		for _, elem := range v {
			if s := configScalar(elem); s != nil {
				list = append(list, s)
			}
		}

		return list

	default:
		return nil
	}
}
