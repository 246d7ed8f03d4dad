package cli

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	val, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	if err != nil {
		t.Fatalf("Resolve(%q): %v", name, err)
	}

	return val
}

func TestResolve_Values(t *testing.T) {
	conf := `
log-level: debug
log:
  format: json
max_depth: 8
ratio: 1.5
offset: -3
strict: true
tags: [a, 2, null]
empty:
`

	r, err := resolve(t.Context())(strings.NewReader(conf))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log-format", "json"},
		{"max-depth", "8"},
		{"ratio", "1.5"},
		{"offset", "-3"},
		{"strict", true},
		{"empty", nil},
		{"missing", nil},
	}

	for _, tt := range tests {
		if got := resolveFlag(t, r, tt.flag); got != tt.want {
			t.Errorf("%s = %#v, want %#v", tt.flag, got, tt.want)
		}
	}

	tags, ok := resolveFlag(t, r, "tags").([]any)
	if !ok || !slices.Equal(tags, []any{"a", "2"}) {
		t.Errorf("tags = %#v", resolveFlag(t, r, "tags"))
	}
}

func TestResolve_Malformed(t *testing.T) {
	for _, conf := range []string{"[1, 2", "- a\n- b\n", ""} {
		r, err := resolve(t.Context())(strings.NewReader(conf))
		if err != nil {
			t.Errorf("resolve(%q): %v", conf, err)

			continue
		}

		if got := resolveFlag(t, r, "a"); got != nil {
			t.Errorf("resolve(%q) resolved a = %v", conf, got)
		}
	}
}

func TestResolve_ReadError(t *testing.T) {
	_, err := resolve(t.Context())(&errorReader{err: bytes.ErrTooLarge})
	if err == nil {
		t.Error("expected read error")
	}
}

func TestResolve_Kong(t *testing.T) {
	var cli struct {
		LogLevel string `default:"warn"`
		MaxDepth int    `default:"64"`
		Strict   bool
	}

	loader := resolve(t.Context())

	parser, err := kong.New(&cli, kong.Resolvers(mustResolver(t, loader,
		"log:\n  level: debug\nmax-depth: 8\nstrict: true\n")))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--max-depth=3"}); err != nil {
		t.Fatal(err)
	}

	if cli.LogLevel != "debug" || cli.MaxDepth != 3 || !cli.Strict {
		t.Errorf("parsed %+v", cli)
	}
}

func mustResolver(t *testing.T, loader kong.ConfigurationLoader, conf string) kong.Resolver {
	t.Helper()

	r, err := loader(strings.NewReader(conf))
	if err != nil {
		t.Fatal(err)
	}

	return r
}

// errorReader is a reader that always returns an error.
type errorReader struct {
	err error
}

func (e *errorReader) Read([]byte) (int, error) {
	return 0, e.err
}
