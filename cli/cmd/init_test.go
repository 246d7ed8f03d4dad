package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initCLI struct {
	Level    string `default:"warn"`
	Locale   string `default:""`
	Strict   bool   `default:"false"`
	MaxDepth int    `default:"64"`
	Tags     []string
	Secret   string `default:"x"      hidden:""`
}

func TestInit_Run(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{"create", false, false, nil},
		{"overwrite_with_force", true, true, nil},
		{"refuse_without_force", false, true, ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				writeFile(t, filepath.Dir(confPath), "config.yaml", "existing: true\n")
			}

			ctx, _ := newContext(t, &initCLI{},
				[]string{"--strict", "--max-depth=8"},
				kong.Vars{ConfigIdentifier: confPath})

			err := (&Init{Force: tt.force}).Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var conf map[string]any
			if err := yaml.Unmarshal(content, &conf); err != nil {
				t.Fatalf("config is not YAML: %v\n%s", err, content)
			}

			want := map[string]any{"level": "warn", "strict": true, "max-depth": "8"}
			if len(conf) != len(want) {
				t.Errorf("config = %v, want %v", conf, want)
			}

			for k, v := range want {
				if conf[k] != v {
					t.Errorf("config[%q] = %#v, want %#v", k, conf[k], v)
				}
			}
		})
	}
}

func TestInit_InvalidPath(t *testing.T) {
	ctx, _ := newContext(t, nil, nil,
		kong.Vars{ConfigIdentifier: "/nonexistent/directory/config.yaml"})

	if err := (&Init{}).Run(ctx); !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Run() error = %v, want %v", err, ErrWriteConfig)
	}
}

func TestConfigValue(t *testing.T) {
	type level string

	tests := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{true, true},
		{false, false},
		{"", nil},
		{"s", "s"},
		{level("debug"), "debug"},
		{level(""), nil},
		{42, "42"},
		{0.5, "0.5"},
		{[]string{}, nil},
	}

	for _, tt := range tests {
		if got := configValue(tt.in); got != tt.want {
			t.Errorf("configValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}

	if got, ok := configValue([]string{"a"}).([]string); !ok || len(got) != 1 {
		t.Errorf("configValue([a]) = %#v", got)
	}
}
