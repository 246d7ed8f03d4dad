package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/tfmt/cli/cmd"
	"github.com/ardnew/tfmt/log"
	"github.com/ardnew/tfmt/pkg"
	"github.com/ardnew/tfmt/tmpl"
)

// exitCode is panicked by the exit function given to run so that tests
// can observe kong exiting.
type exitCode int

func runCLI(t *testing.T, configFile string, args ...string) (string, error) {
	t.Helper()

	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	var out bytes.Buffer

	err := run(t.Context(), func(code int) { panic(exitCode(code)) },
		&out, &out, configFile, args...)

	return out.String(), err
}

func TestRun_Render(t *testing.T) {
	conf := filepath.Join(t.TempDir(), baseConfig)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default_locale", []string{"render", "--set", "n=1234.5", "{n:,.1f}"}, "1,234.5\n"},
		{"separators", []string{"--decimal-point=,", "--thousands-sep= ", "render", "--set", "n=1234.5", "{n:,.1f}"}, "1 234,5\n"},
		{"locale_tag", []string{"--locale", "de", "render", "--set", "n=1234.5", "{n:,.1f}"}, "1.234,5\n"},
		{"locale_override", []string{"--locale", "de", "--thousands-sep='", "render", "--set", "n=1234.5", "{n:,.1f}"}, "1'234,5\n"},
		{"multiple", []string{"render", "--set", "a=x", "{a}", "{a}{a}"}, "x\nxx\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runCLI(t, conf, tt.args...)
			if err != nil {
				t.Fatal(err)
			}

			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, baseConfig)

	err := os.WriteFile(conf, []byte("decimal-point: ','\nthousands_sep: '.'\nstrict: true\n"), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	got, err := runCLI(t, conf, "render", "--set", "n=1234.5", "{n:,.1f}")
	if err != nil || got != "1.234,5\n" {
		t.Errorf("config separators: %q, %v", got, err)
	}

	// Flags override the configuration file.
	got, err = runCLI(t, conf, "--decimal-point=.", "render", "--set", "n=1.5", "{n:.1f}")
	if err != nil || got != "1.5\n" {
		t.Errorf("flag override: %q, %v", got, err)
	}

	// strict: true makes unsafe access fail.
	if _, err := runCLI(t, conf, "render", "--set", "n=5", "{n.toString}"); !errors.Is(err, cmd.ErrRender) {
		t.Errorf("strict from config: got %v, want %v", err, cmd.ErrRender)
	}
}

func TestRun_Errors(t *testing.T) {
	conf := filepath.Join(t.TempDir(), baseConfig)

	if _, err := runCLI(t, conf, "--locale", "!!", "render", "{a}"); !errors.Is(err, cmd.ErrLocale) {
		t.Errorf("bad locale: got %v, want %v", err, cmd.ErrLocale)
	}

	if _, err := runCLI(t, conf, "render"); !errors.Is(err, cmd.ErrNoTemplate) {
		t.Errorf("no template: got %v, want %v", err, cmd.ErrNoTemplate)
	}
}

func TestRun_Init(t *testing.T) {
	conf := filepath.Join(t.TempDir(), baseConfig)

	if _, err := runCLI(t, conf, "--strict", "--max-depth=8", "init"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(conf)
	if err != nil {
		t.Fatal(err)
	}

	var written map[string]any
	if err := yaml.Unmarshal(data, &written); err != nil {
		t.Fatalf("generated config is not YAML: %v\n%s", err, data)
	}

	for key, want := range map[string]any{
		"strict":    true,
		"max-depth": "8",
		"log-level": "warn",
	} {
		if written[key] != want {
			t.Errorf("%s = %#v, want %#v", key, written[key], want)
		}
	}

	for _, key := range []string{"help", "version", "locale"} {
		if _, ok := written[key]; ok {
			t.Errorf("config contains %q", key)
		}
	}

	// The generated file is read back as configuration.
	got, err := runCLI(t, conf, "render", "--set", "n=5", "{n.toString}")
	if !errors.Is(err, cmd.ErrRender) {
		t.Errorf("strict not loaded from generated config: %q, %v", got, err)
	}
}

func TestRun_Version(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	conf := filepath.Join(t.TempDir(), baseConfig)
	code := -1

	var out bytes.Buffer

	func() {
		defer func() {
			if c, ok := recover().(exitCode); ok {
				code = int(c)
			}
		}()

		_ = run(t.Context(), func(code int) { panic(exitCode(code)) },
			&out, &out, conf, "--version")
	}()

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	if want := pkg.Name + " " + pkg.Version; strings.TrimSpace(out.String()) != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestEngineConfig_Locale(t *testing.T) {
	tests := []struct {
		name string
		cfg  engineConfig
		want tmpl.Locale
		set  bool
	}{
		{"none", engineConfig{}, tmpl.CurrentLocale(), false},
		{"tag", engineConfig{Locale: "de"}, tmpl.Locale{DecimalPoint: ",", ThousandsSep: "."}, true},
		{"override", engineConfig{Locale: "de", DecimalPoint: "·"}, tmpl.Locale{DecimalPoint: "·", ThousandsSep: "."}, true},
		{"separator_only", engineConfig{ThousandsSep: "_"}, tmpl.Locale{DecimalPoint: ".", ThousandsSep: "_"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, set, err := tt.cfg.locale()
			if err != nil {
				t.Fatal(err)
			}

			if got != tt.want || set != tt.set {
				t.Errorf("locale() = %+v, %v, want %+v, %v", got, set, tt.want, tt.set)
			}
		})
	}
}

func TestLogConfig_Scan(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	var f logConfig

	f.scan([]string{
		"render",
		"--log-pretty",
		"--no-log-caller=false",
		"--log-level", "debug",
		"--log-format=json",
		"--",
		"--log-pretty=false",
	})

	if !f.Pretty || !f.Caller || f.Level != "debug" || f.Format != "json" {
		t.Errorf("scan = %+v", f)
	}

	if l := log.Default(); l.Level() != log.LevelDebug || l.Format() != log.FormatJSON {
		t.Errorf("logger level=%v format=%v", l.Level(), l.Format())
	}
}

func TestConfigPath(t *testing.T) {
	if got := configPath(baseConfig); got != filepath.Join(pkg.ConfigDir(), baseConfig) {
		t.Errorf("configPath = %q", got)
	}
}
