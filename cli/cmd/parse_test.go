package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/tfmt/tmpl"
)

func ptr[T any](v T) *T { return &v }

func TestParse(t *testing.T) {
	tpl := writeFile(t, t.TempDir(), "t.tmpl", "a{b}\n")

	tests := []struct {
		name string
		cmd  Parse
		want string
	}{
		{"print", Parse{Format: ptr("a{b:.1f}")}, "text \"a\"\nexpr b spec \".1f\"\n"},
		{"file", Parse{Template: tpl}, "text \"a\"\nexpr b\n"},
		{"json", Parse{JSON: true, Format: ptr("{a}")}, `[{"expr":{"path":"a"},"pos":"1:1"}]` + "\n"},
		{"empty_format", Parse{Format: ptr(""), Template: tpl}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := newContext(t, nil, nil)

			if err := tt.cmd.Run(ctx); err != nil {
				t.Fatal(err)
			}

			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestParse_YAML(t *testing.T) {
	ctx, out := newContext(t, nil, nil)

	if err := (&Parse{YAML: true, Indent: 2, Format: ptr("x{#if y}z{/if}")}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	var nodes []map[string]any
	if err := yaml.Unmarshal(out.Bytes(), &nodes); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out.String())
	}

	if len(nodes) != 2 || nodes[1]["block"] != "if" {
		t.Errorf("nodes = %v", nodes)
	}
}

func TestParse_Errors(t *testing.T) {
	ctx, _ := newContext(t, nil, nil)

	if err := (&Parse{}).Run(ctx); !errors.Is(err, ErrNoTemplate) {
		t.Errorf("no source: got %v", err)
	}

	err := (&Parse{Format: ptr("ab\n{#if x}")}).Run(ctx)
	if !errors.Is(err, tmpl.ErrUnbalanced) || !strings.Contains(err.Error(), "line 2, column 1") {
		t.Errorf("unbalanced: got %v", err)
	}
}
