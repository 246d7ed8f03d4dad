package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/tfmt/tmpl"
)

func TestDetectHelperCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{"literal", "add 1 ", "", 0, false},
		{"bare_path", "{user.name", "", 0, false},
		{"after_name", "{add ", "add", 0, true},
		{"first_arg", "{add 1", "add", 0, true},
		{"second_arg", "{add 1 ", "add", 1, true},
		{"second_arg_value", "{add 1 2", "add", 1, true},
		{"quoted_space", "{add 'a b' ", "add", 1, true},
		{"nested_call", "{add (multiply 2 ", "multiply", 1, true},
		{"after_nested", "{add (multiply 2 3) ", "add", 1, true},
		{"block_open", "{#each items ", "each", 1, true},
		{"format_spec", "{add 1 2:.2f", "", 0, false},
		{"closed", "{add 1 2} ", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectHelperCall(tt.input, len(tt.input))

			if got.inCall != tt.wantInCall || got.name != tt.wantName ||
				got.argIndex != tt.wantIndex {
				t.Errorf("detectHelperCall(%q) = %+v, want {name:%s argIndex:%d inCall:%v}",
					tt.input, got, tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestArgIndex(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"", 0},
		{" ", 0},
		{" a", 0},
		{" a ", 1},
		{" (f x y) ", 1},
		{" (f x", 0},
		{` "a b" c`, 1},
		{"\ta\tb\t", 2},
	}

	for _, tt := range tests {
		if got := argIndex(tt.s); got != tt.want {
			t.Errorf("argIndex(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}

func TestHelperParams(t *testing.T) {
	reg := tmpl.NewRegistry()
	reg.Register("upper", func([]any, *tmpl.HelperOptions) (any, error) { return nil, nil })

	if params, ok := helperParams(reg, "divide"); !ok || !slices.Equal(params, []string{"a", "b"}) {
		t.Errorf("divide = %v, %v", params, ok)
	}

	if params, ok := helperParams(reg, "upper"); !ok || !slices.Equal(params, []string{"...args"}) {
		t.Errorf("upper = %v, %v", params, ok)
	}

	if _, ok := helperParams(reg, "missing"); ok {
		t.Error("unregistered helper has params")
	}

	// A builtin name overridden by a custom helper keeps its builtin params.
	reg.Register("add", func([]any, *tmpl.HelperOptions) (any, error) { return nil, nil })

	if params, _ := helperParams(reg, "add"); !slices.Equal(params, []string{"a", "b"}) {
		t.Errorf("add = %v", params)
	}
}

func TestRenderSignatureHint(t *testing.T) {
	hint := renderSignatureHint("add", []string{"a", "b"}, 1)
	for _, part := range []string{"add", "a", "b", "{", "}"} {
		if !strings.Contains(hint, part) {
			t.Errorf("hint %q is missing %q", hint, part)
		}
	}

	variadic := renderSignatureHint("upper", []string{"...args"}, 3)
	if want := currentParamStyle.Render("...args"); !strings.Contains(variadic, want) {
		t.Errorf("variadic parameter not highlighted past its position: %q", variadic)
	}

	fixed := renderSignatureHint("if", []string{"condition"}, 2)
	if want := signatureStyle.Render("condition"); !strings.Contains(fixed, want) {
		t.Errorf("fixed parameter highlighted past its position: %q", fixed)
	}
}
