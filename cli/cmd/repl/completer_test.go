package repl

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/tfmt/log"
	"github.com/ardnew/tfmt/tmpl"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"after_brace", "{foo", 4, "foo", 1, 4},
		{"dot_separated", "{user.na", 8, "na", 6, 8},
		{"helper_arg", "{add 1 fo", 9, "fo", 7, 9},
		{"after_paren", "{(mul", 5, "mul", 2, 5},
		{"block_open", "{#each it", 9, "it", 7, 9},
		{"scope_name", "{@ind", 5, "@ind", 1, 5},
		{"mid_word", "{foobar}", 3, "foobar", 1, 7},
		// Hyphens are part of keys, not word boundaries.
		{"hyphenated", "{log-level", 10, "log-level", 1, 10},
		// After dot is an empty word (for triggering child completions).
		{"empty_after_dot", "{user.", 6, "", 6, 6},
		{"cursor_past_end", "{ab", 99, "ab", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		start  int
		ok     bool
	}{
		{"literal", "plain", 5, 0, false},
		{"open", "{a", 2, 1, true},
		{"closed", "{a} b", 5, 0, false},
		{"second", "{a}{b", 5, 4, true},
		{"block_open", "{#if x", 6, 2, true},
		{"block_close", "{/if", 4, 2, true},
		{"bare_marker", "{#", 2, 2, true},
		{"format_spec", "{a:,.2f", 7, 0, false},
		{"quoted_colon", "{(f 'x:y') ", 11, 1, true},
		{"paren_colon", "{(f a:b", 7, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, ok := placeholder(tt.input, tt.cursor)
			if ok != tt.ok || (ok && start != tt.start) {
				t.Errorf("placeholder(%q, %d) = %d, %v, want %d, %v",
					tt.input, tt.cursor, start, ok, tt.start, tt.ok)
			}
		})
	}

	if _, ok := placeholder("{add 'op", 8); ok {
		t.Error("cursor inside an open quote reported as completable")
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "{fo", 1, ""},
		{"simple_chain", "{user.addr.ci", 11, "user.addr"},
		{"helper_arg", "{add x.", 7, "x"},
		{"after_paren", "{(a.b.", 6, "a.b"},
		{"block_arg", "{#each user.tags.", 17, "user.tags"},
		{"hyphenated_chain", "{config.log-level.", 18, "config.log-level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func testData() tmpl.Context {
	return tmpl.Context{
		"n": 1,
		"user": tmpl.Context{
			"name": "ada",
			"tags": []any{"x", "y"},
		},
	}
}

func TestChildCandidates(t *testing.T) {
	reg := tmpl.NewRegistry()
	data := testData()

	top := childCandidates(data, reg, "")

	want := slices.Concat([]string{"n", "user"}, reg.Names(), scopeNames)
	if !slices.Equal(top, want) {
		t.Errorf("top level = %v, want %v", top, want)
	}

	tests := []struct {
		parent string
		want   []string
	}{
		{"user", []string{"name", "tags"}},
		{"user.name", []string{"length"}},
		{"user.tags", []string{"length"}},
		{"n", nil},
		{"missing", nil},
	}

	for _, tt := range tests {
		if got := childCandidates(data, reg, tt.parent); !slices.Equal(got, tt.want) {
			t.Errorf("childCandidates(%q) = %v, want %v", tt.parent, got, tt.want)
		}
	}
}

func TestFormatPreview(t *testing.T) {
	long := strings.Repeat("x", 50)

	tests := []struct {
		value any
		want  string
	}{
		{tmpl.Context{"a": 1}, "{ 1 keys }"},
		{[]any{1, 2}, "[ 2 items ]"},
		{"hi", `"hi"`},
		{3, "3"},
		{true, "true"},
		{nil, ""},
		{func() {}, "<unsafe>"},
		{long, `"` + strings.Repeat("x", 36) + "..."},
	}

	for _, tt := range tests {
		if got := formatPreview(tt.value); got != tt.want {
			t.Errorf("formatPreview(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func newTestModel(t *testing.T, data tmpl.Context) model {
	t.Helper()

	history := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	return newModel(context.Background(), data, history, log.Logger{})
}

func (m model) withInput(s string) model {
	m.input.SetValue(s)
	m.input.SetCursor(len(s))

	return m
}

func matchStrings(m model) []string {
	matches, _, _, _ := m.computeMatches()

	names := make([]string, len(matches))
	for i, match := range matches {
		names[i] = match.Str
	}

	return names
}

func TestComputeMatches(t *testing.T) {
	m := newTestModel(t, testData())

	got := matchStrings(m.withInput("{us"))
	if !slices.Contains(got, "user") || slices.Contains(got, "add") {
		t.Errorf("{us matches = %v", got)
	}

	if got := matchStrings(m.withInput("{user.")); !slices.Equal(got, []string{"name", "tags"}) {
		t.Errorf("{user. matches = %v", got)
	}

	if got := matchStrings(m.withInput("us")); len(got) > 0 {
		t.Errorf("literal text matches = %v", got)
	}

	if got := matchStrings(m.withInput("{")); len(got) > 0 {
		t.Errorf("empty top-level word matches = %v", got)
	}

	m, _ = m.switchToMode(modeCtrl)

	got = matchStrings(m.withInput("hel"))
	if !slices.Contains(got, "help") || !slices.Contains(got, "helpers") || len(got) != 2 {
		t.Errorf("ctrl matches = %v", got)
	}
}

func TestModel_Render(t *testing.T) {
	m := newTestModel(t, testData())

	tests := []struct {
		input string
		want  string
	}{
		{"{n:.1f}", "1.0"},
		{"{user.name} has {user.tags.length}", "ada has 2"},
		{"{#each user.tags}{this}{/each}", "xy"},
	}

	for _, tt := range tests {
		got, err := m.render(tt.input)
		if err != nil || got != tt.want {
			t.Errorf("render(%q) = %q, %v, want %q", tt.input, got, err, tt.want)
		}
	}

	if _, err := m.render("{#if n}"); err == nil {
		t.Error("unbalanced block rendered without error")
	}
}

func TestModel_SwitchMode(t *testing.T) {
	m := newTestModel(t, nil).withInput("{a}")

	m, _ = m.toggleMode()
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("after toggle: mode=%v input=%q", m.mode, m.input.Value())
	}

	m = m.withInput("he")

	m, _ = m.toggleMode()
	if m.mode != modeTmpl || m.input.Value() != "{a}" {
		t.Errorf("template input not restored: %q", m.input.Value())
	}

	m, _ = m.toggleMode()
	if m.input.Value() != "he" {
		t.Errorf("command input not restored: %q", m.input.Value())
	}
}
