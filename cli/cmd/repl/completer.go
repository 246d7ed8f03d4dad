package repl

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/tfmt/tmpl"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "helpers", "edit", "clear", "quit"}

// scopeNames are the names every placeholder can resolve besides the
// context keys.
var scopeNames = []string{"this", "@index", "@first", "@last"}

// isWordBoundary returns true if the rune delimits a path or helper name
// inside a placeholder.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'{', '}', '(', ')',
		'#', '/', ':',
		'"', '\'':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor position and its byte
// boundaries within input. It returns an empty word when the cursor sits on
// a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// placeholder locates the expression enclosing the cursor. It returns the
// byte offset just past the opening brace and any '#' or '/' marker, and
// false when the cursor is in literal text or inside a format spec.
func placeholder(input string, cursor int) (start int, ok bool) {
	cursor = min(cursor, len(input))

	open := strings.LastIndexByte(input[:cursor], '{')
	if open < 0 || strings.IndexByte(input[open:cursor], '}') >= 0 {
		return 0, false
	}

	start = open + 1
	if start < cursor && (input[start] == '#' || input[start] == '/') {
		start++
	}

	var (
		quote byte
		depth int
	)

	for i := start; i < cursor; i++ {
		c := input[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}

		case c == '"' || c == '\'':
			quote = c

		case c == '(':
			depth++

		case c == ')':
			depth--

		case c == ':' && depth <= 0:
			return 0, false
		}
	}

	return start, quote == 0
}

// parentPath returns the dot-separated path leading up to the word starting
// at wordStart. For input "{user.addr.ci" and the word "ci", the parent path
// is "user.addr". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return prefix[pos:]
}

// childCandidates returns the completions available under parent: the
// context keys, helper names and scope names at the top level, or the keys
// of the mapping parent resolves to.
func childCandidates(data tmpl.Context, reg *tmpl.Registry, parent string) []string {
	if parent == "" {
		names := slices.Sorted(maps.Keys(data))
		names = append(names, reg.Names()...)

		return append(names, scopeNames...)
	}

	v := lookup(data, parent)

	switch tmpl.KindOf(v) {
	case tmpl.KindContext:
		return contextKeys(v)

	case tmpl.KindString, tmpl.KindSequence:
		return []string{"length"}
	}

	return nil
}

// contextKeys returns the sorted keys of a string-keyed map.
func contextKeys(v any) []string {
	rv := reflect.ValueOf(v)
	keys := make([]string, 0, rv.Len())

	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}

	slices.Sort(keys)

	return keys
}

// lookup walks a dotted path through nested mappings and sequences.
func lookup(data tmpl.Context, path string) any {
	v, err := tmpl.NewScope(data).Resolve(path)
	if err != nil {
		return nil
	}

	return v
}

// computeMatches calculates the fuzzy matches for the word at the cursor,
// ranked best first. Outside a placeholder there are none in template mode.
// An empty word after a dot matches every child so members can be browsed.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		return fuzzy.Find(word, ctrlCommands), ctrlCommands, wordStart, wordEnd
	}

	if _, ok := placeholder(input, cursor); !ok {
		return nil, nil, wordStart, wordEnd
	}

	parent := parentPath(input, wordStart)
	candidates = childCandidates(m.data, m.registry, parent)

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		if parent == "" {
			return nil, nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isHelper func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, isHelper(match.Str))

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters
// highlighted. Helpers use their own color.
func renderCandidate(match fuzzy.Match, selected, helper bool) string {
	baseStyle := suggestionStyle
	if helper {
		baseStyle = helperStyle
	}

	highlight := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlight = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}

// previewLimit bounds the length of value previews in the list command.
const previewLimit = 40

// formatPreview returns a short description of a context value.
func formatPreview(v any) string {
	switch tmpl.KindOf(v) {
	case tmpl.KindContext:
		return fmt.Sprintf("{ %d keys }", reflect.ValueOf(v).Len())

	case tmpl.KindSequence:
		return fmt.Sprintf("[ %d items ]", reflect.ValueOf(v).Len())

	case tmpl.KindUnsafe:
		return "<unsafe>"
	}

	s, err := tmpl.FormatValue(v, "", tmpl.CurrentLocale())
	if err != nil {
		return "<" + err.Error() + ">"
	}

	if tmpl.KindOf(v) == tmpl.KindString {
		s = fmt.Sprintf("%q", s)
	}

	if len(s) > previewLimit {
		return s[:previewLimit-3] + "..."
	}

	return s
}
