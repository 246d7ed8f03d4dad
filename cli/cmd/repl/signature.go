package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/tfmt/tmpl"
)

// builtinParams names the parameters of the built-in helpers.
var builtinParams = map[string][]string{
	"add":      {"a", "b"},
	"subtract": {"a", "b"},
	"multiply": {"a", "b"},
	"divide":   {"a", "b"},
	"eq":       {"a", "b"},
	"ne":       {"a", "b"},
	"gt":       {"a", "b"},
	"ge":       {"a", "b"},
	"lt":       {"a", "b"},
	"le":       {"a", "b"},
	"if":       {"condition"},
	"unless":   {"condition"},
	"foreach":  {"sequence", "trailing"},
	"each":     {"sequence", "trailing"},
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// helperCall describes the helper invocation enclosing the cursor.
type helperCall struct {
	name     string
	argIndex int // 0-based index of the argument under the cursor
	inCall   bool
}

// detectHelperCall reports whether the cursor sits among the arguments of a
// helper call, either directly inside a placeholder ({add 1 |}) or inside a
// parenthesized subexpression ({add (multiply 2 |) 1}).
func detectHelperCall(input string, cursor int) helperCall {
	start, ok := placeholder(input, cursor)
	if !ok {
		return helperCall{}
	}

	cursor = min(cursor, len(input))

	// Find the innermost unclosed '(' after the placeholder start.
	depth := 0

	for i := cursor - 1; i >= start; i-- {
		if input[i] == ')' {
			depth++

			continue
		}

		if input[i] == '(' {
			if depth == 0 {
				start = i + 1

				break
			}

			depth--
		}
	}

	body := input[start:cursor]
	trimmed := strings.TrimLeft(body, " \t")

	nameEnd := strings.IndexAny(trimmed, " \t")
	if nameEnd <= 0 {
		return helperCall{}
	}

	return helperCall{
		name:     trimmed[:nameEnd],
		argIndex: argIndex(trimmed[nameEnd:]),
		inCall:   true,
	}
}

// argIndex counts the top-level arguments in s, which starts just after a
// helper name. Trailing whitespace means the cursor begins a new argument.
func argIndex(s string) int {
	var (
		started int
		depth   int
		quote   byte
		inArg   bool
	)

	for i := range len(s) {
		c := s[i]

		if quote != 0 {
			if c == quote {
				quote = 0
			}

			continue
		}

		if depth == 0 {
			if c == ' ' || c == '\t' {
				inArg = false

				continue
			}

			if !inArg {
				started++
				inArg = true
			}
		}

		switch c {
		case '"', '\'':
			quote = c

		case '(':
			depth++

		case ')':
			depth--
		}
	}

	if inArg {
		return started - 1
	}

	return started
}

// helperParams returns the parameter names of a registered helper, or
// false when name is not registered. Helpers without known parameters take
// "...args".
func helperParams(reg *tmpl.Registry, name string) ([]string, bool) {
	if _, ok := reg.Lookup(name); !ok {
		return nil, false
	}

	if params, ok := builtinParams[name]; ok && tmpl.IsBuiltin(name) {
		return params, true
	}

	return []string{"...args"}, true
}

// renderSignatureHint renders {name params} with the current parameter
// highlighted. A variadic parameter stays highlighted for every argument at
// or past its position.
func renderSignatureHint(name string, params []string, current int) string {
	var b strings.Builder

	b.WriteString(signatureStyle.Render("{"))
	b.WriteString(signatureNameStyle.Render(name))

	for i, param := range params {
		b.WriteString(signatureStyle.Render(" "))

		variadic := strings.HasPrefix(param, "...")
		if (variadic && current >= i) || (!variadic && current == i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render("}"))

	return b.String()
}
