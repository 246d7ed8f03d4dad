package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tfmt/log"
	"github.com/ardnew/tfmt/tmpl"
)

// dataFlags are the flags shared by commands that build a data context.
type dataFlags struct {
	Data []string `help:"Data context file (YAML or JSON), or '-' for stdin. Later files override earlier keys." placeholder:"FILE" sep:"none" short:"d" type:"path"`
	Set  []string `help:"Set a context value. Literals (numbers, booleans, quoted strings, arrays, maps) are typed; anything else is a string." placeholder:"KEY=VALUE" sep:"none"`
}

// context loads the data files and applies the assignments.
func (f *dataFlags) context(ctx context.Context) (tmpl.Context, error) {
	data, err := loadData(ctx, f.Data)
	if err != nil {
		return nil, err
	}

	for _, assign := range f.Set {
		if err := setValue(data, assign); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// loadData reads each file as a YAML or JSON mapping and merges them in
// order. Nested mappings merge key by key; any other value replaces what
// came before.
func loadData(ctx context.Context, paths []string) (tmpl.Context, error) {
	data := tmpl.Context{}

	for _, path := range uniqueFiles(paths) {
		buf, err := readFile(path)
		if err != nil {
			return nil, ErrReadData.With(slog.String("file", path)).Wrap(err)
		}

		var doc map[string]any
		if err := yaml.Unmarshal(buf, &doc); err != nil {
			return nil, ErrDataFormat.With(slog.String("file", path)).Wrap(err)
		}

		merge(data, doc)

		log.TraceContext(ctx, "data file loaded",
			slog.String("file", path),
			slog.Int("keys", len(doc)),
		)
	}

	return data, nil
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if !ok {
			dst[k] = v

			continue
		}

		cur, ok := dst[k].(map[string]any)
		if !ok {
			cur = make(map[string]any, len(sub))
			dst[k] = cur
		}

		merge(cur, sub)
	}
}

// setValue applies an assignment of the form key.path=value to data,
// creating intermediate mappings as needed.
func setValue(data tmpl.Context, assign string) error {
	key, raw, ok := strings.Cut(assign, "=")
	if !ok || key == "" {
		return ErrSetValue.With(slog.String("assignment", assign))
	}

	path := strings.Split(key, ".")
	if strings.Contains(key, "..") || path[0] == "" || path[len(path)-1] == "" {
		return ErrSetValue.With(slog.String("assignment", assign))
	}

	m := map[string]any(data)

	for _, seg := range path[:len(path)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[seg] = next
		}

		m = next
	}

	m[path[len(path)-1]] = parseValue(raw)

	return nil
}

// parseValue evaluates raw as a literal: a number, boolean, null, quoted
// string, or an array or map of literals. Anything else, including
// identifiers and arithmetic such as 2024-01-01, is the string raw.
func parseValue(raw string) any {
	tree, err := parser.Parse(raw)
	if err != nil || !literal(tree.Node) {
		return raw
	}

	v, err := expr.Eval(raw, nil)
	if err != nil {
		return raw
	}

	return v
}

func literal(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.StringNode, *ast.NilNode:
		return true

	case *ast.UnaryNode:
		return (n.Operator == "-" || n.Operator == "+") && literal(n.Node)

	case *ast.ArrayNode:
		for _, elem := range n.Nodes {
			if !literal(elem) {
				return false
			}
		}

		return true

	case *ast.MapNode:
		for _, p := range n.Pairs {
			pair, ok := p.(*ast.PairNode)
			if !ok || !literal(pair.Key) || !literal(pair.Value) {
				return false
			}
		}

		return true
	}

	return false
}
