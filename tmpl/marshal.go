package tmpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// String returns the canonical format string of t. Parsing the result
// yields a structurally identical Template.
func (t *Template) String() string {
	var b strings.Builder

	writeSource(&b, t.Nodes)

	return b.String()
}

func writeSource(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *TextNode:
			b.WriteString(n.Text)

		case *ExprNode:
			b.WriteByte('{')
			b.WriteString(topLevelSource(n.Expr))

			if n.HasSpec {
				b.WriteByte(':')
				b.WriteString(n.Spec)
			}

			b.WriteByte('}')

		case *BlockNode:
			b.WriteString("{#")
			b.WriteString(n.Name)

			for _, a := range n.Args {
				b.WriteByte(' ')
				b.WriteString(a.String())
			}

			b.WriteByte('}')
			writeSource(b, n.Then)

			if n.HasElse {
				b.WriteString("{else}")
				writeSource(b, n.Else)
			}

			b.WriteString("{/")
			b.WriteString(n.Name)
			b.WriteByte('}')
		}
	}
}

// topLevelSource renders a placeholder's expression without the
// parentheses that a top-level helper call does not need. Calls without
// arguments, named like a literal, or named like a block tag keep them.
func topLevelSource(e Expr) string {
	call, ok := e.(*CallExpr)
	if !ok || len(call.Args) == 0 || literalWord(call.Name) != nil ||
		strings.HasPrefix(call.Name, "#") || strings.HasPrefix(call.Name, "/") {
		return e.String()
	}

	s := call.String()

	return s[1 : len(s)-1]
}

// ToNative converts the node tree into maps and slices suitable for
// generic encoders.
func (t *Template) ToNative() []any {
	return nodesToNative(t.Nodes)
}

// MarshalJSON implements [json.Marshaler].
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToNative())
}

func nodesToNative(nodes []Node) []any {
	out := make([]any, 0, len(nodes))

	for _, n := range nodes {
		out = append(out, nodeToNative(n))
	}

	return out
}

func nodeToNative(n Node) map[string]any {
	pos := n.Position().String()

	switch n := n.(type) {
	case *TextNode:
		return map[string]any{"text": n.Text, "pos": pos}

	case *ExprNode:
		m := map[string]any{"expr": exprToNative(n.Expr), "pos": pos}
		if n.HasSpec {
			m["spec"] = n.Spec
		}

		return m

	case *BlockNode:
		args := make([]any, 0, len(n.Args))
		for _, a := range n.Args {
			args = append(args, exprToNative(a))
		}

		m := map[string]any{
			"block": n.Name,
			"kind":  n.Kind.String(),
			"args":  args,
			"then":  nodesToNative(n.Then),
			"pos":   pos,
		}
		if n.HasElse {
			m["else"] = nodesToNative(n.Else)
		}

		return m
	}

	return nil
}

func exprToNative(e Expr) any {
	switch e := e.(type) {
	case *PathExpr:
		return map[string]any{"path": e.Path}

	case *LiteralExpr:
		return map[string]any{"literal": e.Value}

	case *CallExpr:
		args := make([]any, 0, len(e.Args))
		for _, a := range e.Args {
			args = append(args, exprToNative(a))
		}

		return map[string]any{"call": e.Name, "args": args}

	case *InvalidExpr:
		return map[string]any{"invalid": e.Source, "reason": e.Reason}
	}

	return nil
}

// FormatJSON writes the node tree as JSON, indented when indent > 0.
func (t *Template) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(t.ToNative(), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(t.ToNative())
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the node tree as YAML, in flow style when indent <= 0.
func (t *Template) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, t.ToNative(), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}
