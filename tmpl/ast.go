package tmpl

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Position identifies a location in a format string. Line and Column are
// 1-based; Column counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Node is one element of a parsed [Template]: *TextNode, *ExprNode or
// *BlockNode.
type Node interface {
	Position() Position
	node()
}

// TextNode is literal text copied to the output unchanged.
type TextNode struct {
	Text string
	Pos  Position
}

// ExprNode is a placeholder: an expression with an optional format spec.
type ExprNode struct {
	Expr    Expr
	Spec    string
	HasSpec bool
	Pos     Position
}

// BlockKind identifies the helper behind a [BlockNode].
type BlockKind int

const (
	BlockHelper  BlockKind = iota // helper
	BlockIf                       // if
	BlockUnless                   // unless
	BlockForeach                  // foreach
)

// blockKinds maps built-in block names to their kind. "each" is an alias
// of "foreach".
var blockKinds = map[string]BlockKind{
	"if":      BlockIf,
	"unless":  BlockUnless,
	"foreach": BlockForeach,
	"each":    BlockForeach,
}

// BlockKindFor returns the kind of a block opened as {#name}. Names without
// built-in block semantics are [BlockHelper].
func BlockKindFor(name string) BlockKind { return blockKinds[name] }

// BlockNode is a {#name args}...{else}...{/name} section.
type BlockNode struct {
	Kind    BlockKind
	Name    string
	Args    []Expr
	Then    []Node
	Else    []Node
	HasElse bool
	Pos     Position
}

func (n *TextNode) Position() Position  { return n.Pos }
func (n *ExprNode) Position() Position  { return n.Pos }
func (n *BlockNode) Position() Position { return n.Pos }

func (*TextNode) node()  {}
func (*ExprNode) node()  {}
func (*BlockNode) node() {}

// Expr is an expression inside a placeholder or block opener: *PathExpr,
// *LiteralExpr, *CallExpr or *InvalidExpr.
type Expr interface {
	fmt.Stringer
	expr()
}

// PathExpr is a dotted property path such as point.value, @index or this.x.
type PathExpr struct {
	Path string
}

// LiteralExpr is a number, boolean, null or quoted string constant.
type LiteralExpr struct {
	Value any
	Raw   string
}

// CallExpr invokes a helper. Subexpressions appear as nested CallExpr
// arguments.
type CallExpr struct {
	Name string
	Args []Expr
}

// InvalidExpr holds placeholder content that could not be tokenized. It
// evaluates to an error, which renders empty outside strict mode.
type InvalidExpr struct {
	Source string
	Reason string
}

func (e *PathExpr) String() string    { return e.Path }
func (e *LiteralExpr) String() string { return e.Raw }
func (e *InvalidExpr) String() string { return e.Source }

func (e *CallExpr) String() string {
	var b strings.Builder

	b.WriteByte('(')
	b.WriteString(e.Name)

	for _, a := range e.Args {
		b.WriteByte(' ')
		b.WriteString(a.String())
	}

	b.WriteByte(')')

	return b.String()
}

func (*PathExpr) expr()    {}
func (*LiteralExpr) expr() {}
func (*CallExpr) expr()    {}
func (*InvalidExpr) expr() {}

// Template is a parsed format string. A Template is immutable and safe for
// concurrent use by multiple renders.
type Template struct {
	Source string
	Nodes  []Node
}

// Print writes an indented outline of the node tree to w.
func (t *Template) Print(w io.Writer) error {
	var b strings.Builder

	printNodes(&b, t.Nodes, 0)

	_, err := io.WriteString(w, b.String())

	return err
}

func printNodes(b *strings.Builder, nodes []Node, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, n := range nodes {
		b.WriteString(indent)

		switch n := n.(type) {
		case *TextNode:
			fmt.Fprintf(b, "text %q\n", n.Text)

		case *ExprNode:
			fmt.Fprintf(b, "expr %s", n.Expr)

			if n.HasSpec {
				fmt.Fprintf(b, " spec %q", n.Spec)
			}

			b.WriteByte('\n')

		case *BlockNode:
			fmt.Fprintf(b, "block #%s", n.Name)

			for _, a := range n.Args {
				b.WriteByte(' ')
				b.WriteString(a.String())
			}

			b.WriteByte('\n')
			printNodes(b, n.Then, depth+1)

			if n.HasElse {
				b.WriteString(indent)
				b.WriteString("else\n")
				printNodes(b, n.Else, depth+1)
			}
		}
	}
}
