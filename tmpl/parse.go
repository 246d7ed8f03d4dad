package tmpl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/tfmt/log"
)

// Parse parses a format string into a [Template] without consulting the
// cache. Only [WithMaxDepth] and [WithLogger] affect parsing.
func Parse(ctx context.Context, s string, opts ...Option) (*Template, error) {
	return parse(ctx, s, makeOptions(opts...))
}

func parse(ctx context.Context, s string, o options) (*Template, error) {
	p := &parser{
		input:    s,
		line:     1,
		col:      1,
		maxDepth: o.maxDepth,
		logger:   o.logger,
	}

	nodes, end, err := p.parseNodes()
	if err != nil {
		return nil, err
	}

	if end != nil {
		if end.isElse {
			return nil, p.errorf(ErrUnbalanced, end.pos, "{else} outside of a block")
		}

		return nil, p.errorf(ErrUnbalanced, end.pos, "{/%s} without matching opener", end.name)
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("source_bytes", len(s)),
		slog.Int("node_count", len(nodes)))

	return &Template{Source: s, Nodes: nodes}, nil
}

// parser holds the parser state.
type parser struct {
	input    string
	pos      int
	line     int
	col      int
	depth    int
	maxDepth int
	logger   log.Logger
}

// endTag is a structural tag that terminates a node sequence.
type endTag struct {
	name   string
	pos    Position
	isElse bool
}

func (p *parser) errorf(kind *Error, pos Position, format string, args ...any) *ParseError {
	return newParseError(kind, pos, p.input, fmt.Sprintf(format, args...))
}

// parseNodes reads nodes until end of input or a structural tag ({else} or
// {/name}), which is returned to the caller.
func (p *parser) parseNodes() ([]Node, *endTag, error) {
	var (
		nodes   []Node
		text    strings.Builder
		textPos Position
	)

	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, &TextNode{Text: text.String(), Pos: textPos})
			text.Reset()
		}
	}

	literal := func(r rune) {
		if text.Len() == 0 {
			textPos = p.position()
		}

		text.WriteRune(r)
		p.advance()
	}

	for !p.eof() {
		if p.peek() != '{' {
			literal(p.peek())

			continue
		}

		start := p.position()
		rest := p.input[p.pos+1:]

		end := strings.IndexAny(rest, "{}")
		if end < 0 {
			return nil, nil, p.errorf(ErrUnterminated, start, "missing closing brace")
		}

		// Another opening brace before the closing one makes this brace
		// plain text.
		if rest[end] == '{' {
			literal('{')

			continue
		}

		content := rest[:end]
		p.skip(len(content) + 2)

		trimmed := strings.TrimSpace(content)

		switch {
		case trimmed == "else":
			flush()

			return nodes, &endTag{isElse: true, pos: start}, nil

		case strings.HasPrefix(trimmed, "/"):
			flush()

			return nodes, &endTag{name: strings.TrimSpace(trimmed[1:]), pos: start}, nil

		case strings.HasPrefix(trimmed, "#"):
			flush()

			block, err := p.parseBlock(trimmed[1:], start)
			if err != nil {
				return nil, nil, err
			}

			nodes = append(nodes, block)

		default:
			flush()

			node, err := p.parsePlaceholder(content, start)
			if err != nil {
				return nil, nil, err
			}

			nodes = append(nodes, node)
		}
	}

	flush()

	return nodes, nil, nil
}

// parseBlock parses a block whose opener "{#header}" has been consumed.
func (p *parser) parseBlock(header string, start Position) (*BlockNode, error) {
	name, argSrc := splitWord(header)
	if name == "" {
		return nil, p.errorf(ErrParse, start, "missing block name")
	}

	if p.depth+1 > p.maxDepth {
		return nil, p.errorf(ErrMaxDepthExceeded, start,
			"block nesting exceeds %d", p.maxDepth)
	}

	args, err := parseArgs(argSrc, p.maxDepth)
	if errors.Is(err, errTooDeep) {
		return nil, p.errorf(ErrMaxDepthExceeded, start,
			"subexpression nesting exceeds %d", p.maxDepth)
	}

	if err != nil {
		args = []Expr{&InvalidExpr{Source: argSrc, Reason: err.Error()}}
	}

	block := &BlockNode{
		Kind: blockKinds[name],
		Name: name,
		Args: args,
		Pos:  start,
	}

	p.depth++
	defer func() { p.depth-- }()

	then, end, err := p.parseNodes()
	if err != nil {
		return nil, err
	}

	block.Then = then

	if end != nil && end.isElse {
		block.HasElse = true

		block.Else, end, err = p.parseNodes()
		if err != nil {
			return nil, err
		}

		if end != nil && end.isElse {
			return nil, p.errorf(ErrUnbalanced, end.pos, "second {else} in {#%s}", name)
		}
	}

	if end == nil {
		return nil, p.errorf(ErrUnbalanced, start, "{#%s} is never closed", name)
	}

	if end.name != name {
		return nil, p.errorf(ErrUnbalanced, end.pos,
			"{/%s} does not close {#%s} opened at %s", end.name, name, start)
	}

	return block, nil
}

// parsePlaceholder parses the content of a {...} expression. Content that
// cannot be tokenized becomes an [InvalidExpr].
func (p *parser) parsePlaceholder(content string, start Position) (*ExprNode, error) {
	src, spec, hasSpec := splitSpec(content)

	expr, err := parseExpr(strings.TrimSpace(src), p.maxDepth)
	if errors.Is(err, errTooDeep) {
		return nil, p.errorf(ErrMaxDepthExceeded, start,
			"subexpression nesting exceeds %d", p.maxDepth)
	}

	if err != nil {
		return &ExprNode{
			Expr: &InvalidExpr{Source: content, Reason: err.Error()},
			Pos:  start,
		}, nil
	}

	return &ExprNode{Expr: expr, Spec: spec, HasSpec: hasSpec, Pos: start}, nil
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])

	return r
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

// skip advances over n bytes.
func (p *parser) skip(n int) {
	for end := p.pos + n; p.pos < end && !p.eof(); {
		p.advance()
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{Offset: p.pos, Line: p.line, Column: p.col}
}

// splitWord splits s into its first whitespace-delimited word and the rest.
func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)

	i := strings.IndexFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == '(' })
	if i < 0 {
		return s, ""
	}

	return s[:i], strings.TrimSpace(s[i:])
}

// splitSpec splits placeholder content at the first colon outside
// parentheses and quotes.
func splitSpec(content string) (string, string, bool) {
	var (
		depth int
		quote byte
	)

	for i := 0; i < len(content); i++ {
		c := content[i]

		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ':' && depth <= 0:
			return content[:i], content[i+1:], true
		}
	}

	return content, "", false
}
