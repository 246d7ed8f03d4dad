package tmpl

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var errTooDeep = errors.New("subexpressions nested too deeply")

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokOpen
	tokClose
)

type token struct {
	text string
	kind tokenKind
}

// tokenize splits expression source into words, quoted strings and
// parentheses.
func tokenize(src string) ([]token, error) {
	var toks []token

	rs := []rune(src)

	for i := 0; i < len(rs); {
		r := rs[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			toks = append(toks, token{text: "(", kind: tokOpen})
			i++

		case r == ')':
			toks = append(toks, token{text: ")", kind: tokClose})
			i++

		case r == '"' || r == '\'':
			var b strings.Builder

			j := i + 1
			for ; j < len(rs) && rs[j] != r; j++ {
				if rs[j] == '\\' && j+1 < len(rs) {
					j++
				}

				b.WriteRune(rs[j])
			}

			if j >= len(rs) {
				return nil, errors.New("unterminated string literal")
			}

			toks = append(toks, token{text: b.String(), kind: tokString})
			i = j + 1

		default:
			j := i
			for j < len(rs) && !unicode.IsSpace(rs[j]) &&
				!strings.ContainsRune(`()"'`, rs[j]) {
				j++
			}

			toks = append(toks, token{text: string(rs[i:j]), kind: tokWord})
			i = j
		}
	}

	return toks, nil
}

type exprParser struct {
	toks     []token
	pos      int
	depth    int
	maxDepth int
}

// parseExpr parses the expression of a placeholder. A leading bare word
// followed by arguments is a helper call.
func parseExpr(src string, maxDepth int) (Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	if len(toks) == 0 {
		return nil, errors.New("empty expression")
	}

	ep := &exprParser{toks: toks, maxDepth: maxDepth}

	if len(toks) > 1 && toks[0].kind == tokWord && literalWord(toks[0].text) == nil {
		ep.pos = 1

		args, err := ep.parseRest()
		if err != nil {
			return nil, err
		}

		return &CallExpr{Name: toks[0].text, Args: args}, nil
	}

	e, err := ep.parseArg()
	if err != nil {
		return nil, err
	}

	if ep.pos != len(toks) {
		return nil, errors.New("unexpected " + strconv.Quote(toks[ep.pos].text))
	}

	return e, nil
}

// parseArgs parses a whitespace-separated argument list.
func parseArgs(src string, maxDepth int) ([]Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	ep := &exprParser{toks: toks, maxDepth: maxDepth}

	return ep.parseRest()
}

func (ep *exprParser) parseRest() ([]Expr, error) {
	var args []Expr

	for ep.pos < len(ep.toks) {
		a, err := ep.parseArg()
		if err != nil {
			return nil, err
		}

		args = append(args, a)
	}

	return args, nil
}

func (ep *exprParser) parseArg() (Expr, error) {
	if ep.pos >= len(ep.toks) {
		return nil, errors.New("unexpected end of expression")
	}

	tok := ep.toks[ep.pos]
	ep.pos++

	switch tok.kind {
	case tokString:
		return &LiteralExpr{Value: tok.text, Raw: quote(tok.text)}, nil

	case tokClose:
		return nil, errors.New(`unexpected ")"`)

	case tokOpen:
		return ep.parseCall()
	}

	if lit := literalWord(tok.text); lit != nil {
		return lit, nil
	}

	return &PathExpr{Path: tok.text}, nil
}

// parseCall parses "name args... )" after an opening parenthesis.
func (ep *exprParser) parseCall() (Expr, error) {
	ep.depth++
	defer func() { ep.depth-- }()

	if ep.depth > ep.maxDepth {
		return nil, errTooDeep
	}

	if ep.pos >= len(ep.toks) || ep.toks[ep.pos].kind != tokWord {
		return nil, errors.New("subexpression must begin with a helper name")
	}

	call := &CallExpr{Name: ep.toks[ep.pos].text}
	ep.pos++

	for {
		if ep.pos >= len(ep.toks) {
			return nil, errors.New(`missing ")"`)
		}

		if ep.toks[ep.pos].kind == tokClose {
			ep.pos++

			return call, nil
		}

		a, err := ep.parseArg()
		if err != nil {
			return nil, err
		}

		call.Args = append(call.Args, a)
	}
}

var numberLiteral = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// literalWord returns the literal denoted by a bare word, or nil when the
// word is a path.
func literalWord(w string) *LiteralExpr {
	switch w {
	case "true":
		return &LiteralExpr{Value: true, Raw: w}
	case "false":
		return &LiteralExpr{Value: false, Raw: w}
	case "null":
		return &LiteralExpr{Value: nil, Raw: w}
	}

	if numberLiteral.MatchString(w) {
		if f, err := strconv.ParseFloat(w, 64); err == nil {
			return &LiteralExpr{Value: f, Raw: w}
		}
	}

	return nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote renders s as a string literal that tokenize reads back as s.
func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}
