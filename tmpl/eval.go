package tmpl

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// renderer holds the state of one render.
type renderer struct {
	ctx      context.Context
	opts     options
	registry *Registry
	locale   Locale
	out      *strings.Builder
	base     int // bytes already produced by enclosing captures
	depth    int // block nesting
	calls    int // helper call nesting
}

func newRenderer(ctx context.Context, o options) *renderer {
	r := &renderer{
		ctx:      ctx,
		opts:     o,
		registry: o.registry,
		out:      &strings.Builder{},
	}

	if r.registry == nil {
		r.registry = DefaultRegistry()
	}

	if o.locale != nil {
		r.locale = *o.locale
	} else {
		r.locale = CurrentLocale()
	}

	return r
}

func (r *renderer) write(s string) error {
	if r.opts.maxOutput > 0 && r.base+r.out.Len()+len(s) > r.opts.maxOutput {
		return ErrMaxOutputExceeded.With(slog.Int("limit", r.opts.maxOutput))
	}

	r.out.WriteString(s)

	return nil
}

// capture renders nodes into a fresh buffer and returns its content. Bytes
// written by the capture count against the output limit.
func (r *renderer) capture(nodes []Node, scope *Scope) (string, error) {
	saved, savedBase := r.out, r.base

	r.base += r.out.Len()
	r.out = &strings.Builder{}

	defer func() { r.out, r.base = saved, savedBase }()

	if err := r.renderNodes(nodes, scope); err != nil {
		return "", err
	}

	return r.out.String(), nil
}

// suppress decides the fate of an error raised while evaluating one
// expression. Limits and cancellation always propagate; other errors
// propagate only in strict mode and are otherwise logged and dropped.
func (r *renderer) suppress(err error, n Node) error {
	if err == nil {
		return nil
	}

	if fatal(err) || r.opts.strict {
		return err
	}

	r.opts.logger.TraceContext(r.ctx, "expression suppressed",
		slog.String("pos", n.Position().String()),
		slog.Any("error", err))

	return nil
}

func fatal(err error) bool {
	return errors.Is(err, ErrMaxDepthExceeded) ||
		errors.Is(err, ErrMaxOutputExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (r *renderer) renderNodes(nodes []Node, scope *Scope) error {
	for _, n := range nodes {
		if err := r.ctx.Err(); err != nil {
			return err
		}

		var err error

		switch n := n.(type) {
		case *TextNode:
			err = r.write(n.Text)
		case *ExprNode:
			err = r.renderExpr(n, scope)
		case *BlockNode:
			err = r.renderBlock(n, scope)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (r *renderer) renderExpr(n *ExprNode, scope *Scope) error {
	v, err := r.eval(n.Expr, scope)
	if err != nil {
		return r.suppress(err, n)
	}

	s, err := FormatValue(v, n.Spec, r.locale)
	if err != nil {
		return r.suppress(err, n)
	}

	return r.write(s)
}

func (r *renderer) renderBlock(n *BlockNode, scope *Scope) error {
	r.depth++
	defer func() { r.depth-- }()

	if r.depth > r.opts.maxDepth {
		return ErrMaxDepthExceeded.With(
			slog.Int("limit", r.opts.maxDepth),
			slog.String("pos", n.Pos.String()))
	}

	args := make([]any, len(n.Args))

	for i, a := range n.Args {
		v, err := r.eval(a, scope)
		if err = r.suppress(err, n); err != nil {
			return err
		}

		args[i] = v
	}

	helper, ok := r.registry.Lookup(n.Name)
	if !ok {
		return r.suppress(ErrUnknownHelper.With(slog.String("helper", n.Name)), n)
	}

	result, err := helper(args, &HelperOptions{Name: n.Name, r: r, scope: scope, block: n})
	if err != nil {
		return r.suppress(err, n)
	}

	switch result := result.(type) {
	case bool:
		branch := n.Then
		if !result {
			branch = n.Else
		}

		return r.renderNodes(branch, scope)

	case string:
		return r.write(result)
	}

	s, err := FormatValue(result, "", r.locale)
	if err != nil {
		return r.suppress(err, n)
	}

	return r.write(s)
}

// eval evaluates an expression. Arguments are evaluated left to right and
// the first error aborts the enclosing call.
func (r *renderer) eval(e Expr, scope *Scope) (any, error) {
	switch e := e.(type) {
	case *PathExpr:
		if r.isHelperCall(e, scope) {
			return r.call(&CallExpr{Name: e.Path}, scope)
		}

		return scope.Resolve(e.Path)

	case *LiteralExpr:
		return e.Value, nil

	case *InvalidExpr:
		return nil, ErrInvalidExpression.With(
			slog.String("source", e.Source),
			slog.String("reason", e.Reason))

	case *CallExpr:
		return r.call(e, scope)
	}

	return nil, ErrInvalidExpression
}

// isHelperCall reports whether a bare word names a registered helper rather
// than a value. Bound names win, so data keys shadow helpers.
func (r *renderer) isHelperCall(e *PathExpr, scope *Scope) bool {
	if e.Path == "this" || strings.ContainsAny(e.Path, ".@") {
		return false
	}

	if _, bound := scope.binding(e.Path); bound {
		return false
	}

	_, ok := r.registry.Lookup(e.Path)

	return ok
}

func (r *renderer) call(e *CallExpr, scope *Scope) (any, error) {
	r.calls++
	defer func() { r.calls-- }()

	if r.calls > r.opts.maxDepth {
		return nil, ErrMaxDepthExceeded.With(slog.Int("limit", r.opts.maxDepth))
	}

	helper, ok := r.registry.Lookup(e.Name)
	if !ok {
		return nil, ErrUnknownHelper.With(slog.String("helper", e.Name))
	}

	args := make([]any, len(e.Args))

	for i, a := range e.Args {
		v, err := r.eval(a, scope)
		if err != nil {
			return nil, err
		}

		if KindOf(v) == KindUnsafe {
			return nil, ErrUnsafeAccess.With(slog.String("helper", e.Name))
		}

		args[i] = v
	}

	v, err := helper(args, &HelperOptions{Name: e.Name, r: r, scope: scope})
	if err != nil {
		return nil, WrapError(err).With(slog.String("helper", e.Name))
	}

	return v, nil
}
