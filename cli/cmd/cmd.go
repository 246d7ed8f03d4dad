package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tfmt/tmpl"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type engineKey struct{}

// WithEngine returns a new context.Context carrying the options every
// command passes to the template engine.
func WithEngine(ctx context.Context, opts ...tmpl.Option) context.Context {
	return context.WithValue(ctx, engineKey{}, opts)
}

func engineFrom(ctx context.Context) []tmpl.Option {
	opts, _ := ctx.Value(engineKey{}).([]tmpl.Option)

	return opts
}

// stdout returns the kong context's standard output, or [os.Stdout].
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// kongVar returns a kong interpolation variable, or "" when ctx carries no
// kong context or the variable is undefined.
func kongVar(ctx context.Context, name string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[name]
}
