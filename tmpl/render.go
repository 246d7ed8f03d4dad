package tmpl

import (
	"context"
	"log/slog"
)

// Render compiles format (through the cache) and renders it against data.
// Data must be nil or a map with string keys.
func Render(ctx context.Context, format string, data any, opts ...Option) (string, error) {
	t, err := Compile(ctx, format, opts...)
	if err != nil {
		return "", err
	}

	return t.Execute(ctx, data, opts...)
}

// Format renders format against data with the process-wide configuration.
// Any error, including a malformed format string, yields "".
func Format(format string, data any) string {
	s, err := Render(context.Background(), format, data)
	if err != nil {
		return ""
	}

	return s
}

// Execute renders t against data. The locale and registry are read once at
// the start of the render.
func (t *Template) Execute(ctx context.Context, data any, opts ...Option) (string, error) {
	o := makeOptions(opts...)

	if k := KindOf(data); k != KindNil && k != KindContext {
		return "", ErrInvalidData.With(slog.String("kind", k.String()))
	}

	r := newRenderer(ctx, o)

	if err := r.renderNodes(t.Nodes, NewScope(data)); err != nil {
		o.logger.DebugContext(ctx, "render failed", slog.Any("error", err))

		return "", err
	}

	o.logger.TraceContext(ctx, "render complete",
		slog.Int("output_bytes", r.out.Len()),
		slog.String("decimal_point", r.locale.DecimalPoint),
		slog.String("thousands_sep", r.locale.ThousandsSep))

	return r.out.String(), nil
}
