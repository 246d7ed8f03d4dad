package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/tfmt/log"
	"github.com/ardnew/tfmt/tmpl"
)

// Render renders format strings against a data context.
type Render struct {
	Input dataFlags `embed:""`

	Templates []string `help:"Read a template from file, or '-' for stdin" name:"template" placeholder:"FILE" sep:"none" short:"t" type:"path"`
	Watch     bool     `help:"Render again whenever a template or data file changes" short:"w"`

	Formats []string `arg:"" help:"Format strings, rendered after any template files" name:"format" optional:"" sep:"none"`
}

// source is a format string and where it came from.
type source struct {
	name string
	text string
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if len(r.Templates) == 0 && len(r.Formats) == 0 {
		return ErrNoTemplate
	}

	w := stdout(ctx)

	if !r.Watch {
		return r.render(ctx, w)
	}

	files := slices.Concat(r.Templates, r.Input.Data)

	return watch(ctx, files, func(ctx context.Context) {
		if err := r.render(ctx, w); err != nil {
			log.ErrorContext(ctx, "render failed", slog.Any("error", err))
		}
	})
}

// render renders every source concurrently and writes the results to w in
// argument order, one per line. Nothing is written if any source fails.
func (r *Render) render(ctx context.Context, w io.Writer) error {
	data, err := r.Input.context(ctx)
	if err != nil {
		return err
	}

	sources, err := r.sources()
	if err != nil {
		return err
	}

	opts := engineFrom(ctx)
	out := make([]string, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, src := range sources {
		g.Go(func() error {
			s, err := tmpl.Render(gctx, src.text, data, opts...)
			if err != nil {
				return ErrRender.With(slog.String("template", src.name)).Wrap(err)
			}

			out[i] = s

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.DebugContext(ctx, "rendered templates", slog.Int("count", len(out)))

	for _, s := range out {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}

	return nil
}

// sources reads the template files, then appends the positional formats.
func (r *Render) sources() ([]source, error) {
	files := uniqueFiles(r.Templates)
	sources := make([]source, 0, len(files)+len(r.Formats))

	for _, path := range files {
		buf, err := readFile(path)
		if err != nil {
			return nil, ErrReadTemplate.With(slog.String("file", path)).Wrap(err)
		}

		sources = append(sources, source{name: path, text: templateText(buf)})
	}

	for i, format := range r.Formats {
		sources = append(sources, source{name: "arg" + strconv.Itoa(i), text: format})
	}

	return sources, nil
}
