package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/tfmt/tmpl"
)

// Parse prints the node tree of a format string.
type Parse struct {
	JSON   bool `help:"Print the tree as JSON" xor:"output"`
	YAML   bool `help:"Print the tree as YAML" xor:"output"`
	Indent int  `default:"2"                  help:"Indent width for JSON and YAML output" short:"i"`

	Template string `help:"Read the template from file, or '-' for stdin" placeholder:"FILE" short:"t" type:"path"`

	Format *string `arg:"" help:"Format string" name:"format" optional:""`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var src string

	switch {
	case p.Format != nil:
		src = *p.Format

	case p.Template != "":
		buf, err := readFile(p.Template)
		if err != nil {
			return ErrReadTemplate.With(slog.String("file", p.Template)).Wrap(err)
		}

		src = templateText(buf)

	default:
		return ErrNoTemplate
	}

	t, err := tmpl.Parse(ctx, src, engineFrom(ctx)...)
	if err != nil {
		return err
	}

	w := stdout(ctx)

	switch {
	case p.JSON:
		if err := t.FormatJSON(ctx, w, p.Indent); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

	case p.YAML:
		if err := t.FormatYAML(ctx, w, p.Indent); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

	default:
		return t.Print(w)
	}

	return nil
}
