package cmd

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ardnew/tfmt/tmpl"
)

// Helpers lists the helpers available to templates.
type Helpers struct {
	Format string `default:"table" enum:"table,plain" help:"Output format (${enum})" short:"f"`
}

// Run executes the helpers command.
func (h *Helpers) Run(ctx context.Context) error {
	w := stdout(ctx)
	names := tmpl.DefaultRegistry().Names()

	if h.Format == "plain" {
		for _, name := range names {
			if _, err := fmt.Fprintln(w, name); err != nil {
				return err
			}
		}

		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Block", "Builtin"})

	for _, name := range names {
		block := tmpl.BlockKindFor(name).String()
		if block == tmpl.BlockHelper.String() {
			block = "-"
		}

		t.AppendRow(table.Row{name, block, tmpl.IsBuiltin(name)})
	}

	t.Render()

	return nil
}
