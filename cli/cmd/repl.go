package cmd

import (
	"context"

	"github.com/ardnew/tfmt/cli/cmd/repl"
	"github.com/ardnew/tfmt/log"
)

// Repl renders templates interactively against a data context.
type Repl struct {
	Input dataFlags `embed:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	data, err := r.Input.context(ctx)
	if err != nil {
		return err
	}

	return repl.Run(ctx, data, kongVar(ctx, CacheIdentifier), log.Default(), engineFrom(ctx)...)
}
