package cli

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tfmt/cli/cmd"
	"github.com/ardnew/tfmt/log"
	"github.com/ardnew/tfmt/tmpl"
)

// engineConfig holds the flags shared by every command that renders.
type engineConfig struct {
	Locale       string `help:"Derive separators from a BCP 47 language tag (e.g. de-DE)." placeholder:"TAG"`
	DecimalPoint string `help:"Decimal point, overriding --locale."                     placeholder:"SEP"`
	ThousandsSep string `help:"Thousands separator, overriding --locale."               placeholder:"SEP"`
	Strict       bool   `help:"Fail on unsafe access and evaluation errors."`
	MaxDepth     int    `default:"${maxDepth}" help:"Maximum block and helper call nesting."`
	MaxOutput    int    `default:"0"           help:"Maximum rendered size in bytes, or 0 for no limit."`
	TrailingPass bool   `help:"Allow a truthy second foreach argument to render one extra pass."`
}

func (*engineConfig) vars() kong.Vars {
	return kong.Vars{
		"maxDepth": strconv.Itoa(tmpl.DefaultMaxDepth),
	}
}

func (*engineConfig) group() kong.Group {
	return kong.Group{Key: "engine", Title: "Rendering options"}
}

// locale resolves the separators selected by --locale and the explicit
// separator flags. It reports false when no flag selects a locale.
func (f *engineConfig) locale() (tmpl.Locale, bool, error) {
	loc := tmpl.CurrentLocale()
	set := false

	if f.Locale != "" {
		l, ok := tmpl.ParseLocale(f.Locale)
		if !ok {
			return loc, false, cmd.ErrLocale.With(slog.String("tag", f.Locale))
		}

		loc, set = l, true
	}

	if f.DecimalPoint != "" {
		loc.DecimalPoint, set = f.DecimalPoint, true
	}

	if f.ThousandsSep != "" {
		loc.ThousandsSep, set = f.ThousandsSep, true
	}

	return loc, set, nil
}

// start binds the engine options to ctx for the commands to use.
func (f *engineConfig) start(ctx context.Context) (context.Context, error) {
	opts := []tmpl.Option{
		tmpl.WithLogger(log.Default()),
		tmpl.WithStrict(f.Strict),
		tmpl.WithMaxDepth(f.MaxDepth),
		tmpl.WithMaxOutput(f.MaxOutput),
		tmpl.WithTrailingPass(f.TrailingPass),
	}

	loc, set, err := f.locale()
	if err != nil {
		return ctx, err
	}

	if set {
		opts = append(opts, tmpl.WithLocale(loc))
	}

	log.DebugContext(ctx, "engine configured",
		slog.Bool("strict", f.Strict),
		slog.Int("max_depth", f.MaxDepth),
		slog.Int("max_output", f.MaxOutput),
		slog.String("decimal_point", loc.DecimalPoint),
		slog.String("thousands_sep", loc.ThousandsSep),
	)

	return cmd.WithEngine(ctx, opts...), nil
}
