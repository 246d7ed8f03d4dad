package cli

import (
	"context"
	"io"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tfmt/cli/cmd"
	"github.com/ardnew/tfmt/pkg"
)

// CLI is the top-level command-line interface for tfmt.
type CLI struct {
	Log    logConfig    `embed:"" group:"log"    prefix:"log-"`
	Engine engineConfig `embed:"" group:"engine"`
	Pprof  pprofConfig  `embed:"" group:"pprof"  prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version information and quit." short:"V"`

	Render  cmd.Render  `cmd:"" default:"withargs" help:"Render format strings against a data context"`
	Parse   cmd.Parse   `cmd:"" help:"Print the node tree of a format string"`
	Helpers cmd.Helpers `cmd:"" help:"List registered helpers"`
	Repl    cmd.Repl    `cmd:"" help:"Render templates interactively"`
	Init    cmd.Init    `cmd:"" help:"Initialize configuration file"`
}

// Run executes the tfmt CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	if err := mkdirAllRequired(); err != nil {
		return err
	}

	return run(ctx, exit, nil, nil, configPath(baseConfig), args...)
}

// run parses args and runs the selected command. Nil writers select the
// process's standard streams.
func run(
	ctx context.Context,
	exit func(code int),
	stdout, stderr io.Writer,
	configFile string,
	args ...string,
) error {
	var cli CLI

	vars := kong.Vars{
		"version":            pkg.Name + " " + pkg.Version,
		cmd.ConfigIdentifier: configFile,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Engine.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	opts := []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Engine.group(), cli.Pprof.group()},
		),
		kong.DefaultEnvars(pkg.Prefix()),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve(ctx), configFile),
		vars,
	}

	if stdout != nil || stderr != nil {
		opts = append(opts, kong.Writers(stdout, stderr))
	}

	parser, err := kong.New(&cli, opts...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cli.Log.start(ctx)

	ctx, err = cli.Engine.start(ctx)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
