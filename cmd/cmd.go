package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/rubiojr/party/ast"
	"github.com/rubiojr/party/compiler"
	"github.com/rubiojr/party/resolver"
)

// errReported is returned once diagnostics have been printed, so Execute
// only sets the exit status.
var errReported = errors.New("failed")

// Execute runs the party CLI with the given version string.
func Execute(version string) {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	if err := a.command(version).Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errReported) {
			a.diag().report(err)
		}
		os.Exit(1)
	}
}

type app struct {
	stdout io.Writer
	stderr io.Writer
	color  bool

	printer *diagPrinter
}

func (a *app) command(version string) *cli.Command {
	return &cli.Command{
		Name:                   "party",
		Usage:                  "Compile modern scripts down to the classic dialect",
		Version:                version,
		UseShortOptionHandling: true,
		Writer:                 a.stdout,
		ErrWriter:              a.stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log compiler activity to stderr",
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Aliases: []string{"C"},
				Usage:   "Disable ANSI color output",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Project file to use instead of the nearest " + compiler.ConfigFile,
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			{
				Name:      "compile",
				Usage:     "Compile source files and directories",
				ArgsUsage: "<path>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: compile in place)",
					},
					&cli.BoolFlag{
						Name:    "source-maps",
						Aliases: []string{"s"},
						Usage:   "Write a source map next to every module",
					},
					&cli.BoolFlag{
						Name:  "no-recurse",
						Usage: "Do not descend into sub-directories",
					},
					&cli.IntFlag{
						Name:    "jobs",
						Aliases: []string{"j"},
						Usage:   "Modules compiled in parallel (default: number of CPUs)",
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Bypass the compile cache",
					},
					&cli.StringFlag{
						Name:  "escape",
						Usage: "Policy for dependencies above the project root: allow, warn or reject",
					},
				},
				Action: a.compileAction,
			},
			{
				Name:      "emit",
				Usage:     "Print the compiled code of one file",
				ArgsUsage: "<file>",
				Action:    a.emitAction,
			},
			{
				Name:      "dump",
				Usage:     "Print the syntax tree of compiled modules",
				ArgsUsage: "<path>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "sources",
						Usage: "Dump the parsed sources instead of the compiled output",
					},
					&cli.BoolFlag{
						Name:  "locs",
						Usage: "Include source locations",
					},
				},
				Action: a.dumpAction,
			},
			{
				Name:      "deps",
				Usage:     "Print the module dependency graph",
				ArgsUsage: "<path>...",
				Action:    a.depsAction,
			},
			{
				Name:            "run",
				Usage:           "Compile a file with its dependencies and evaluate it",
				ArgsUsage:       "<file> [args...]",
				SkipFlagParsing: true,
				Action:          a.runAction,
			},
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	a.color = useColor(cmd.Bool("no-color"), a.stderr)
	compiler.SetLogger(newLogger(cmd.Bool("verbose"), a.stderr))
	return ctx, nil
}

// useColor disables color when asked to, when NO_COLOR is set, and when w
// is not a terminal.
func useColor(disabled bool, w io.Writer) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newLogger logs warnings to w, and everything in verbose mode.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	if !verbose {
		enc.TimeKey = ""
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

func (a *app) diag() *diagPrinter {
	if a.printer == nil {
		a.printer = newDiagPrinter(a.stderr, a.color)
	}
	return a.printer
}

// config loads the project configuration: the file named by --config, or
// the nearest party.toml above the working directory.
func (a *app) config(cmd *cli.Command) (compiler.Config, error) {
	if path := cmd.String("config"); path != "" {
		return compiler.LoadConfig(path)
	}
	return compiler.LoadProjectConfig(".")
}

// compileConfig applies the compile flags over the project configuration.
func (a *app) compileConfig(cmd *cli.Command) (compiler.Config, error) {
	cfg, err := a.config(cmd)
	if err != nil {
		return cfg, err
	}
	if cmd.IsSet("output") {
		cfg.Build.Output = cmd.String("output")
	}
	if cmd.Bool("source-maps") {
		cfg.Build.SourceMaps = true
	}
	if cmd.Bool("no-recurse") {
		cfg.Build.Recurse = false
	}
	if cmd.IsSet("jobs") {
		cfg.Build.Jobs = cmd.Int("jobs")
	}
	if cmd.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if cmd.IsSet("escape") {
		if cfg.Resolve.Escape, err = resolver.ParsePolicy(cmd.String("escape")); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// build compiles paths and reports module failures and warnings.
func (a *app) build(ctx context.Context, cfg compiler.Config, paths []string) (*compiler.Compiler, *compiler.Build, error) {
	if len(paths) == 0 {
		return nil, nil, errors.New("no input paths given")
	}
	c, err := compiler.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	b, err := c.Build(ctx, paths)
	if err != nil {
		return nil, nil, err
	}
	if len(b.Modules) == 0 {
		return nil, nil, fmt.Errorf("no source files found in %s", strings.Join(paths, ", "))
	}
	a.reportModules(b.Modules)
	return c, b, nil
}

// reportModules prints warnings and failures, failures last.
func (a *app) reportModules(modules []*compiler.Module) {
	d := a.diag()
	for _, m := range modules {
		for _, w := range m.Warnings {
			d.warn(w)
		}
	}
	for _, m := range modules {
		if m.Err != nil {
			d.report(m.Err)
		}
	}
}

func failed(b *compiler.Build) error {
	n := 0
	for _, m := range b.Modules {
		if m.Err != nil {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	if n == 1 {
		return errors.New("1 module failed")
	}
	return fmt.Errorf("%d modules failed", n)
}

func (a *app) compileAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := a.compileConfig(cmd)
	if err != nil {
		return err
	}
	c, b, err := a.build(ctx, cfg, cmd.Args().Slice())
	if err != nil {
		return err
	}
	if _, err := c.Write(b); err != nil {
		return err
	}
	return failed(b)
}

func (a *app) emitAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("usage: party emit <file>")
	}
	cfg, err := a.config(cmd)
	if err != nil {
		return err
	}
	c, err := compiler.New(cfg)
	if err != nil {
		return err
	}
	path := cmd.Args().First()
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	m, err := c.CompileSource(src, path)
	if err != nil {
		a.diag().report(err)
		return errReported
	}
	a.reportModules([]*compiler.Module{m})
	_, err = io.WriteString(a.stdout, m.Code)
	return err
}

func (a *app) dumpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := a.config(cmd)
	if err != nil {
		return err
	}
	// Trees are only available from a fresh compile.
	cfg.Cache.Enabled = false
	cfg.Build.Positions = cmd.Bool("locs")
	c, b, err := a.build(ctx, cfg, cmd.Args().Slice())
	if err != nil {
		return err
	}
	opts := ast.DumpOptions{Locs: cmd.Bool("locs")}
	for _, m := range b.Modules {
		if m.Err != nil {
			continue
		}
		prog := m.Program
		if cmd.Bool("sources") {
			if prog, err = c.ParseFile(m.SourcePath, opts.Locs); err != nil {
				return err
			}
		}
		if len(b.Modules) > 1 {
			fmt.Fprintf(a.stdout, "// %s\n", m.Name)
		}
		if err := ast.Dump(a.stdout, prog, opts); err != nil {
			return err
		}
	}
	return failed(b)
}

func (a *app) depsAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := a.config(cmd)
	if err != nil {
		return err
	}
	_, b, err := a.build(ctx, cfg, cmd.Args().Slice())
	if err != nil {
		return err
	}
	g := b.Graph
	for _, name := range g.Order() {
		deps := g.Deps[name]
		if len(deps) == 0 {
			fmt.Fprintln(a.stdout, name)
			continue
		}
		fmt.Fprintf(a.stdout, "%s -> %s\n", name, strings.Join(deps, ", "))
	}
	d := a.diag()
	for _, e := range g.Missing() {
		d.note("%s: dependency %s is not part of the build", e.From, e.To)
	}
	for _, e := range g.Escaping() {
		d.note("%s: dependency %s is outside the project root", e.From, e.To)
	}
	for _, c := range g.Cycles() {
		d.note("dependency cycle: %s", strings.Join(c, ", "))
	}
	return failed(b)
}

func (a *app) runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return errors.New("usage: party run <file> [args...]")
	}
	cfg, err := a.config(cmd)
	if err != nil {
		return err
	}
	file := cmd.Args().First()
	if err := a.run(cfg, file, cmd.Args().Tail()); err != nil {
		a.diag().report(err)
		return errReported
	}
	return nil
}

