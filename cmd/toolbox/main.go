// Package main provides the toolbox command: it manages a registry of C tool
// modules and builds them into one multicall binary with an entry point per
// tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/entrhq/toolbox/pkg/bootstrap"
	"github.com/entrhq/toolbox/pkg/build"
	"github.com/entrhq/toolbox/pkg/config"
	"github.com/entrhq/toolbox/pkg/logging"
	"github.com/entrhq/toolbox/pkg/registry"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks errors that should print usage and exit with exitUsage.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Options holds the parsed global flags.
type Options struct {
	Root        string
	ShowVersion bool
	Verbose     bool
}

// app wires the components for one invocation.
type app struct {
	cfg      *config.Config
	registry *registry.Registry
	builder  *build.Builder
	logger   *logging.Logger
	verbose  bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(config.DefaultAppName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &Options{}
	fs.StringVar(&opts.Root, "root", "", "Root directory (or set "+config.EnvRoot+"; default ~/.tools/toolbox)")
	fs.BoolVar(&opts.ShowVersion, "version", false, "Show version and exit")
	fs.BoolVar(&opts.Verbose, "v", false, "Print compiler command lines")
	// Flag errors are reported before the config is read.
	fs.Usage = func() { printUsage(stderr, fs, config.DefaultAppName) }

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Resolve(opts.Root)
	if err != nil {
		fmt.Fprintf(stderr, "[!] %v\n", err)
		return exitError
	}

	if opts.ShowVersion {
		fmt.Fprintf(stdout, "%s v%s\n", cfg.AppName, config.Version)
		return exitOK
	}

	if err := bootstrap.Ensure(cfg, args); err != nil {
		fmt.Fprintf(stderr, "[!] %v\n", err)
		return exitError
	}

	logger, err := logging.NewLogger(cfg.LogDir(), "cli")
	if err != nil {
		fmt.Fprintf(stderr, "[!] %v\n", err)
	}
	defer logger.Close()

	a := newApp(cfg, logger, opts.Verbose, stdin, stdout, stderr)

	err = a.dispatch(ctx, fs.Args())
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		printUsage(stderr, fs, cfg.AppName)
		return exitUsage
	default:
		logger.Errorf("%v", err)
		fmt.Fprintf(stderr, "[!] %v\n", err)
		return exitError
	}
}

func newApp(cfg *config.Config, logger *logging.Logger, verbose bool, stdin io.Reader, stdout, stderr io.Writer) *app {
	a := &app{
		cfg:      cfg,
		registry: registry.New(cfg.ToolsDir(), registry.WithReserved(cfg.AppName)),
		logger:   logger,
		verbose:  verbose,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}
	a.builder = build.New(cfg, a.registry,
		build.WithLogger(logger.With("build")),
		build.WithEventHandler(a.renderEvent),
	)
	return a
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if !isTerminal(a.stdin) || !isTerminal(a.stdout) {
			return errUsage
		}
		return a.menu(ctx)
	}

	cmd, rest := args[0], args[1:]
	a.logger.Debugf("command %s %v", cmd, rest)

	switch cmd {
	case "create":
		if len(rest) != 1 {
			return errUsage
		}
		return a.create(rest[0])
	case "remove":
		if len(rest) != 1 {
			return errUsage
		}
		return a.remove(rest[0])
	case "build":
		if len(rest) != 0 {
			return errUsage
		}
		return a.build(ctx)
	case "list":
		if len(rest) > 1 {
			return errUsage
		}
		pattern := ""
		if len(rest) == 1 {
			pattern = rest[0]
		}
		return a.list(pattern)
	case "show":
		if len(rest) != 1 {
			return errUsage
		}
		return a.show(rest[0])
	case "watch":
		if len(rest) != 0 {
			return errUsage
		}
		return a.watch(ctx)
	case "menu":
		if !isTerminal(a.stdin) || !isTerminal(a.stdout) {
			return fmt.Errorf("menu requires a terminal")
		}
		return a.menu(ctx)
	case "version":
		fmt.Fprintf(a.stdout, "%s v%s\n", a.cfg.AppName, config.Version)
		return nil
	default:
		fmt.Fprintf(a.stderr, "[!] unknown command: %s\n", cmd)
		return errUsage
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func printUsage(w io.Writer, fs *flag.FlagSet, name string) {
	fmt.Fprintf(w, "%s v%s - multicall tool builder\n\n", name, config.Version)
	fmt.Fprintf(w, "Usage: %s [options] <command> [args]\n\n", name)
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  create <name>     Create a new tool module\n")
	fmt.Fprintf(w, "  remove <name>     Delete a tool module\n")
	fmt.Fprintf(w, "  build             Compile all tools and install entry points\n")
	fmt.Fprintf(w, "  list [pattern]    List tools, optionally filtered by a glob\n")
	fmt.Fprintf(w, "  show <name>       Print a tool's source\n")
	fmt.Fprintf(w, "  watch             Rebuild whenever a tool source changes\n")
	fmt.Fprintf(w, "  menu              Interactive menu (default on a terminal)\n")
	fmt.Fprintf(w, "  version           Show version\n")
	fmt.Fprintf(w, "\nOptions:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nEnvironment Variables:\n")
	fmt.Fprintf(w, "  %-14s Root directory\n", config.EnvRoot)
}
