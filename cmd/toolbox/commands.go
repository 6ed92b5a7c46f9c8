package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/toolbox/pkg/build"
	"github.com/entrhq/toolbox/pkg/config"
	"github.com/entrhq/toolbox/pkg/highlight"
	"github.com/entrhq/toolbox/pkg/menu"
	"github.com/entrhq/toolbox/pkg/types"
	"github.com/entrhq/toolbox/pkg/watch"
)

func (a *app) create(name string) error {
	path, err := a.registry.Create(name)
	if err != nil {
		return err
	}
	a.logger.Infof("created %s", path)
	fmt.Fprintf(a.stdout, "[+] Created tool: %s\n", path)
	return nil
}

func (a *app) remove(name string) error {
	if err := a.registry.Remove(name); err != nil {
		return err
	}
	a.logger.Infof("removed %s", name)
	fmt.Fprintf(a.stdout, "[+] Removed tool: %s\n", name)
	return nil
}

func (a *app) list(pattern string) error {
	names, err := a.registry.Match(pattern)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(a.stdout, name)
	}
	return nil
}

func (a *app) show(name string) error {
	src, err := a.registry.Source(name)
	if err != nil {
		return err
	}
	return highlight.Write(a.stdout, src, isTerminal(a.stdout))
}

func (a *app) build(ctx context.Context) error {
	if _, err := a.builder.Build(ctx); err != nil {
		a.reportBuildOutput(err)
		return err
	}
	fmt.Fprintf(a.stdout, "\nAdd to PATH:\n  export PATH=\"%s:$PATH\"\n", a.cfg.BinDir())
	return nil
}

// reportBuildOutput prints the compiler's diagnostics ahead of the one-line
// error.
func (a *app) reportBuildOutput(err error) {
	if !types.IsBuildError(err) {
		return
	}
	var be *types.BuildError
	errors.As(err, &be)
	a.logger.Warnf("compile failed with exit code %d", be.ExitCode)
	if be.Output != "" {
		fmt.Fprint(a.stderr, be.Output)
		if !strings.HasSuffix(be.Output, "\n") {
			fmt.Fprintln(a.stderr)
		}
	}
}

func (a *app) watch(ctx context.Context) error {
	if err := a.build(ctx); err != nil {
		// Keep watching; the next edit may fix it.
		fmt.Fprintf(a.stderr, "[!] %v\n", err)
	}

	w := watch.New(a.cfg.ToolsDir(), a.cfg.WatchDebounce, a.builder,
		watch.WithLogger(a.logger.With("watch")),
		watch.WithResultHandler(func(_ []string, _ *types.Artifact, err error) {
			if err != nil {
				a.reportBuildOutput(err)
				fmt.Fprintf(a.stderr, "[!] %v\n", err)
			}
		}),
	)

	fmt.Fprintf(a.stdout, "[*] Watching %s (Ctrl+C to stop)\n", a.cfg.ToolsDir())
	return w.Run(ctx)
}

func (a *app) menu(ctx context.Context) error {
	// Console progress lines would corrupt the menu display.
	quiet := build.New(a.cfg, a.registry, build.WithLogger(a.logger.With("build")))
	m := menu.New(ctx, a.cfg.AppName, config.Version, a.registry, quiet)
	return menu.Run(ctx, m, a.stdin, a.stdout)
}

// renderEvent turns build progress into console lines.
func (a *app) renderEvent(e *types.BuildEvent) {
	// Failures are reported once, from the returned error.
	if e.IsErrorEvent() {
		return
	}
	if e.IsCompileEvent() {
		a.logger.Debugf("compile event %s", e.Type)
	}
	if e.IsEntryEvent() {
		a.logger.Debugf("%s %s -> %s", e.Type, e.Name, e.Path)
	}

	switch e.Type {
	case types.EventTypeBuildStart:
		fmt.Fprintf(a.stdout, "[*] Building %d tools: %s\n", len(e.Tools), strings.Join(e.Tools, ", "))
	case types.EventTypeCompilerResolved:
		fmt.Fprintf(a.stdout, "[*] Using compiler: %s\n", e.Path)
	case types.EventTypeDispatcherWritten:
		fmt.Fprintf(a.stdout, "[*] Generated dispatcher: %s\n", e.Path)
	case types.EventTypeCompileStart:
		if a.verbose {
			fmt.Fprintf(a.stdout, "[*] %s\n", strings.Join(e.Command, " "))
		}
	case types.EventTypeCompileComplete:
		fmt.Fprintf(a.stdout, "[+] Compiled %s in %s\n", e.Path, e.Duration)
	case types.EventTypeEntryInstalled:
		if a.verbose {
			fmt.Fprintf(a.stdout, "[*] Linked %s\n", e.Path)
		}
	case types.EventTypeEntryPruned:
		fmt.Fprintf(a.stdout, "[*] Pruned stale entry point: %s\n", e.Name)
	case types.EventTypeBuildComplete:
		fmt.Fprintf(a.stdout, "[+] Build complete. Installed %d entry points in %s\n", len(e.Tools)+1, a.cfg.BinDir())
	}
}
