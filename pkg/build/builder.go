// Package build compiles the registered tool modules into one multicall
// binary and installs an entry point for every name it answers to.
//
// A build is a full rebuild. The compiler writes to a temporary file next to
// the binary and only a successful compile replaces the previous artifact, so
// a broken build never takes working commands away. Entry points are replaced
// one name at a time; the set as a whole is not transactional.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/toolbox/pkg/config"
	"github.com/entrhq/toolbox/pkg/dispatch"
	"github.com/entrhq/toolbox/pkg/fsutil"
	"github.com/entrhq/toolbox/pkg/logging"
	"github.com/entrhq/toolbox/pkg/registry"
	"github.com/entrhq/toolbox/pkg/types"
)

// Hardening policy applied to every build. Not configurable.
var (
	CFlags = []string{
		"-Wall", "-Wextra", "-Werror",
		"-O2",
		"-fstack-protector-strong",
		"-D_FORTIFY_SOURCE=2",
		"-fPIE",
	}
	LDFlags = []string{"-pie"}
)

// Runner executes the compiler and returns its combined stdout and stderr.
// A non-zero exit must be reported as an error; if the error carries an
// ExitCode() method the code is recorded in the BuildError.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Builder runs the build pipeline for one configuration and registry.
type Builder struct {
	cfg      *config.Config
	registry *registry.Registry
	logger   *logging.Logger
	lookPath func(string) (string, error)
	run      Runner
	emit     types.EventHandler
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithRunner replaces the compiler process runner.
func WithRunner(r Runner) Option {
	return func(b *Builder) { b.run = r }
}

// WithLookPath replaces compiler resolution on PATH.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(b *Builder) { b.lookPath = fn }
}

// WithEventHandler receives progress events. Handlers run synchronously on
// the build goroutine.
func WithEventHandler(h types.EventHandler) Option {
	return func(b *Builder) { b.emit = h }
}

// New creates a Builder.
func New(cfg *config.Config, reg *registry.Registry, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		registry: reg,
		logger:   logging.Discard("build"),
		lookPath: exec.LookPath,
		run:      execRun,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ResolveCompiler returns the first configured compiler found on PATH.
func (b *Builder) ResolveCompiler() (string, error) {
	for _, name := range b.cfg.Compilers {
		path, err := b.lookPath(name)
		if err == nil {
			return path, nil
		}
		b.logger.Debugf("compiler %s not usable: %v", name, err)
	}
	return "", &types.CompilerError{Tried: b.cfg.Compilers}
}

// Build compiles every registered module into the multicall binary and
// installs its entry points.
//
// Nothing under the build or bin directories is written before the
// compiler and a non-empty tool list are known.
func (b *Builder) Build(ctx context.Context) (*types.Artifact, error) {
	compiler, err := b.ResolveCompiler()
	if err != nil {
		return nil, err
	}

	modules, err := b.registry.Modules()
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	if len(modules) == 0 {
		return nil, types.ErrNoTools
	}

	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.Name
	}

	b.logger.Infof("building %s with %d tools: %s", b.cfg.AppName, len(names), strings.Join(names, ", "))
	b.notify(types.NewBuildStartEvent(names))
	b.notify(types.NewCompilerResolvedEvent(compiler))

	src, err := dispatch.Synthesize(dispatch.Options{App: b.cfg.AppName, Version: config.Version}, names)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(b.cfg.BuildDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create build directory: %w", err)
	}

	dispatcher := b.cfg.DispatcherPath()
	if err := fsutil.WriteFileAtomic(dispatcher, src, 0644); err != nil {
		return nil, fmt.Errorf("failed to write dispatcher: %w", err)
	}
	b.notify(types.NewDispatcherWrittenEvent(dispatcher))

	sources := make([]string, 0, len(modules)+1)
	sources = append(sources, dispatcher)
	for _, m := range modules {
		sources = append(sources, m.SourcePath)
	}

	binary := b.cfg.BinaryPath()
	if err := b.compile(ctx, compiler, sources, binary); err != nil {
		return nil, err
	}

	artifact := &types.Artifact{
		BinaryPath: binary,
		Tools:      names,
		Compiler:   compiler,
		BuiltAt:    time.Now().UTC(),
	}

	if err := b.install(artifact); err != nil {
		return artifact, err
	}

	if err := b.writeManifest(artifact); err != nil {
		// The binary and its links are already in place.
		b.logger.Warnf("failed to write manifest: %v", err)
	}

	b.logger.Infof("build complete: %s", binary)
	b.notify(types.NewBuildCompleteEvent(binary, names))
	return artifact, nil
}

// compile runs the compiler into a temporary output and renames it over
// binary only on success.
func (b *Builder) compile(ctx context.Context, compiler string, sources []string, binary string) error {
	tmp := filepath.Join(filepath.Dir(binary), "."+filepath.Base(binary)+".new")

	// Left over from an interrupted build
	if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear %s: %w", tmp, err)
	}

	args := compilerArgs(tmp, sources)
	command := append([]string{compiler}, args...)

	b.logger.Infof("running: %s", strings.Join(command, " "))
	b.notify(types.NewCompileStartEvent(command))

	start := time.Now()
	output, err := b.run(ctx, compiler, args...)
	duration := time.Since(start)

	if len(output) > 0 {
		b.logger.Debugf("compiler output:\n%s", output)
	}

	if err != nil {
		os.Remove(tmp)
		buildErr := &types.BuildError{
			Command:  command,
			ExitCode: exitCode(err),
			Output:   string(output),
			Err:      err,
		}
		b.logger.Errorf("%v", buildErr)
		b.notify(types.NewCompileFailedEvent(command, duration.String(), buildErr))
		return buildErr
	}

	if err := os.Rename(tmp, binary); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", binary, err)
	}

	b.notify(types.NewCompileCompleteEvent(binary, duration.String()))
	return nil
}

// compilerArgs builds the fixed compiler command line.
func compilerArgs(output string, sources []string) []string {
	args := make([]string, 0, len(CFlags)+len(sources)+len(LDFlags)+2)
	args = append(args, CFlags...)
	args = append(args, "-o", output)
	args = append(args, sources...)
	args = append(args, LDFlags...)
	return args
}

// install points one link per tool plus the program name at the binary,
// then prunes stale links if configured.
func (b *Builder) install(artifact *types.Artifact) error {
	binDir := b.cfg.BinDir()
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return fmt.Errorf("failed to create bin directory: %w", err)
	}

	entries := append(append([]string{}, artifact.Tools...), b.cfg.AppName)
	for _, name := range entries {
		link := filepath.Join(binDir, name)
		if err := fsutil.SymlinkAtomic(artifact.BinaryPath, link); err != nil {
			return fmt.Errorf("failed to install %s: %w", name, err)
		}
		artifact.EntryPoints = append(artifact.EntryPoints, link)
		b.logger.Debugf("installed %s -> %s", link, artifact.BinaryPath)
		b.notify(types.NewEntryInstalledEvent(name, link))
	}

	if !b.cfg.PruneStale {
		return nil
	}

	pruned, err := b.prune(binDir, artifact.BinaryPath, mapset.NewThreadUnsafeSet(entries...))
	artifact.Pruned = pruned
	return err
}

// prune removes symlinks in binDir that point at binary but are not in keep.
// Anything else in the directory belongs to someone else and is left alone.
func (b *Builder) prune(binDir, binary string, keep mapset.Set[string]) ([]string, error) {
	dirEntries, err := os.ReadDir(binDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read bin directory: %w", err)
	}

	var pruned []string
	for _, e := range dirEntries {
		if keep.Contains(e.Name()) || e.Type()&fs.ModeSymlink == 0 {
			continue
		}

		link := filepath.Join(binDir, e.Name())
		target, err := os.Readlink(link)
		if err != nil || target != binary {
			continue
		}

		if err := os.Remove(link); err != nil {
			return pruned, fmt.Errorf("failed to prune %s: %w", e.Name(), err)
		}
		pruned = append(pruned, link)
		b.logger.Infof("pruned stale entry point %s", link)
		b.notify(types.NewEntryPrunedEvent(e.Name(), link))
	}
	return pruned, nil
}

func (b *Builder) writeManifest(artifact *types.Artifact) error {
	data, err := yaml.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return fsutil.WriteFileAtomic(b.cfg.ManifestPath(), data, 0644)
}

// ReadManifest loads the record of the last successful build.
func ReadManifest(path string) (*types.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact types.Artifact
	if err := yaml.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &artifact, nil
}

func (b *Builder) notify(event *types.BuildEvent) {
	if b.emit != nil {
		b.emit(event)
	}
}
