// Package bootstrap prepares the toolbox root and re-executes the process
// inside it exactly once.
//
// Ensure either returns (the environment is already prepared) or replaces
// the current process image and never returns. The EnvActive variable
// carries the "already prepared" state across the exec.
package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"github.com/entrhq/toolbox/pkg/config"
	"github.com/entrhq/toolbox/pkg/fsutil"
	"github.com/entrhq/toolbox/pkg/logging"
)

// EnvActive is set to "1" in the environment of the re-executed process.
const EnvActive = "TOOLBOX_ENV_ACTIVE"

// ExecFunc replaces the current process image. It only returns on failure.
type ExecFunc func(argv0 string, argv []string, envv []string) error

type bootstrapper struct {
	getenv     func(string) string
	environ    func() []string
	executable func() (string, error)
	exec       ExecFunc
	logger     *logging.Logger
}

// Option configures Ensure.
type Option func(*bootstrapper)

// WithExec replaces syscall.Exec.
func WithExec(fn ExecFunc) Option {
	return func(b *bootstrapper) { b.exec = fn }
}

// WithEnv replaces the process environment lookups.
func WithEnv(getenv func(string) string, environ func() []string) Option {
	return func(b *bootstrapper) {
		b.getenv = getenv
		b.environ = environ
	}
}

// WithExecutable replaces os.Executable.
func WithExecutable(fn func() (string, error)) Option {
	return func(b *bootstrapper) { b.executable = fn }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *bootstrapper) { b.logger = l }
}

// Ensure returns nil when the process already runs inside a prepared root.
// Otherwise it creates the root layout and a default config file, then
// re-executes args (args[0] is ignored in favour of the running executable)
// with EnvActive and config.EnvRoot set.
func Ensure(cfg *config.Config, args []string, opts ...Option) error {
	b := &bootstrapper{
		getenv:     os.Getenv,
		environ:    os.Environ,
		executable: os.Executable,
		exec:       syscall.Exec,
		logger:     logging.Discard("bootstrap"),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.getenv(EnvActive) == "1" {
		return nil
	}

	if err := Prepare(cfg); err != nil {
		return err
	}

	self, err := b.executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	argv := append([]string{self}, tail(args)...)
	env := append(b.environ(), EnvActive+"=1", config.EnvRoot+"="+cfg.Root)

	b.logger.Infof("re-executing %s inside %s", self, cfg.Root)
	if err := b.exec(self, argv, env); err != nil {
		return fmt.Errorf("failed to re-execute %s: %w", self, err)
	}
	return nil
}

// Prepare creates the root directory layout and writes a default config
// file unless one exists. It is safe to call repeatedly.
func Prepare(cfg *config.Config) error {
	for _, dir := range []string{cfg.Root, cfg.ToolsDir(), cfg.BuildDir(), cfg.BinDir(), cfg.LogDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	if err := fsutil.CreateFileAtomic(cfg.ConfigPath(), data, 0644); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

func tail(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	return args[1:]
}
