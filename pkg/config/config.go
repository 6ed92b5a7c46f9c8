// Package config holds the toolbox configuration value.
//
// A Config is built once at process start (Resolve) and passed by pointer to
// every component. Nothing in this package is global mutable state.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/toolbox/pkg/fsutil"
	"github.com/entrhq/toolbox/pkg/registry"
)

const (
	// DefaultAppName is the multicall program's canonical name.
	DefaultAppName = "toolbox"

	// Version is baked into the dispatcher and printed by "toolbox version".
	Version = "2.1.0"

	// EnvRoot overrides the default root directory.
	EnvRoot = "TOOLBOX_ROOT"

	// FileName is the optional config file inside the root directory.
	FileName = "config.yaml"

	defaultWatchDebounce = 500 * time.Millisecond
)

// Config represents the toolbox configuration.
type Config struct {
	// AppName is the canonical program name. It must pass the tool name
	// grammar because it is embedded in generated source.
	AppName string `yaml:"app_name"`

	// Root holds tools/, build/, bin/ and logs/. Not read from the file.
	Root string `yaml:"-"`

	// Compilers is the ordered compiler preference list.
	Compilers []string `yaml:"compilers"`

	// PruneStale removes entry points for tools no longer registered.
	PruneStale bool `yaml:"prune_stale"`

	// WatchDebounce is how long watch mode waits for edits to settle.
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// Default returns the configuration used when no file is present.
// Root is left empty; Resolve fills it in.
func Default() *Config {
	return &Config{
		AppName:       DefaultAppName,
		Compilers:     []string{"gcc", "clang"},
		PruneStale:    true,
		WatchDebounce: defaultWatchDebounce,
	}
}

// DefaultRoot returns ~/.tools/<app>.
func DefaultRoot() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tools", DefaultAppName), nil
}

// Resolve picks the root directory (explicit argument, then $TOOLBOX_ROOT,
// then DefaultRoot), loads <root>/config.yaml on top of the defaults and
// validates the result.
func Resolve(root string) (*Config, error) {
	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		var err error
		if root, err = DefaultRoot(); err != nil {
			return nil, err
		}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	cfg, err := Load(filepath.Join(abs, FileName))
	if err != nil {
		return nil, err
	}
	cfg.Root = abs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal encodes the file-backed fields of c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return data, nil
}

// Save writes the file-backed fields of c to path atomically.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return fsutil.WriteFileAtomic(path, data, 0644)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !registry.IsValidName(c.AppName) {
		return fmt.Errorf("invalid app_name %q (lowercase, start with letter)", c.AppName)
	}
	if c.Root == "" {
		return fmt.Errorf("root directory is required")
	}
	if len(c.Compilers) == 0 {
		return fmt.Errorf("at least one compiler is required")
	}
	for i, cc := range c.Compilers {
		if cc == "" {
			return fmt.Errorf("compilers[%d] cannot be empty", i)
		}
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce cannot be negative")
	}
	return nil
}

// ConfigPath returns <root>/config.yaml.
func (c *Config) ConfigPath() string { return filepath.Join(c.Root, FileName) }

// ToolsDir holds one C source file per tool.
func (c *Config) ToolsDir() string { return filepath.Join(c.Root, "tools") }

// BuildDir holds the generated dispatcher and the compiled binary.
func (c *Config) BuildDir() string { return filepath.Join(c.Root, "build") }

// BinDir holds the installed entry points.
func (c *Config) BinDir() string { return filepath.Join(c.Root, "bin") }

// LogDir holds session log files.
func (c *Config) LogDir() string { return filepath.Join(c.Root, "logs") }

// BinaryPath is the compiled multicall binary.
func (c *Config) BinaryPath() string { return filepath.Join(c.BuildDir(), c.AppName) }

// DispatcherPath is the generated dispatcher source.
func (c *Config) DispatcherPath() string { return filepath.Join(c.BuildDir(), "main.c") }

// ManifestPath records the last successful build.
func (c *Config) ManifestPath() string { return filepath.Join(c.BuildDir(), "manifest.yaml") }
