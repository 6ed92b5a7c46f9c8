// Package registry is the filesystem-backed catalog of tool source modules.
//
// Each tool is a single C source file <name>.c in the registry directory.
// The file stem is the tool name and must satisfy ValidateName. Files that
// do not match (foreign files, editor backups, directories) are ignored.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"

	"github.com/entrhq/toolbox/pkg/fsutil"
	"github.com/entrhq/toolbox/pkg/types"
)

// SourceExt is the extension of tool module files.
const SourceExt = ".c"

// Registry manages the tool modules under a single directory.
type Registry struct {
	dir      string
	reserved map[string]bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithReserved marks names that Create must refuse, such as the multicall
// program's own name.
func WithReserved(names ...string) Option {
	return func(r *Registry) {
		for _, n := range names {
			r.reserved[n] = true
		}
	}
}

// New creates a registry rooted at dir. The directory is created lazily by
// Create; listing a missing directory yields no tools.
func New(dir string, opts ...Option) *Registry {
	r := &Registry{
		dir:      dir,
		reserved: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the registry directory.
func (r *Registry) Dir() string {
	return r.dir
}

// Path returns the source path for name without checking that it exists.
func (r *Registry) Path(name string) string {
	return filepath.Join(r.dir, name+SourceExt)
}

// Create writes a skeleton module for name and returns its path.
// It never overwrites an existing module.
func (r *Registry) Create(name string) (string, error) {
	if _, err := ValidateName(name); err != nil {
		return "", err
	}
	if r.reserved[name] {
		return "", &types.NameError{Name: name, Err: types.ErrInvalidName}
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create tools directory: %w", err)
	}

	path := r.Path(name)
	if _, err := os.Lstat(path); err == nil {
		return "", &types.NameError{Name: name, Err: types.ErrAlreadyExists}
	}

	content, err := renderModule(name)
	if err != nil {
		return "", err
	}

	if err := fsutil.CreateFileAtomic(path, content, 0644); err != nil {
		// Lost a race with another creator
		if errors.Is(err, fs.ErrExist) {
			return "", &types.NameError{Name: name, Err: types.ErrAlreadyExists}
		}
		return "", fmt.Errorf("failed to write module %s: %w", name, err)
	}

	return path, nil
}

// Remove deletes the module for name.
func (r *Registry) Remove(name string) error {
	if _, err := ValidateName(name); err != nil {
		return err
	}

	if err := os.Remove(r.Path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &types.NameError{Name: name, Err: types.ErrNotFound}
		}
		return fmt.Errorf("failed to remove module %s: %w", name, err)
	}

	return nil
}

// List returns the names of all valid modules, sorted lexicographically.
// A missing registry directory is an empty registry.
func (r *Registry) List() ([]string, error) {
	if _, err := os.Stat(r.dir); errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(r.dir), "*"+SourceExt, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan tools directory: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(m, SourceExt)
		if !IsValidName(name) || r.reserved[name] {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

// Modules returns List as ToolModule values with their source paths.
func (r *Registry) Modules() ([]types.ToolModule, error) {
	names, err := r.List()
	if err != nil {
		return nil, err
	}

	modules := make([]types.ToolModule, 0, len(names))
	for _, name := range names {
		modules = append(modules, types.ToolModule{Name: name, SourcePath: r.Path(name)})
	}
	return modules, nil
}

// Match returns the sorted tool names matching a glob pattern such as
// "net_*" or "{ping,echo}". An empty pattern matches everything.
func (r *Registry) Match(pattern string) ([]string, error) {
	names, err := r.List()
	if err != nil || pattern == "" {
		return names, err
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	matched := make([]string, 0, len(names))
	for _, name := range names {
		if g.Match(name) {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// Source returns the module source for name.
func (r *Registry) Source(name string) ([]byte, error) {
	if _, err := ValidateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &types.NameError{Name: name, Err: types.ErrNotFound}
		}
		return nil, fmt.Errorf("failed to read module %s: %w", name, err)
	}
	return data, nil
}
