// Package dispatch generates the C source of the multicall entry point.
//
// Synthesize is pure: the same options and tool list always produce the same
// bytes, so a rebuild with an unchanged registry yields an identical
// dispatcher. The generated program resolves the invoked name from argv[0]:
//
//	toolbox                 list commands, exit 0
//	toolbox -h|--help       full usage, exit 0
//	toolbox <tool> args...  run <tool> with argv shifted by one
//	<tool> args...          (through a link) run <tool> with argv unchanged
//	<tool> -h|--help        tool help text, or a one-line usage; the tool's
//	                        entry function is not called
//
// Unknown commands print a diagnostic on stderr and exit 1.
package dispatch

import (
	"bytes"
	"fmt"
	"regexp"
	"text/template"

	"github.com/entrhq/toolbox/pkg/registry"
	"github.com/entrhq/toolbox/pkg/types"
)

// versionPattern keeps the version safe to embed in a C string literal.
var versionPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z.+-]*$`)

var dispatcherTmpl = template.Must(template.New("dispatcher").Parse(dispatcherTemplate))

// Options holds the program identity baked into the dispatcher.
type Options struct {
	// App is the multicall program's canonical name.
	App string

	// Version is printed by --help and --version.
	Version string
}

// Synthesize renders the dispatcher for tools, in the given order.
//
// tools must be non-empty, contain only valid and distinct names, and must
// not contain the program's own name.
func Synthesize(opts Options, tools []string) ([]byte, error) {
	if err := validate(opts, tools); err != nil {
		return nil, err
	}

	data := struct {
		App     string
		Version string
		Table   Table
	}{
		App:     opts.App,
		Version: opts.Version,
		Table:   NewTable(tools),
	}

	var buf bytes.Buffer
	if err := dispatcherTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func validate(opts Options, tools []string) error {
	if !registry.IsValidName(opts.App) {
		return fmt.Errorf("invalid program name %q", opts.App)
	}
	if !versionPattern.MatchString(opts.Version) {
		return fmt.Errorf("invalid version %q", opts.Version)
	}
	if len(tools) == 0 {
		return types.ErrNoTools
	}

	seen := make(map[string]bool, len(tools))
	for _, name := range tools {
		if _, err := registry.ValidateName(name); err != nil {
			return err
		}
		if name == opts.App {
			return fmt.Errorf("tool %q collides with the program name", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate tool %q", name)
		}
		seen[name] = true
	}
	return nil
}
