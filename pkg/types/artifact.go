package types

import "time"

// ToolModule is one command source file owned by the registry.
type ToolModule struct {
	Name       string
	SourcePath string
}

// Artifact describes a compiled multicall binary and the entry points
// installed for it.
type Artifact struct {
	// BinaryPath is the absolute path of the compiled binary.
	BinaryPath string `yaml:"binary"`

	// Tools is the ordered list of tool names baked into the binary.
	Tools []string `yaml:"tools"`

	// Compiler is the resolved compiler path used for the build.
	Compiler string `yaml:"compiler"`

	// EntryPoints lists the installed link paths, tools first then the app name.
	EntryPoints []string `yaml:"entry_points"`

	// Pruned lists stale entry points removed during installation.
	Pruned []string `yaml:"pruned,omitempty"`

	// BuiltAt is when the compiler finished.
	BuiltAt time.Time `yaml:"built_at"`
}
