package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the registry and the build orchestrator.
// Use errors.Is to check.
var (
	ErrInvalidName   = errors.New("invalid tool name")
	ErrAlreadyExists = errors.New("tool already exists")
	ErrNotFound      = errors.New("tool not found")
	ErrNoTools       = errors.New("no tools to build")
	ErrNoCompiler    = errors.New("no C compiler found")
)

// NameError reports a name that failed validation, a collision or a lookup miss.
// Err is one of ErrInvalidName, ErrAlreadyExists or ErrNotFound.
type NameError struct {
	Name string
	Err  error
}

func (e *NameError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Name)
}

// Unwrap supports errors.Is(err, ErrInvalidName) and friends.
func (e *NameError) Unwrap() error { return e.Err }

// CompilerError reports that none of the preferred compilers is on PATH.
type CompilerError struct {
	Tried []string
}

func (e *CompilerError) Error() string {
	return fmt.Sprintf("%s (tried %s)", ErrNoCompiler, strings.Join(e.Tried, ", "))
}

func (e *CompilerError) Unwrap() error { return ErrNoCompiler }

// BuildError wraps a failed compiler invocation. ExitCode is -1 when the
// process could not be started at all.
type BuildError struct {
	Command  []string
	ExitCode int
	Output   string
	Err      error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("compilation failed with exit code %d: %s", e.ExitCode, strings.Join(e.Command, " "))
}

func (e *BuildError) Unwrap() error { return e.Err }

// IsBuildError returns true if err is or wraps a BuildError.
func IsBuildError(err error) bool {
	var be *BuildError
	return errors.As(err, &be)
}
