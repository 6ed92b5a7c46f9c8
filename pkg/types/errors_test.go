package types

import (
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestNameErrorUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"invalid", &NameError{Name: "Bad", Err: ErrInvalidName}, ErrInvalidName},
		{"exists", &NameError{Name: "ping", Err: ErrAlreadyExists}, ErrAlreadyExists},
		{"missing", &NameError{Name: "ping", Err: ErrNotFound}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
		})
	}
}

func TestNameErrorMessageQuotesName(t *testing.T) {
	err := &NameError{Name: "Bad Name", Err: ErrInvalidName}
	if got := err.Error(); got != `invalid tool name: "Bad Name"` {
		t.Errorf("Error() = %q", got)
	}
}

func TestCompilerError(t *testing.T) {
	err := &CompilerError{Tried: []string{"gcc", "clang"}}

	if !errors.Is(err, ErrNoCompiler) {
		t.Error("expected CompilerError to wrap ErrNoCompiler")
	}
	if !strings.Contains(err.Error(), "gcc, clang") {
		t.Errorf("Error() = %q, want tried compilers listed", err.Error())
	}
}

func TestBuildError(t *testing.T) {
	inner := &exec.ExitError{}
	var err error = &BuildError{
		Command:  []string{"gcc", "-o", "toolbox", "main.c"},
		ExitCode: 1,
		Err:      inner,
	}

	if !IsBuildError(err) {
		t.Error("IsBuildError() = false, want true")
	}
	if !strings.Contains(err.Error(), "exit code 1") {
		t.Errorf("Error() = %q, want exit code", err.Error())
	}
	if !strings.Contains(err.Error(), "gcc -o toolbox main.c") {
		t.Errorf("Error() = %q, want command line", err.Error())
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Error("expected BuildError to unwrap to *exec.ExitError")
	}
	if IsBuildError(errors.New("other")) {
		t.Error("IsBuildError() = true for unrelated error")
	}
}
