package types

import (
	"errors"
	"testing"
)

func TestBuildEventPredicates(t *testing.T) {
	tests := []struct {
		name      string
		event     *BuildEvent
		isCompile bool
		isEntry   bool
		isError   bool
	}{
		{
			name:  "build start",
			event: NewBuildStartEvent([]string{"echo", "ping"}),
		},
		{
			name:      "compile start",
			event:     NewCompileStartEvent([]string{"gcc", "-o", "out"}),
			isCompile: true,
		},
		{
			name:      "compile complete",
			event:     NewCompileCompleteEvent("/tmp/toolbox", "1s"),
			isCompile: true,
		},
		{
			name:      "compile failed",
			event:     NewCompileFailedEvent([]string{"gcc"}, "1s", errors.New("exit status 1")),
			isCompile: true,
			isError:   true,
		},
		{
			name:    "entry installed",
			event:   NewEntryInstalledEvent("ping", "/bin/ping"),
			isEntry: true,
		},
		{
			name:    "entry pruned",
			event:   NewEntryPrunedEvent("old", "/bin/old"),
			isEntry: true,
		},
		{
			name:  "build complete",
			event: NewBuildCompleteEvent("/tmp/toolbox", []string{"ping"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.IsCompileEvent(); got != tt.isCompile {
				t.Errorf("IsCompileEvent() = %v, want %v", got, tt.isCompile)
			}
			if got := tt.event.IsEntryEvent(); got != tt.isEntry {
				t.Errorf("IsEntryEvent() = %v, want %v", got, tt.isEntry)
			}
			if got := tt.event.IsErrorEvent(); got != tt.isError {
				t.Errorf("IsErrorEvent() = %v, want %v", got, tt.isError)
			}
		})
	}
}

func TestBuildStartEventCarriesTools(t *testing.T) {
	event := NewBuildStartEvent([]string{"echo", "ping"})

	if event.Type != EventTypeBuildStart {
		t.Errorf("Type = %q, want %q", event.Type, EventTypeBuildStart)
	}
	if len(event.Tools) != 2 || event.Tools[0] != "echo" || event.Tools[1] != "ping" {
		t.Errorf("Tools = %v, want [echo ping]", event.Tools)
	}
}
