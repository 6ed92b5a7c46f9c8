package types

// BuildEventType defines the type of event emitted during a build.
type BuildEventType string

const (
	EventTypeBuildStart        BuildEventType = "build_start"        // EventTypeBuildStart indicates a build has started.
	EventTypeCompilerResolved  BuildEventType = "compiler_resolved"  // EventTypeCompilerResolved indicates a compiler was found on PATH.
	EventTypeDispatcherWritten BuildEventType = "dispatcher_written" // EventTypeDispatcherWritten indicates the generated dispatcher was written.
	EventTypeCompileStart      BuildEventType = "compile_start"      // EventTypeCompileStart indicates the compiler process is starting.
	EventTypeCompileComplete   BuildEventType = "compile_complete"   // EventTypeCompileComplete indicates the compiler exited successfully.
	EventTypeCompileFailed     BuildEventType = "compile_failed"     // EventTypeCompileFailed indicates the compiler failed.
	EventTypeEntryInstalled    BuildEventType = "entry_installed"    // EventTypeEntryInstalled indicates one entry point was (re)created.
	EventTypeEntryPruned       BuildEventType = "entry_pruned"       // EventTypeEntryPruned indicates a stale entry point was removed.
	EventTypeBuildComplete     BuildEventType = "build_complete"     // EventTypeBuildComplete indicates the whole build succeeded.
)

// BuildEvent represents a progress event emitted by the build orchestrator.
// Rendering events is left to the caller.
type BuildEvent struct {
	// Type indicates the kind of event.
	Type BuildEventType

	// Name is the tool or entry point name the event refers to, if any.
	Name string

	// Path is the file involved (dispatcher source, binary, link).
	Path string

	// Command is the compiler command line (for compile events).
	Command []string

	// Tools is the ordered tool list (for build start events).
	Tools []string

	// Duration is how long the compile step took.
	Duration string

	// Error contains error information for failure events.
	Error error
}

// EventHandler receives build events. It must not block.
type EventHandler func(*BuildEvent)

// NewBuildStartEvent creates a build start event.
func NewBuildStartEvent(tools []string) *BuildEvent {
	return &BuildEvent{
		Type:  EventTypeBuildStart,
		Tools: tools,
	}
}

// NewCompilerResolvedEvent creates a compiler resolved event.
func NewCompilerResolvedEvent(path string) *BuildEvent {
	return &BuildEvent{
		Type: EventTypeCompilerResolved,
		Path: path,
	}
}

// NewDispatcherWrittenEvent creates a dispatcher written event.
func NewDispatcherWrittenEvent(path string) *BuildEvent {
	return &BuildEvent{
		Type: EventTypeDispatcherWritten,
		Path: path,
	}
}

// NewCompileStartEvent creates a compile start event.
func NewCompileStartEvent(command []string) *BuildEvent {
	return &BuildEvent{
		Type:    EventTypeCompileStart,
		Command: command,
	}
}

// NewCompileCompleteEvent creates a compile complete event.
func NewCompileCompleteEvent(binary, duration string) *BuildEvent {
	return &BuildEvent{
		Type:     EventTypeCompileComplete,
		Path:     binary,
		Duration: duration,
	}
}

// NewCompileFailedEvent creates a compile failed event.
func NewCompileFailedEvent(command []string, duration string, err error) *BuildEvent {
	return &BuildEvent{
		Type:     EventTypeCompileFailed,
		Command:  command,
		Duration: duration,
		Error:    err,
	}
}

// NewEntryInstalledEvent creates an entry point installed event.
func NewEntryInstalledEvent(name, link string) *BuildEvent {
	return &BuildEvent{
		Type: EventTypeEntryInstalled,
		Name: name,
		Path: link,
	}
}

// NewEntryPrunedEvent creates an entry point pruned event.
func NewEntryPrunedEvent(name, link string) *BuildEvent {
	return &BuildEvent{
		Type: EventTypeEntryPruned,
		Name: name,
		Path: link,
	}
}

// NewBuildCompleteEvent creates a build complete event.
func NewBuildCompleteEvent(binary string, tools []string) *BuildEvent {
	return &BuildEvent{
		Type:  EventTypeBuildComplete,
		Path:  binary,
		Tools: tools,
	}
}

// IsCompileEvent returns true if this is a compiler process event.
func (e *BuildEvent) IsCompileEvent() bool {
	return e.Type == EventTypeCompileStart ||
		e.Type == EventTypeCompileComplete ||
		e.Type == EventTypeCompileFailed
}

// IsEntryEvent returns true if this is an entry point event.
func (e *BuildEvent) IsEntryEvent() bool {
	return e.Type == EventTypeEntryInstalled || e.Type == EventTypeEntryPruned
}

// IsErrorEvent returns true if this event carries an error.
func (e *BuildEvent) IsErrorEvent() bool {
	return e.Error != nil
}
