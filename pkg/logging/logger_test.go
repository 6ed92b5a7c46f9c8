package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := NewLogger(dir, "test-component")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.component != "test-component" {
		t.Errorf("Expected component 'test-component', got %q", logger.component)
	}

	if logger.SessionID() == "" {
		t.Error("Expected non-empty session ID")
	}

	if _, err := os.Stat(logger.LogPath()); os.IsNotExist(err) {
		t.Errorf("Log file does not exist at %s", logger.LogPath())
	}
}

func TestLoggerFormatting(t *testing.T) {
	logger, err := NewLogger(t.TempDir(), "test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debugf("Debug message")
	logger.Infof("Info message %d", 123)
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	content, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	logContent := string(content)

	expectedPatterns := []string{
		"[test] [DEBUG] Debug message",
		"[test] [INFO] Info message 123",
		"[test] [WARN] Warning message",
		"[test] [ERROR] Error message",
	}

	for _, pattern := range expectedPatterns {
		if !strings.Contains(logContent, pattern) {
			t.Errorf("Log content missing expected pattern: %q\nContent:\n%s", pattern, logContent)
		}
	}
}

func TestMultipleComponents(t *testing.T) {
	dir := t.TempDir()

	logger1, err := NewLogger(dir, "registry")
	if err != nil {
		t.Fatalf("Failed to create logger1: %v", err)
	}
	defer logger1.Close()

	logger2 := logger1.With("build")

	// They share the session ID and log file
	if logger1.SessionID() != logger2.SessionID() {
		t.Errorf("Expected same session ID, got %q and %q", logger1.SessionID(), logger2.SessionID())
	}
	if logger1.LogPath() != logger2.LogPath() {
		t.Errorf("Expected same log path, got %q and %q", logger1.LogPath(), logger2.LogPath())
	}

	logger1.Infof("Message from registry")
	logger2.Infof("Message from build")

	content, err := os.ReadFile(logger1.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	logContent := string(content)
	if !strings.Contains(logContent, "[registry]") {
		t.Error("Log missing registry entries")
	}
	if !strings.Contains(logContent, "[build]") {
		t.Error("Log missing build entries")
	}
}

func TestNewLogger_UnwritableDirectory(t *testing.T) {
	// A regular file where the directory should be
	blocker := filepath.Join(t.TempDir(), "logs")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	logger, err := NewLogger(blocker, "test")
	if err == nil {
		t.Fatal("Expected an error when the log directory cannot be created")
	}
	if logger == nil {
		t.Fatal("Expected a usable logger")
	}
	if logger.LogPath() != "" {
		t.Errorf("Expected empty log path, got %q", logger.LogPath())
	}

	// Must not panic
	logger.Infof("still works")
	if err := logger.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard("test")
	logger.Errorf("dropped %s", "message")

	if logger.LogPath() != "" {
		t.Errorf("Expected empty log path, got %q", logger.LogPath())
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestLoggerClose(t *testing.T) {
	logger, err := NewLogger(t.TempDir(), "test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestLogPathFormat(t *testing.T) {
	logger, err := NewLogger(t.TempDir(), "test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	fileName := filepath.Base(logger.LogPath())
	if !strings.HasSuffix(fileName, "-toolbox.log") {
		t.Errorf("Expected log file to end with '-toolbox.log', got %q", fileName)
	}

	// UUID session IDs contain dashes
	sessionPart := strings.TrimSuffix(fileName, "-toolbox.log")
	if !strings.Contains(sessionPart, "-") {
		t.Errorf("Expected session ID part to contain dashes (UUID format), got %q", sessionPart)
	}
}

func TestDerivedLoggerClose(t *testing.T) {
	logger, err := NewLogger(t.TempDir(), "cli")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	derived := logger.With("build")
	derived.Infof("before close")
	if err := derived.Close(); err != nil {
		t.Errorf("Derived close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close after derived close failed: %v", err)
	}

	// Writes after close are dropped
	logger.Infof("after close")

	content, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "[build] [INFO] before close") {
		t.Errorf("Log missing entry written before close:\n%s", content)
	}
	if strings.Contains(string(content), "after close") {
		t.Errorf("Log contains entry written after close:\n%s", content)
	}
}
