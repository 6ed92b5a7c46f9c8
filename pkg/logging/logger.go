// Package logging writes the per-session toolbox log. Every component of one
// process appends to <log-dir>/<session-id>-toolbox.log.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const logFlags = log.Ldate | log.Ltime | log.Lmicroseconds

var (
	sessionID     string
	sessionIDOnce sync.Once
)

func session() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// sink is the destination shared by a logger and everything derived from it.
type sink struct {
	out  *log.Logger
	file *os.File
	path string
	once sync.Once
}

func (s *sink) close() error {
	var err error
	s.once.Do(func() {
		if s.file != nil {
			err = s.file.Close()
		}
	})
	return err
}

// Logger tags entries with a component name and a level. There is no level
// filtering; the log file is a debugging aid, not user output.
type Logger struct {
	component string
	sink      *sink
}

// NewLogger opens the session log under logDir for component.
//
// On failure it returns the error together with a logger that drops
// everything, so callers may report the problem and carry on.
func NewLogger(logDir, component string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return Discard(component), fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, session()+"-toolbox.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return Discard(component), fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		component: component,
		sink:      &sink{out: log.New(file, "", logFlags), file: file, path: path},
	}, nil
}

// Discard returns a logger that drops everything.
func Discard(component string) *Logger {
	return &Logger{
		component: component,
		sink:      &sink{out: log.New(io.Discard, "", 0)},
	}
}

// With returns a logger for another component writing to the same file.
func (l *Logger) With(component string) *Logger {
	return &Logger{component: component, sink: l.sink}
}

func (l *Logger) write(level, format string, v ...interface{}) {
	l.sink.out.Printf("[%s] [%s] %s", l.component, level, fmt.Sprintf(format, v...))
}

func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.write("INFO", format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.write("WARN", format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// SessionID identifies this process in log file names.
func (l *Logger) SessionID() string {
	return session()
}

// LogPath returns the log file path, empty for a discarding logger.
func (l *Logger) LogPath() string {
	return l.sink.path
}

// Close closes the shared file. Calling it more than once, or on a derived
// logger, is safe; later writes are dropped by the closed file.
func (l *Logger) Close() error {
	return l.sink.close()
}
