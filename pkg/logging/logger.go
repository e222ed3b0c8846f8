// Package logging provides component-scoped diagnostic logging for surf.
//
// The server speaks its wire protocol on stdout, so every diagnostic line
// must go to a side channel. The default sink is stderr; an additional file
// sink can be attached for post-mortem inspection. Nothing in this package
// ever writes to stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level controls which log entries a Logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a level name from configuration into a Level.
// Unknown names default to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(name) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

var (
	// Global session ID for the current process
	sessionID     string
	sessionIDOnce sync.Once
)

// getSessionID returns or creates the session ID for this process
func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// Logger writes structured, component-tagged log lines to one or more sinks.
// All methods are safe for concurrent use.
type Logger struct {
	sessionID string
	component string
	level     Level
	mu        sync.Mutex
	out       io.Writer
}

// New creates a logger for a specific component. With no sinks the logger
// writes to stderr; extra sinks (such as a log file) receive a copy of
// every line.
func New(component string, sinks ...io.Writer) *Logger {
	var out io.Writer = os.Stderr
	if len(sinks) > 0 {
		out = io.MultiWriter(append([]io.Writer{os.Stderr}, sinks...)...)
	}
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		level:     LevelInfo,
		out:       out,
	}
}

// NewWithOutput creates a logger writing only to the given sink.
// Intended for tests that need to capture output.
func NewWithOutput(component string, out io.Writer) *Logger {
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		level:     LevelInfo,
		out:       out,
	}
}

// SetLevel sets the minimum level this logger emits.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// formatLogEntry creates a structured log entry with timestamp, component, and level
func (l *Logger) formatLogEntry(level Level, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	return fmt.Sprintf("[%s] [%s] [%s] %s\n", timestamp, l.component, level, message)
}

func (l *Logger) logf(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}
	message := fmt.Sprintf(format, v...)
	fmt.Fprint(l.out, l.formatLogEntry(level, message))
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.logf(LevelDebug, format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.logf(LevelInfo, format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.logf(LevelWarn, format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.logf(LevelError, format, v...)
}

// SessionID returns the current session ID
func (l *Logger) SessionID() string {
	return l.sessionID
}

// GetSessionID returns the current global session ID
func GetSessionID() string {
	return getSessionID()
}
