package perscache

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// LogLevel is the minimum severity a logger reports.
type LogLevel int

const (
	// LogLevelDebug includes per-call hit and miss traces
	LogLevelDebug LogLevel = iota

	// LogLevelWarn includes degraded reads recovered as misses
	LogLevelWarn

	// LogLevelError includes only persistence failures
	LogLevelError

	// LogLevelNone disables all logging
	LogLevelNone
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// Logger receives the cache's diagnostics: hits and misses at Debug,
// failed reads at Warn, failed writes at Error.
type Logger interface {
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// F is a convenience function to create a logging field
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// DefaultLogger writes leveled, field-suffixed lines through the
// standard log package.
type DefaultLogger struct {
	level LogLevel
	out   *log.Logger
}

// NewDefaultLogger creates a stdout logger reporting at level and above
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	return &DefaultLogger{
		level: level,
		out:   log.New(os.Stdout, "[PERSCACHE] ", log.LstdFlags|log.Lmicroseconds),
	}
}

// Debug logs a debug message
func (dl *DefaultLogger) Debug(msg string, fields ...Field) {
	if dl.level <= LogLevelDebug {
		dl.print("DEBUG", msg, fields)
	}
}

// Warn logs a warning message
func (dl *DefaultLogger) Warn(msg string, fields ...Field) {
	if dl.level <= LogLevelWarn {
		dl.print("WARN", msg, fields)
	}
}

// Error logs an error message
func (dl *DefaultLogger) Error(msg string, fields ...Field) {
	if dl.level <= LogLevelError {
		dl.print("ERROR", msg, fields)
	}
}

func (dl *DefaultLogger) print(level, msg string, fields []Field) {
	if len(fields) == 0 {
		dl.out.Printf("[%s] %s", level, msg)
		return
	}
	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = fmt.Sprintf("%s=%v", field.Key, field.Value)
	}
	dl.out.Printf("[%s] %s | %s", level, msg, strings.Join(parts, " "))
}

// NoOpLogger discards all messages. It is the library default so a
// decorated function never logs unless asked to.
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that discards all messages
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (*NoOpLogger) Debug(string, ...Field) {}
func (*NoOpLogger) Warn(string, ...Field)  {}
func (*NoOpLogger) Error(string, ...Field) {}
