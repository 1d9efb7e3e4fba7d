package logging

import (
	"io"
	"strings"
	"sync"
	"time"
)

// Level is the minimum severity a logger emits.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the upper-case level name used in log entries.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// Logger is the structured logger used across the toolkit.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child logger that always carries fields.
	With(fields ...Field) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// JSONLogger writes one JSON object per line.
type JSONLogger struct {
	writer io.Writer
	level  Level
	fields []Field
	mu     *sync.Mutex
}

// LogEntry is the wire shape of a single line.
type LogEntry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (n NopLogger) With(fields ...Field) Logger     { return n }
func (NopLogger) SetLevel(level Level)              {}
func (NopLogger) GetLevel() Level                   { return ErrorLevel }

// NewNopLogger creates a logger that discards all output.
func NewNopLogger() Logger {
	return NopLogger{}
}

// Stage measures one step of a run (build, sample, analyze, render).
type Stage struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}
