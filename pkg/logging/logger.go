package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LevelEnv names the environment variable read by DefaultLogger.
const LevelEnv = "BOWTIE_LOG_LEVEL"

// NewJSONLogger creates a JSON logger writing to writer.
func NewJSONLogger(writer io.Writer, level Level) *JSONLogger {
	return &JSONLogger{
		writer: writer,
		level:  level,
		fields: make([]Field, 0),
		mu:     &sync.Mutex{},
	}
}

// NewStderrLogger creates a logger on stderr so reports printed to stdout stay clean.
func NewStderrLogger(level Level) *JSONLogger {
	return NewJSONLogger(os.Stderr, level)
}

func (l *JSONLogger) log(level Level, msg string, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	fieldMap := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		fieldMap[f.Key] = f.Value
	}
	for _, f := range fields {
		fieldMap[f.Key] = f.Value
	}

	entry := LogEntry{
		Time:    time.Now().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}
	if len(fieldMap) > 0 {
		entry.Fields = fieldMap
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.writer, "[ERROR] failed to marshal log entry %q: %v\n", msg, err)
		return
	}

	data = append(data, '\n')
	_, _ = l.writer.Write(data)
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields...) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields...) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields...) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }

// With creates a child logger with fields pre-set. Parent and child share the
// writer lock so interleaved lines stay whole.
func (l *JSONLogger) With(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &JSONLogger{
		writer: l.writer,
		level:  l.level,
		fields: newFields,
		mu:     l.mu,
	}
}

func (l *JSONLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *JSONLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger
)

// DefaultLogger returns the process-wide logger, created on first use from
// BOWTIE_LOG_LEVEL.
func DefaultLogger() Logger {
	defaultMu.RLock()
	logger := defaultLogger
	defaultMu.RUnlock()
	if logger != nil {
		return logger
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		level := InfoLevel
		if levelStr := os.Getenv(LevelEnv); levelStr != "" {
			level = ParseLevel(levelStr)
		}
		defaultLogger = NewStderrLogger(level)
	}
	return defaultLogger
}

// SetDefaultLogger replaces the process-wide logger.
func SetDefaultLogger(logger Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

func Debug(msg string, fields ...Field) { DefaultLogger().Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { DefaultLogger().Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { DefaultLogger().Warn(msg, fields...) }

// ErrorLog logs at error level on the default logger. It is not called Error
// because Error is the error field constructor.
func ErrorLog(msg string, fields ...Field) { DefaultLogger().Error(msg, fields...) }

func With(fields ...Field) Logger { return DefaultLogger().With(fields...) }

// StartStage begins timing a run stage.
func StartStage(logger Logger, msg string, fields ...Field) *Stage {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Stage{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// Elapsed reports the time since the stage started.
func (s *Stage) Elapsed() time.Duration {
	return time.Since(s.start)
}

// End logs the stage at info level with its latency.
func (s *Stage) End(fields ...Field) time.Duration {
	elapsed := s.Elapsed()
	s.logger.Info(s.msg, s.withLatency(elapsed, fields)...)
	return elapsed
}

// EndError logs the stage as failed.
func (s *Stage) EndError(err error) time.Duration {
	elapsed := s.Elapsed()
	s.logger.Error(s.msg, s.withLatency(elapsed, []Field{Error(err)})...)
	return elapsed
}

func (s *Stage) withLatency(elapsed time.Duration, extra []Field) []Field {
	out := make([]Field, 0, len(s.fields)+len(extra)+1)
	out = append(out, s.fields...)
	out = append(out, extra...)
	return append(out, Latency(elapsed))
}
