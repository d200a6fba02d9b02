// logger.go
package logger

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the level of logging. Higher values denote more severe log messages.
type LogLevel int

const (
	// LogLevelDebug is for messages that are useful during software debugging.
	LogLevelDebug LogLevel = -1 // Zap's DEBUG level
	// LogLevelInfo is for informational messages, indicating normal operation.
	LogLevelInfo LogLevel = 0 // Zap's INFO level
	// LogLevelWarn is for messages that highlight potential issues in the system.
	LogLevelWarn LogLevel = 1 // Zap's WARN level
	// LogLevelError is for messages that highlight errors in the application's execution.
	LogLevelError LogLevel = 2 // Zap's ERROR level
	// LogLevelDPanic is for severe error conditions that are actionable in development.
	LogLevelDPanic LogLevel = 3 // Zap's DPANIC level
	// LogLevelPanic is for severe error conditions that should cause the program to panic.
	LogLevelPanic LogLevel = 4 // Zap's PANIC level
	// LogLevelFatal is for errors that require immediate program termination.
	LogLevelFatal LogLevel = 5 // Zap's FATAL level
	// LogLevelNone silences the logger.
	LogLevelNone LogLevel = 6
)

// ParseLogLevelFromString takes a string representation of the log level and returns the corresponding LogLevel.
// Both the constant names ("LogLevelWarn") and the short forms ("warn") are accepted.
func ParseLogLevelFromString(levelStr string) LogLevel {
	switch levelStr {
	case "LogLevelDebug", "debug":
		return LogLevelDebug
	case "LogLevelInfo", "info":
		return LogLevelInfo
	case "LogLevelWarn", "warn":
		return LogLevelWarn
	case "LogLevelError", "error":
		return LogLevelError
	case "LogLevelDPanic", "dpanic":
		return LogLevelDPanic
	case "LogLevelPanic", "panic":
		return LogLevelPanic
	case "LogLevelFatal", "fatal":
		return LogLevelFatal
	default:
		return LogLevelNone
	}
}

// Logger interface with structured logging capabilities at various levels, plus the
// request lifecycle helpers used by the dashboard API client.
type Logger interface {
	SetLevel(level LogLevel)
	GetLogLevel() LogLevel
	With(fields ...zapcore.Field) Logger

	Debug(msg string, fields ...zapcore.Field)
	Info(msg string, fields ...zapcore.Field)
	Warn(msg string, fields ...zapcore.Field)
	Error(msg string, fields ...zapcore.Field) error
	Panic(msg string, fields ...zapcore.Field)
	Fatal(msg string, fields ...zapcore.Field)

	LogRequestStart(requestID string, method string, url string, headers map[string][]string)
	LogRequestEnd(requestID string, method string, url string, statusCode int, duration time.Duration)
	LogError(event string, method string, url string, statusCode int, err error)
	LogAuthFailure(method string, url string, shop string)
	LogCancelled(method string, url string, err error)
}

// defaultLogger is an implementation of the Logger interface using Uber's zap logging library.
// The logLevel field gates every call before it reaches zap.
type defaultLogger struct {
	logger   *zap.Logger
	logLevel LogLevel
}

// NewLogger wraps an existing zap logger. A nil zap logger yields a no-op logger.
func NewLogger(zl *zap.Logger, level LogLevel) Logger {
	if zl == nil {
		zl = zap.NewNop()
	}
	return &defaultLogger{logger: zl, logLevel: level}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return &defaultLogger{logger: zap.NewNop(), logLevel: LogLevelNone}
}

// SetLevel updates the logging level of the logger.
func (d *defaultLogger) SetLevel(level LogLevel) {
	d.logLevel = level
}

// GetLogLevel returns the current logging level of the logger.
func (d *defaultLogger) GetLogLevel() LogLevel {
	return d.logLevel
}

// ToZapFields converts a variadic list of key-value pairs into a slice of Zap fields.
// Pairs whose key is not a string are skipped.
func ToZapFields(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

// Debug logs a message at the Debug level.
func (d *defaultLogger) Debug(msg string, fields ...zapcore.Field) {
	if d.logLevel <= LogLevelDebug {
		d.logger.Debug(msg, fields...)
	}
}

// Info logs a message at the Info level.
func (d *defaultLogger) Info(msg string, fields ...zapcore.Field) {
	if d.logLevel <= LogLevelInfo {
		d.logger.Info(msg, fields...)
	}
}

// Warn logs a message at the Warn level.
func (d *defaultLogger) Warn(msg string, fields ...zapcore.Field) {
	if d.logLevel <= LogLevelWarn {
		d.logger.Warn(msg, fields...)
	}
}

// Error logs a message at the Error level and returns the message as an error so
// call sites can log and return in one statement.
func (d *defaultLogger) Error(msg string, fields ...zapcore.Field) error {
	if d.logLevel <= LogLevelError {
		d.logger.Error(msg, fields...)
	}
	return errors.New(msg)
}

// Panic logs a message at the Panic level and then panics.
func (d *defaultLogger) Panic(msg string, fields ...zapcore.Field) {
	if d.logLevel <= LogLevelPanic {
		d.logger.Panic(msg, fields...)
	}
}

// Fatal logs a message at the Fatal level and then calls os.Exit(1).
func (d *defaultLogger) Fatal(msg string, fields ...zapcore.Field) {
	if d.logLevel <= LogLevelFatal {
		d.logger.Fatal(msg, fields...)
	}
}

// With adds contextual fields to the logger, returning a new logger instance with the context.
func (d *defaultLogger) With(fields ...zapcore.Field) Logger {
	return &defaultLogger{
		logger:   d.logger.With(fields...),
		logLevel: d.logLevel,
	}
}
