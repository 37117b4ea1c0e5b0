package logging

import (
	"context"
	"fmt"
	"log"
	"maps"
	"os"
)

// DefaultLogger is a colored logger writing every level to stderr.
// Keeping stdout clean matters here: the CLI prints progress markers and a
// final JSON line on stdout that downstream tooling parses.
type DefaultLogger struct {
	stderrLogger *log.Logger
	level        Level
	fields       Fields
	useColors    bool
}

// NewDefaultLogger creates a new default logger, colored when stderr is a terminal
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		stderrLogger: log.New(os.Stderr, "", log.LstdFlags),
		level:        InfoLevel,
		fields:       make(Fields),
		useColors:    isTerminal(),
	}
}

// NewDefaultLoggerNoColor creates a new default logger without colored output
func NewDefaultLoggerNoColor() *DefaultLogger {
	return &DefaultLogger{
		stderrLogger: log.New(os.Stderr, "", log.LstdFlags),
		level:        InfoLevel,
		fields:       make(Fields),
		useColors:    false,
	}
}

// isTerminal checks if stderr supports colors
func isTerminal() bool {
	if fileInfo, _ := os.Stderr.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func (d *DefaultLogger) formatMessage(level Level, err error, msg string, fields ...Fields) string {
	// Merge all fields
	allFields := make(Fields)
	maps.Copy(allFields, d.fields)
	for _, f := range fields {
		maps.Copy(allFields, f)
	}

	logMsg := fmt.Sprintf("[%s] %s", level.String(), msg)

	if err != nil {
		logMsg += fmt.Sprintf(": %v", err)
	}

	if len(allFields) > 0 {
		logMsg += fmt.Sprintf(" %+v", allFields)
	}

	if d.useColors {
		switch level {
		case WarnLevel:
			logMsg = ColorYellow + logMsg + ColorReset
		case ErrorLevel:
			logMsg = ColorRed + logMsg + ColorReset
		case FatalLevel:
			logMsg = ColorBold + ColorRed + logMsg + ColorReset
		}
	}

	return logMsg
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	if d.level > DebugLevel {
		return
	}
	d.stderrLogger.Println(d.formatMessage(DebugLevel, nil, msg, fields...))
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	if d.level > InfoLevel {
		return
	}
	d.stderrLogger.Println(d.formatMessage(InfoLevel, nil, msg, fields...))
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	if d.level > WarnLevel {
		return
	}
	d.stderrLogger.Println(d.formatMessage(WarnLevel, nil, msg, fields...))
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	if d.level > ErrorLevel {
		return
	}
	d.stderrLogger.Println(d.formatMessage(ErrorLevel, err, msg, fields...))
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.stderrLogger.Println(d.formatMessage(FatalLevel, err, msg, fields...))
	os.Exit(1)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	merged := make(Fields)
	maps.Copy(merged, d.fields)
	maps.Copy(merged, fields)
	return &DefaultLogger{
		stderrLogger: d.stderrLogger,
		level:        d.level,
		fields:       merged,
		useColors:    d.useColors,
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := ctx.Value(loggerFieldsKey{}).(Fields); ok {
		return d.WithFields(fields)
	}
	return d
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// loggerFieldsKey is the context key for per-request logging fields
type loggerFieldsKey struct{}

// ContextWithFields attaches logging fields to a context
func ContextWithFields(ctx context.Context, fields Fields) context.Context {
	return context.WithValue(ctx, loggerFieldsKey{}, fields)
}

// NoOpLogger discards all log output
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
