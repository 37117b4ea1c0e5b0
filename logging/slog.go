package logging

import (
	"context"
	"log/slog"
	"maps"
	"os"
)

// SlogAdapter bridges a *slog.Logger (e.g. one rendered with tint) into the
// Logger interface so the CLI can install a single handler for the whole
// pipeline.
type SlogAdapter struct {
	logger *slog.Logger
	level  *slog.LevelVar
	fields Fields
}

// FromSlog wraps an slog logger. The level var controls the minimum level;
// pass nil to leave level management to the handler.
func FromSlog(logger *slog.Logger, level *slog.LevelVar) *SlogAdapter {
	return &SlogAdapter{
		logger: logger,
		level:  level,
		fields: make(Fields),
	}
}

func (s *SlogAdapter) attrs(fields ...Fields) []any {
	merged := make(Fields)
	maps.Copy(merged, s.fields)
	for _, f := range fields {
		maps.Copy(merged, f)
	}
	args := make([]any, 0, len(merged)*2)
	for k, v := range merged {
		args = append(args, k, v)
	}
	return args
}

func (s *SlogAdapter) Debug(msg string, fields ...Fields) {
	s.logger.Debug(msg, s.attrs(fields...)...)
}

func (s *SlogAdapter) Info(msg string, fields ...Fields) {
	s.logger.Info(msg, s.attrs(fields...)...)
}

func (s *SlogAdapter) Warn(msg string, fields ...Fields) {
	s.logger.Warn(msg, s.attrs(fields...)...)
}

func (s *SlogAdapter) Error(err error, msg string, fields ...Fields) {
	args := s.attrs(fields...)
	if err != nil {
		args = append(args, "error", err)
	}
	s.logger.Error(msg, args...)
}

func (s *SlogAdapter) Fatal(err error, msg string, fields ...Fields) {
	s.Error(err, msg, fields...)
	os.Exit(1)
}

func (s *SlogAdapter) WithFields(fields Fields) Logger {
	merged := make(Fields)
	maps.Copy(merged, s.fields)
	maps.Copy(merged, fields)
	return &SlogAdapter{logger: s.logger, level: s.level, fields: merged}
}

func (s *SlogAdapter) WithContext(ctx context.Context) Logger {
	if fields, ok := ctx.Value(loggerFieldsKey{}).(Fields); ok {
		return s.WithFields(fields)
	}
	return s
}

func (s *SlogAdapter) SetLevel(level Level) {
	if s.level == nil {
		return
	}
	switch level {
	case DebugLevel:
		s.level.Set(slog.LevelDebug)
	case InfoLevel:
		s.level.Set(slog.LevelInfo)
	case WarnLevel:
		s.level.Set(slog.LevelWarn)
	default:
		s.level.Set(slog.LevelError)
	}
}
