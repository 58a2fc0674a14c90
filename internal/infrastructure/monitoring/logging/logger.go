// Package logging defines the Logger contract the rest of LitiDocket codes
// against, plus the zap implementation behind it.  Components take a Logger
// in their constructor; nothing outside this package imports zap directly.
package logging

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger emits structured log entries.  Child loggers created by With and
// Named share the parent's sink; the parent is never mutated.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	// Error records a failure scoped to one request or operation.
	Error(msg string, fields ...Field)
	// Fatal logs and then exits the process.  Startup wiring only.
	Fatal(msg string, fields ...Field)
	// With returns a child carrying the given fields on every entry.
	With(fields ...Field) Logger
	// Named returns a child whose entries carry a dotted component name,
	// "docket" plus Named("cache") yielding "docket.cache".
	Named(name string) Logger
}

// Field is one key/value attached to an entry.  The typed constructors below
// are preferred over building Field literals at call sites.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, val string) Field { return Field{key, val} }

func Int(key string, val int) Field { return Field{key, val} }

func Int64(key string, val int64) Field { return Field{key, val} }

func Float64(key string, val float64) Field { return Field{key, val} }

func Bool(key string, val bool) Field { return Field{key, val} }

func Duration(key string, val time.Duration) Field { return Field{key, val} }

func Any(key string, val interface{}) Field { return Field{key, val} }

// Err puts an error under the conventional "error" key.  A nil error still
// produces a field so grep-by-key stays reliable.
func Err(err error) Field {
	if err == nil {
		return Field{"error", "<nil>"}
	}
	return Field{"error", err.Error()}
}

// LogConfig selects level, encoding, and sinks for NewLogger.  The zero value
// is usable: info-level JSON to stdout.
type LogConfig struct {
	// Level is the minimum severity emitted: debug, info, warn, or error.
	Level string `yaml:"level" json:"level"`

	// Format is "json" for aggregation pipelines or "text" (alias
	// "console") for local development.
	Format string `yaml:"format" json:"format"`

	// OutputPaths and ErrorOutputPaths name the sinks for entries and for
	// zap's own write errors.  "stdout" and "stderr" are understood;
	// anything else is treated as a file path.
	OutputPaths      []string `yaml:"output_paths" json:"output_paths"`
	ErrorOutputPaths []string `yaml:"error_output_paths" json:"error_output_paths"`
}

// NewLogger builds a zap-backed Logger from cfg.  The only error path is a
// sink that cannot be opened.
func NewLogger(cfg LogConfig) (Logger, error) {
	console := cfg.Format == "text" || cfg.Format == "console"

	enc := zap.NewProductionEncoderConfig()
	encoding := "json"
	if console {
		enc = zap.NewDevelopmentEncoderConfig()
		encoding = "console"
	}
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(levelFor(cfg.Level)),
		Development:      console,
		Encoding:         encoding,
		EncoderConfig:    enc,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: cfg.ErrorOutputPaths,
	}
	if len(zc.OutputPaths) == 0 {
		zc.OutputPaths = []string{"stdout"}
	}
	if len(zc.ErrorOutputPaths) == 0 {
		zc.ErrorOutputPaths = []string{"stderr"}
	}

	z, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: building zap logger: %w", err)
	}
	return &zapLogger{z: z}, nil
}

// levelFor maps a config string to a zap level.  Unrecognised input lands on
// info so a typo in config degrades verbosity instead of crashing startup.
func levelFor(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

type zapLogger struct {
	z *zap.Logger
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, zapFields(fields)...) }

func (l *zapLogger) Info(msg string, fields ...Field) { l.z.Info(msg, zapFields(fields)...) }

func (l *zapLogger) Warn(msg string, fields ...Field) { l.z.Warn(msg, zapFields(fields)...) }

func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, zapFields(fields)...) }

func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, zapFields(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(zapFields(fields)...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}

// zapFields translates Field values, keeping the common types on zap's
// reflection-free constructors.
func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		switch v := f.Value.(type) {
		case string:
			out[i] = zap.String(f.Key, v)
		case int:
			out[i] = zap.Int(f.Key, v)
		case int64:
			out[i] = zap.Int64(f.Key, v)
		case float64:
			out[i] = zap.Float64(f.Key, v)
		case bool:
			out[i] = zap.Bool(f.Key, v)
		case time.Duration:
			out[i] = zap.Duration(f.Key, v)
		case error:
			out[i] = zap.NamedError(f.Key, v)
		default:
			out[i] = zap.Any(f.Key, v)
		}
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}

func (nopLogger) Info(string, ...Field) {}

func (nopLogger) Warn(string, ...Field) {}

func (nopLogger) Error(string, ...Field) {}

func (nopLogger) Fatal(string, ...Field) {}

func (n nopLogger) With(...Field) Logger { return n }

func (n nopLogger) Named(string) Logger { return n }

// NewNopLogger returns a Logger that discards everything.  Tests use it
// wherever output would only be noise.
func NewNopLogger() Logger { return nopLogger{} }
