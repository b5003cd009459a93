// Package logger wraps zap behind a small context-aware interface.
package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

type Field struct {
	Key   string
	Value interface{}
}

func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Err is shorthand for F("error", err).
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func ContextWithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

type zapLogger struct {
	zl *zap.Logger
}

// New builds a production zap logger at the given level. Format "console"
// switches to the human readable encoder.
func New(level, format string) (Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	if format == "console" {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zl, err := config.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{zl: zl}, nil
}

// NewZap adapts an existing zap logger; tests pass zaptest/observer cores here.
func NewZap(zl *zap.Logger) Logger {
	return &zapLogger{zl: zl}
}

func NewNop() Logger {
	return &zapLogger{zl: zap.NewNop()}
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.zl.Info(msg, l.fields(ctx, fields)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.zl.Error(msg, l.fields(ctx, fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.zl.Warn(msg, l.fields(ctx, fields)...)
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.zl.Debug(msg, l.fields(ctx, fields)...)
}

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{zl: l.zl.With(toZap(fields)...)}
}

func (l *zapLogger) Sync() error {
	return l.zl.Sync()
}

func (l *zapLogger) fields(ctx context.Context, fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+2)
	if id := RequestIDFromContext(ctx); id != "" {
		out = append(out, zap.String("request_id", id))
	}
	if uid, ok := UserIDFromContext(ctx); ok {
		out = append(out, zap.Int64("user_id", uid))
	}
	return append(out, toZap(fields)...)
}

func toZap(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok && f.Key == "error" {
			out = append(out, zap.Error(err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
