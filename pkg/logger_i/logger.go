package logger_i

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
)

// Logger tags records with a component name. The default slog logger is
// resolved per call so package-level loggers pick up Init.
type Logger struct {
	section string
	args    []any
}

func Init(isProd bool) {
	options := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}

	var handler slog.Handler
	if isProd {
		options.Level = config.LOG_LEVEL_PROD
		handler = slog.NewJSONHandler(os.Stdout, options)

	} else {
		handler = slog.NewTextHandler(os.Stdout, options)

	}
	newLogger := slog.New(handler)
	slog.SetDefault(newLogger)
}

func NewLogger(section string) *Logger {
	return &Logger{section: section}
}

// TraceID returns the request trace id carried by ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		return v
	}
	return ""
}

// WithTrace attaches a trace id to ctx.
func WithTrace(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, config.TRACE_ID_KEY, traceId)
}

// FromContext returns a logger tagged with the trace id of ctx.
func (l *Logger) FromContext(ctx context.Context) *Logger {
	if trace := TraceID(ctx); trace != "" {
		return l.With("traceId", trace)
	}
	return l
}

func (l *Logger) Info(msg string, args ...any) {
	l.logWithSource(slog.LevelInfo, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.logWithSource(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.logWithSource(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.logWithSource(slog.LevelDebug, msg, args...)
}

func (l *Logger) logWithSource(level slog.Level, msg string, args ...any) {
	ctx := context.Background()
	inner := l.inner()
	if !inner.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	// Skip 3 levels: runtime.Callers, logWithSource, and the Info/Err/Dbg wrapper
	runtime.Callers(3, pcs[:])
	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	record.Add(args...)
	_ = inner.Handler().Handle(ctx, record)
}

func (l *Logger) With(args ...any) *Logger {
	merged := make([]any, 0, len(l.args)+len(args))
	merged = append(merged, l.args...)
	merged = append(merged, args...)
	return &Logger{section: l.section, args: merged}
}

func (l *Logger) inner() *slog.Logger {
	lg := slog.Default().With("component", l.section)
	if len(l.args) > 0 {
		lg = lg.With(l.args...)
	}
	return lg
}
