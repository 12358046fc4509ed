package nananiji

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with generator-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithPreset adds a preset field to the logger.
func (l *Logger) WithPreset(name string) *Logger {
	return &Logger{Logger: l.Logger.With("preset", name)}
}

// WithTarget adds a target field to the logger.
func (l *Logger) WithTarget(n int64) *Logger {
	return &Logger{Logger: l.Logger.With("target", n)}
}

// LogBuild logs the construction of a generator.
func (l *Logger) LogBuild(ctx context.Context, stats Stats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "generator build failed",
			"search_depth", stats.SearchDepth,
			"denom_cut", stats.DenomCut,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "generator built",
		"search_depth", stats.SearchDepth,
		"denom_cut", stats.DenomCut,
		"known", stats.Known,
		"rules", stats.Rules,
		"rules_before_shrink", stats.RulesBeforeShrink,
		"divisor", stats.Divisor,
		"shrunk", stats.Shrunk,
		"elapsed", stats.BuildTime,
	)
}

// LogGenerate logs a generation request. Successes are logged at debug level.
func (l *Logger) LogGenerate(ctx context.Context, n int64, steps int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "generate failed",
			"target", n,
			"steps", steps,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "generate completed",
		"target", n,
		"steps", steps,
	)
}

// LogSave logs a snapshot write.
func (l *Logger) LogSave(ctx context.Context, name string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "generator save failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "generator saved",
		"name", name,
		"bytes", size,
	)
}

// LogLoad logs a snapshot read.
func (l *Logger) LogLoad(ctx context.Context, name string, size int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "generator load failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "generator loaded",
		"name", name,
		"bytes", size,
		"elapsed", elapsed,
	)
}
