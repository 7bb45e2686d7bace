package blockcache

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with blockcache-specific helpers.
// Field names are consistent across all cache events.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithDevice tags every record with the device geometry.
func (l *Logger) WithDevice(blockSize int, numBlocks uint32) *Logger {
	return &Logger{
		Logger: l.Logger.With("block_size", blockSize, "blocks", numBlocks),
	}
}

// LogEviction logs a block leaving the cache.
func (l *Logger) LogEviction(ctx context.Context, sector uint32, dirty bool) {
	l.DebugContext(ctx, "block evicted",
		"sector", sector,
		"dirty", dirty,
	)
}

// LogWriteBack logs a slow write-back. Fast ones are not worth a record.
func (l *Logger) LogWriteBack(ctx context.Context, background bool, duration time.Duration) {
	l.WarnContext(ctx, "slow write-back",
		"background", background,
		"duration", duration,
	)
}

// LogFlush logs a flush pass.
func (l *Logger) LogFlush(ctx context.Context, blocks int, duration time.Duration) {
	if blocks == 0 {
		return
	}

	l.DebugContext(ctx, "flush completed",
		"blocks", blocks,
		"duration", duration,
	)
}

// LogPrefetchDropped logs a prefetch hint lost to a full queue.
func (l *Logger) LogPrefetchDropped(ctx context.Context, sector uint32) {
	l.WarnContext(ctx, "prefetch dropped: read-ahead queue full",
		"sector", sector,
	)
}

// LogClose logs cache shutdown.
func (l *Logger) LogClose(ctx context.Context, stats Stats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"dirty", stats.Dirty,
			"error", err,
		)
		return
	}

	l.InfoContext(ctx, "cache closed",
		"hits", stats.Hits,
		"misses", stats.Misses,
		"evictions", stats.Evictions,
		"write_backs", stats.WriteBacks,
	)
}
