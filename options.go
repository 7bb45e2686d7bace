package blockcache

import (
	"log/slog"
	"time"

	"github.com/hupe1980/blockcache/internal/cache"
	"github.com/hupe1980/blockcache/resource"
)

type options struct {
	capacity         int
	flushInterval    time.Duration
	readAheadDepth   int
	maxEvictionWait  time.Duration
	daemons          bool
	metricsCollector MetricsCollector
	logger           *Logger
	resources        *resource.Controller
	ioLimit          int64
	ioBurst          int
}

func defaultOptions() options {
	d := cache.DefaultOptions
	return options{
		capacity:        d.Capacity,
		flushInterval:   d.FlushInterval,
		readAheadDepth:  d.ReadAheadDepth,
		maxEvictionWait: d.MaxEvictionWait,
		daemons:         d.Daemons,
	}
}

// Option configures a Cache.
type Option func(*options)

// WithCapacity sets the number of blocks held in memory. Default: 64.
func WithCapacity(blocks int) Option {
	return func(o *options) {
		o.capacity = blocks
	}
}

// WithFlushInterval sets the period of the background flush.
// Zero disables periodic flushing; Flush and Close still write back.
// Default: 10s.
func WithFlushInterval(d time.Duration) Option {
	return func(o *options) {
		o.flushInterval = d
	}
}

// WithReadAheadDepth bounds the number of pending prefetch hints.
// Default: 64.
func WithReadAheadDepth(depth int) Option {
	return func(o *options) {
		o.readAheadDepth = depth
	}
}

// WithMaxEvictionWait sets how long a miss waits for an entry to be released
// while every entry is in use before it fails with ErrCacheExhausted.
// Zero or negative waits indefinitely. Default: 30s.
func WithMaxEvictionWait(d time.Duration) Option {
	return func(o *options) {
		o.maxEvictionWait = d
	}
}

// WithMetricsCollector configures a metrics collector for cache events.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &blockcache.BasicMetricsCollector{}
//	c, _ := blockcache.New(dev, blockcache.WithMetricsCollector(metrics))
//	// ... use c ...
//	stats := metrics.GetStats()
//	fmt.Printf("hit ratio: %.2f\n", stats.HitRatio)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := blockcache.NewJSONLogger(slog.LevelDebug)
//	c, _ := blockcache.New(dev, blockcache.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController shares memory, background worker, and background
// I/O limits with other caches attached to rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithIOLimit paces background write-back and read-ahead to bytesPerSec
// with the given burst. It is ignored when WithResourceController is set;
// configure the controller instead.
func WithIOLimit(bytesPerSec int64, burst int) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
		o.ioBurst = burst
	}
}

// WithoutDaemons disables the flush and read-ahead goroutines. Dirty blocks
// are written back only by Flush, eviction, and Close; prefetch hints wait
// for DrainReadAhead.
func WithoutDaemons() Option {
	return func(o *options) {
		o.daemons = false
	}
}
