package cache

import (
	"log/slog"
	"time"

	"github.com/hupe1980/blockcache/resource"
)

// Options configures a Cache.
type Options struct {
	// Capacity is the number of cache entries (blocks held in memory).
	// Default: 64
	Capacity int

	// FlushInterval is the period of the background flush daemon.
	// Zero or negative disables periodic flushing; Flush and Close still write back.
	// Default: 10s
	FlushInterval time.Duration

	// ReadAheadDepth bounds the number of pending prefetch requests.
	// Requests beyond the bound are dropped.
	// Default: 64
	ReadAheadDepth int

	// MaxEvictionWait bounds how long a miss waits for an entry to be released
	// when every entry is busy. It then fails with ErrCacheExhausted.
	// Zero or negative waits indefinitely.
	// Default: 30s
	MaxEvictionWait time.Duration

	// Daemons starts the flush and read-ahead goroutines.
	// Tests that drive flushing and prefetching by hand turn this off.
	// Default: true
	Daemons bool

	// Logger receives debug and warning events. Nil discards them.
	Logger *slog.Logger

	// Metrics observes cache events. Nil uses NoopMetricsObserver.
	Metrics MetricsObserver

	// Resources paces background device I/O and accounts for the memory
	// held by entry buffers. Nil means unlimited.
	Resources *resource.Controller
}

// DefaultOptions are the options used by New before applying overrides.
var DefaultOptions = Options{
	Capacity:        64,
	FlushInterval:   10 * time.Second,
	ReadAheadDepth:  64,
	MaxEvictionWait: 30 * time.Second,
	Daemons:         true,
}
