package blockcache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/blockcache/internal/cache"
)

// MetricsCollector defines an interface for collecting cache metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
// Methods are called on the hot path and must not block.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    hits   prometheus.Counter
//	    misses prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordHit()  { p.hits.Inc() }
//	func (p *PrometheusCollector) RecordMiss() { p.misses.Inc() }
type MetricsCollector interface {
	// RecordHit is called when a read or write found its sector cached.
	RecordHit()

	// RecordMiss is called when a read or write had to evict.
	RecordMiss()

	// RecordEviction is called when a block leaves the cache.
	// dirty is true if it had to be written back first.
	RecordEviction(dirty bool)

	// RecordWriteBack is called after a block was written to the device.
	// background is true for writes issued by the flush daemon.
	RecordWriteBack(background bool, duration time.Duration)

	// RecordFlush is called after each flush pass.
	RecordFlush(blocks int, duration time.Duration)

	// RecordPrefetch is called for every prefetch hint.
	RecordPrefetch(queued, dropped bool)

	// RecordQueueDepth reports the read-ahead queue length.
	RecordQueueDepth(depth int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordHit()                          {}
func (NoopMetricsCollector) RecordMiss()                         {}
func (NoopMetricsCollector) RecordEviction(bool)                 {}
func (NoopMetricsCollector) RecordWriteBack(bool, time.Duration) {}
func (NoopMetricsCollector) RecordFlush(int, time.Duration)      {}
func (NoopMetricsCollector) RecordPrefetch(bool, bool)           {}
func (NoopMetricsCollector) RecordQueueDepth(int)                {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	Hits                 atomic.Int64
	Misses               atomic.Int64
	Evictions            atomic.Int64
	DirtyEvictions       atomic.Int64
	WriteBacks           atomic.Int64
	BackgroundWriteBacks atomic.Int64
	WriteBackTotalNanos  atomic.Int64
	Flushes              atomic.Int64
	FlushedBlocks        atomic.Int64
	Prefetches           atomic.Int64
	PrefetchesQueued     atomic.Int64
	PrefetchesDropped    atomic.Int64
	MaxQueueDepth        atomic.Int64
}

// RecordHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordHit() { b.Hits.Add(1) }

// RecordMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMiss() { b.Misses.Add(1) }

// RecordEviction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEviction(dirty bool) {
	b.Evictions.Add(1)
	if dirty {
		b.DirtyEvictions.Add(1)
	}
}

// RecordWriteBack implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWriteBack(background bool, duration time.Duration) {
	b.WriteBacks.Add(1)
	b.WriteBackTotalNanos.Add(duration.Nanoseconds())
	if background {
		b.BackgroundWriteBacks.Add(1)
	}
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(blocks int, _ time.Duration) {
	b.Flushes.Add(1)
	b.FlushedBlocks.Add(int64(blocks))
}

// RecordPrefetch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPrefetch(queued, dropped bool) {
	b.Prefetches.Add(1)
	if queued {
		b.PrefetchesQueued.Add(1)
	}
	if dropped {
		b.PrefetchesDropped.Add(1)
	}
}

// RecordQueueDepth implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQueueDepth(depth int) {
	d := int64(depth)
	for {
		cur := b.MaxQueueDepth.Load()
		if d <= cur || b.MaxQueueDepth.CompareAndSwap(cur, d) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		Hits:                 b.Hits.Load(),
		Misses:               b.Misses.Load(),
		Evictions:            b.Evictions.Load(),
		DirtyEvictions:       b.DirtyEvictions.Load(),
		WriteBacks:           b.WriteBacks.Load(),
		BackgroundWriteBacks: b.BackgroundWriteBacks.Load(),
		Flushes:              b.Flushes.Load(),
		FlushedBlocks:        b.FlushedBlocks.Load(),
		Prefetches:           b.Prefetches.Load(),
		PrefetchesQueued:     b.PrefetchesQueued.Load(),
		PrefetchesDropped:    b.PrefetchesDropped.Load(),
		MaxQueueDepth:        b.MaxQueueDepth.Load(),
	}

	if s.WriteBacks > 0 {
		s.WriteBackAvgNanos = b.WriteBackTotalNanos.Load() / s.WriteBacks
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}

	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Hits                 int64
	Misses               int64
	HitRatio             float64
	Evictions            int64
	DirtyEvictions       int64
	WriteBacks           int64
	BackgroundWriteBacks int64
	WriteBackAvgNanos    int64
	Flushes              int64
	FlushedBlocks        int64
	Prefetches           int64
	PrefetchesQueued     int64
	PrefetchesDropped    int64
	MaxQueueDepth        int64
}

// slowWriteBack is the write-back latency above which a record is logged.
const slowWriteBack = 100 * time.Millisecond

// observer feeds internal cache events to the collector and the logger.
type observer struct {
	mc     MetricsCollector
	logger *Logger
}

var _ cache.MetricsObserver = (*observer)(nil)

func (o *observer) OnHit()  { o.mc.RecordHit() }
func (o *observer) OnMiss() { o.mc.RecordMiss() }

func (o *observer) OnEviction(sector uint32, dirty bool) {
	o.mc.RecordEviction(dirty)
	o.logger.LogEviction(context.Background(), sector, dirty)
}

func (o *observer) OnWriteBack(background bool, d time.Duration) {
	o.mc.RecordWriteBack(background, d)
	if d > slowWriteBack {
		o.logger.LogWriteBack(context.Background(), background, d)
	}
}

func (o *observer) OnFlush(blocks int, d time.Duration) {
	o.mc.RecordFlush(blocks, d)
	o.logger.LogFlush(context.Background(), blocks, d)
}

func (o *observer) OnPrefetch(sector uint32, queued, dropped bool) {
	o.mc.RecordPrefetch(queued, dropped)
	if dropped {
		o.logger.LogPrefetchDropped(context.Background(), sector)
	}
}

func (o *observer) OnQueueDepth(depth int) { o.mc.RecordQueueDepth(depth) }
