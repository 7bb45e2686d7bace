package cache

import "time"

// MetricsObserver receives cache events. Implementations must be safe for
// concurrent use and must not block.
type MetricsObserver interface {
	// OnHit is called when a lookup finds the sector resident or being installed.
	OnHit()
	// OnMiss is called when a lookup has to evict.
	OnMiss()
	// OnEviction is called when the block at sector leaves the cache.
	OnEviction(sector uint32, dirty bool)
	// OnWriteBack is called after one block was written to the device.
	OnWriteBack(background bool, d time.Duration)
	// OnFlush is called after a flush pass.
	OnFlush(blocks int, d time.Duration)
	// OnPrefetch is called for every prefetch hint. queued is false for a
	// duplicate; dropped is set when the queue was full.
	OnPrefetch(sector uint32, queued, dropped bool)
	// OnQueueDepth reports the read-ahead queue length after it changed.
	OnQueueDepth(depth int)
}

// NoopMetricsObserver ignores all events.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnHit()                          {}
func (NoopMetricsObserver) OnMiss()                         {}
func (NoopMetricsObserver) OnEviction(uint32, bool)         {}
func (NoopMetricsObserver) OnWriteBack(bool, time.Duration) {}
func (NoopMetricsObserver) OnFlush(int, time.Duration)      {}
func (NoopMetricsObserver) OnPrefetch(uint32, bool, bool)   {}
func (NoopMetricsObserver) OnQueueDepth(int)                {}
