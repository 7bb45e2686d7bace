package cache

import (
	"context"
	"time"
)

// Flush writes every dirty block back to the device and returns how many were
// written. Entries that are being written, flushed, or evicted at the time of
// the pass are skipped; they are covered by the next pass or by their own
// eviction.
func (c *Cache) Flush() int {
	return c.flush(context.Background(), false)
}

func (c *Cache) flush(ctx context.Context, background bool) int {
	start := time.Now()
	n := 0

	for _, e := range c.entries {
		e.mu.Lock()
		if !e.dirty || e.flushing() || e.evicting() || e.writers > 0 {
			e.mu.Unlock()
			continue
		}

		e.state = stateFlushing
		sector := e.sector
		e.mu.Unlock()

		// Readers may still copy from content; writers and evictors wait.
		c.writeBack(e, sector, background)
		e.finishWriteBack()
		c.idle.notify()
		n++

		if background && !c.pace(ctx) {
			break
		}
	}

	c.stats.flushes.Add(1)
	c.metrics.OnFlush(n, time.Since(start))

	return n
}

func (c *Cache) writeBack(e *entry, sector uint32, background bool) {
	start := time.Now()
	c.deviceWrite(sector, e.content)

	c.stats.writeBacks.Add(1)
	c.metrics.OnWriteBack(background, time.Since(start))
}

// pace charges one block against the background I/O budget. It reports false
// once the daemon is shutting down.
func (c *Cache) pace(ctx context.Context) bool {
	if err := c.rc.AcquireIO(ctx, c.blockSize); err != nil {
		if ctx.Err() != nil {
			return false
		}

		// The bucket is smaller than one block; continue unpaced.
		c.logger.Warn("background io limit unusable", "block_size", c.blockSize, "error", err)
	}

	return true
}

func (c *Cache) flushDaemon(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if !c.rc.TryAcquireBackground() {
			c.logger.Debug("flush skipped: background slots busy")
			continue
		}

		start := time.Now()
		n := c.flush(ctx, true)
		c.rc.ReleaseBackground()

		if n > 0 {
			c.logger.Debug("periodic flush", "blocks", n, "duration", time.Since(start))
		}
	}
}
