package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/blockcache/device"
)

// readAhead is a bounded FIFO of sectors to prefetch. A sector is queued at
// most once; membership is tracked in a bitmap.
type readAhead struct {
	mu     sync.Mutex
	ready  *sync.Cond
	queue  []uint32
	queued *roaring.Bitmap
	depth  int
	closed bool
}

func newReadAhead(depth int) *readAhead {
	q := &readAhead{
		queue:  make([]uint32, 0, depth),
		queued: roaring.New(),
		depth:  depth,
	}
	q.ready = sync.NewCond(&q.mu)

	return q
}

// push appends sector. It reports whether the sector was appended and whether
// it was dropped because the queue is full.
func (q *readAhead) push(sector uint32) (queued, dropped bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || q.queued.Contains(sector) {
		return false, false
	}

	if len(q.queue) >= q.depth {
		return false, true
	}

	q.queue = append(q.queue, sector)
	q.queued.Add(sector)
	q.ready.Signal()

	return true, false
}

// remove drops a pending request for sector.
func (q *readAhead) remove(sector uint32) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.queued.Contains(sector) {
		return false
	}

	q.queued.Remove(sector)
	if i := slices.Index(q.queue, sector); i >= 0 {
		q.queue = slices.Delete(q.queue, i, i+1)
	}

	return true
}

// pop waits for the next request. It returns false once the queue is closed.
func (q *readAhead) pop() (uint32, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.queue) == 0 && !q.closed {
		q.ready.Wait()
	}

	return q.popLocked()
}

// tryPop returns the next request without waiting.
func (q *readAhead) tryPop() (uint32, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.popLocked()
}

func (q *readAhead) popLocked() (uint32, bool) {
	if q.closed || len(q.queue) == 0 {
		return device.InvalidSector, false
	}

	sector := q.queue[0]
	q.queue = slices.Delete(q.queue, 0, 1)
	q.queued.Remove(sector)

	return sector, true
}

func (q *readAhead) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.queue)
}

func (q *readAhead) close() {
	q.mu.Lock()
	q.closed = true
	q.queue = q.queue[:0]
	q.queued.Clear()
	q.ready.Broadcast()
	q.mu.Unlock()
}

// Prefetch asks the read-ahead daemon to load sector. It never blocks and
// never fails: invalid sectors, duplicates, and requests beyond the queue
// depth are ignored. Residency is not checked; a hint for a cached sector is
// serviced as a hit.
func (c *Cache) Prefetch(sector uint32) {
	if c.closed.Load() || sector == device.InvalidSector || sector >= c.dev.NumBlocks() {
		return
	}

	queued, dropped := c.ra.push(sector)

	c.stats.prefetches.Add(1)
	if dropped {
		c.stats.prefetchDrops.Add(1)
	}

	c.metrics.OnPrefetch(sector, queued, dropped)

	if queued {
		c.metrics.OnQueueDepth(c.ra.len())
	}
}

func (c *Cache) cancelPrefetch(sector uint32) {
	if c.ra.remove(sector) {
		c.metrics.OnQueueDepth(c.ra.len())
	}
}

// prefetch loads sector through the ordinary read path.
func (c *Cache) prefetch(buf []byte, sector uint32) {
	c.metrics.OnQueueDepth(c.ra.len())

	if err := c.ReadPartial(sector, buf, 0); err != nil {
		c.logger.Debug("read-ahead skipped", "sector", sector, "error", err)
		return
	}

	c.stats.readAheadReads.Add(1)
}

// DrainReadAhead services every pending prefetch on the calling goroutine and
// returns how many were serviced. It is meant for caches built without daemons.
func (c *Cache) DrainReadAhead() int {
	buf := make([]byte, c.blockSize)
	n := 0

	for {
		sector, ok := c.ra.tryPop()
		if !ok {
			return n
		}

		c.prefetch(buf, sector)
		n++
	}
}

func (c *Cache) readAheadDaemon(ctx context.Context) error {
	buf := make([]byte, c.blockSize)

	for {
		sector, ok := c.ra.pop()
		if !ok {
			return nil
		}

		if !c.pace(ctx) {
			return nil
		}

		c.prefetch(buf, sector)
	}
}
