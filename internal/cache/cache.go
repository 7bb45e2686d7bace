package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/blockcache/device"
	"github.com/hupe1980/blockcache/resource"
)

// Stats is a point-in-time copy of the cache counters.
type Stats struct {
	Hits           uint64
	Misses         uint64
	Evictions      uint64
	DirtyEvictions uint64
	WriteBacks     uint64
	Flushes        uint64
	Prefetches     uint64
	PrefetchDrops  uint64
	ReadAheadReads uint64
	QueueDepth     int
	Capacity       int
	Resident       int
	Dirty          int
}

type counters struct {
	hits           atomic.Uint64
	misses         atomic.Uint64
	evictions      atomic.Uint64
	dirtyEvictions atomic.Uint64
	writeBacks     atomic.Uint64
	flushes        atomic.Uint64
	prefetches     atomic.Uint64
	prefetchDrops  atomic.Uint64
	readAheadReads atomic.Uint64
}

// Cache is a fixed-capacity write-back block cache.
type Cache struct {
	dev       device.Device
	opts      Options
	blockSize int

	mu      sync.Mutex // table lock: lookup and the start of eviction
	entries []*entry
	hand    clock
	idle    idleSignal

	ra *readAhead

	// ops is held shared by every client operation and exclusively by Close.
	ops sync.RWMutex

	// ioCtx is never canceled: a device write that started must finish.
	ioCtx  context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	closed atomic.Bool

	stats   counters
	logger  *slog.Logger
	metrics MetricsObserver
	rc      *resource.Controller
}

// New creates a cache in front of dev and starts its daemons unless
// Options.Daemons is false.
func New(dev device.Device, optFns ...func(o *Options)) (*Cache, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, opts.Capacity)
	}

	blockSize := dev.BlockSize()
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: device block size %d", device.ErrBlockSize, blockSize)
	}

	if opts.ReadAheadDepth < 1 {
		opts.ReadAheadDepth = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Metrics == nil {
		opts.Metrics = NoopMetricsObserver{}
	}

	if !opts.Resources.TryAcquireMemory(int64(opts.Capacity) * int64(blockSize)) {
		return nil, fmt.Errorf("cache of %d x %d bytes: %w", opts.Capacity, blockSize, resource.ErrMemoryLimitExceeded)
	}

	c := &Cache{
		dev:       dev,
		opts:      opts,
		blockSize: blockSize,
		entries:   make([]*entry, opts.Capacity),
		hand:      clock{size: opts.Capacity},
		ra:        newReadAhead(opts.ReadAheadDepth),
		ioCtx:     context.Background(),
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		rc:        opts.Resources,
	}
	for i := range c.entries {
		c.entries[i] = newEntry(blockSize)
	}

	if opts.Daemons {
		c.start()
	}

	return c, nil
}

func (c *Cache) start() {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	if c.opts.FlushInterval > 0 {
		g.Go(func() error { return c.flushDaemon(gctx) })
	}
	g.Go(func() error { return c.readAheadDaemon(gctx) })

	c.cancel = cancel
	c.group = g
}

// BlockSize returns the device block size.
func (c *Cache) BlockSize() int { return c.blockSize }

// Capacity returns the number of entries.
func (c *Cache) Capacity() int { return len(c.entries) }

// Read copies the whole block at sector into dst.
func (c *Cache) Read(sector uint32, dst []byte) error {
	if len(dst) != c.blockSize {
		return fmt.Errorf("%w: got %d, want %d", ErrBlockSize, len(dst), c.blockSize)
	}

	return c.ReadPartial(sector, dst, 0)
}

// ReadPartial copies len(dst) bytes of the block at sector, starting at offset.
func (c *Cache) ReadPartial(sector uint32, dst []byte, offset int) error {
	c.ops.RLock()
	defer c.ops.RUnlock()

	if err := c.check(sector, offset, len(dst)); err != nil {
		return err
	}

	c.cancelPrefetch(sector)

	e, err := c.acquire(sector, modeRead, false)
	if err != nil {
		return err
	}

	e.read(dst, offset)
	c.idle.notify()

	return nil
}

// Write replaces the whole block at sector with src. The old content is not
// read from the device.
func (c *Cache) Write(sector uint32, src []byte) error {
	if len(src) != c.blockSize {
		return fmt.Errorf("%w: got %d, want %d", ErrBlockSize, len(src), c.blockSize)
	}

	return c.WritePartial(sector, src, 0, true)
}

// WritePartial copies src into the block at sector starting at offset. On a
// miss with zeroFill the rest of the block is zeroed instead of read from the
// device; callers set it only when src plus zeros is the block's full content.
func (c *Cache) WritePartial(sector uint32, src []byte, offset int, zeroFill bool) error {
	c.ops.RLock()
	defer c.ops.RUnlock()

	if err := c.check(sector, offset, len(src)); err != nil {
		return err
	}

	c.cancelPrefetch(sector)

	e, err := c.acquire(sector, modeWrite, zeroFill)
	if err != nil {
		return err
	}

	e.write(src, offset)
	c.idle.notify()

	return nil
}

func (c *Cache) check(sector uint32, offset, length int) error {
	if c.closed.Load() {
		return ErrClosed
	}

	if sector == device.InvalidSector || sector >= c.dev.NumBlocks() {
		return fmt.Errorf("%w: %d", ErrInvalidSector, sector)
	}

	if offset < 0 || length < 0 || offset > c.blockSize-length {
		return fmt.Errorf("%w: offset %d length %d block %d", ErrOutOfRange, offset, length, c.blockSize)
	}

	return nil
}

// acquire returns the entry for sector with a pending access of mode m
// registered, loading or zero-filling it on a miss. A miss that finds every
// entry busy waits for one to be released, at most Options.MaxEvictionWait.
func (c *Cache) acquire(sector uint32, m mode, zeroFill bool) (*entry, error) {
	var expired <-chan time.Time

	for {
		c.mu.Lock()

		if e := c.lookupLocked(sector, m); e != nil {
			c.mu.Unlock()
			c.stats.hits.Add(1)
			c.metrics.OnHit()

			return e, nil
		}

		c.idle.waiters.Add(1)

		// evict releases the table lock.
		e, wake := c.evict(sector)
		if e != nil {
			c.idle.waiters.Add(-1)
			return c.load(e, sector, m, zeroFill), nil
		}

		if expired == nil && c.opts.MaxEvictionWait > 0 {
			expired = time.After(c.opts.MaxEvictionWait)
		}

		select {
		case <-wake:
			c.idle.waiters.Add(-1)
		case <-expired:
			c.idle.waiters.Add(-1)
			c.logger.Warn("no eviction victim", "sector", sector, "waited", c.opts.MaxEvictionWait)

			return nil, fmt.Errorf("%w: sector %d after %s", ErrCacheExhausted, sector, c.opts.MaxEvictionWait)
		}
	}
}

// load fills the entry reserved for sector and publishes it.
func (c *Cache) load(e *entry, sector uint32, m mode, zeroFill bool) *entry {
	c.stats.misses.Add(1)
	c.metrics.OnMiss()

	c.awaitPriorWriteBack(sector, e)

	if zeroFill {
		clear(e.content)
	} else {
		c.deviceRead(sector, e.content)
	}

	e.install(m)

	return e
}

// lookupLocked finds an entry holding sector, or one being installed with it,
// and announces the access. Caller holds c.mu.
func (c *Cache) lookupLocked(sector uint32, m mode) *entry {
	for _, e := range c.entries {
		e.mu.Lock()

		if (e.sector == sector && !e.evicting()) || (e.evicting() && e.target == sector) {
			e.announce(m)
			e.mu.Unlock()

			return e
		}

		e.mu.Unlock()
	}

	return nil
}

// awaitPriorWriteBack blocks while another entry that held sector is still
// writing it back, so the device read below sees the latest content.
func (c *Cache) awaitPriorWriteBack(sector uint32, self *entry) {
	for _, e := range c.entries {
		if e == self {
			continue
		}

		e.mu.Lock()
		if e.sector == sector {
			invariant(e.evicting(), "sector %d resident in two entries", sector)

			for e.flushing() {
				e.ready.Wait()
			}

			e.mu.Unlock()

			return
		}
		e.mu.Unlock()
	}
}

func (c *Cache) deviceRead(sector uint32, p []byte) {
	if err := c.dev.ReadBlock(c.ioCtx, sector, p); err != nil {
		c.fail(device.OpRead, sector, err)
	}
}

func (c *Cache) deviceWrite(sector uint32, p []byte) {
	if err := c.dev.WriteBlock(c.ioCtx, sector, p); err != nil {
		c.fail(device.OpWrite, sector, err)
	}
}

// fail aborts on a device error. The cache cannot hand out blocks whose
// content it failed to load or persist.
func (c *Cache) fail(op device.Op, sector uint32, err error) {
	var derr *device.Error
	if !errors.As(err, &derr) {
		derr = &device.Error{Op: op, Sector: sector, Err: err}
	}

	c.logger.Error("device failure", "op", string(op), "sector", sector, "error", err)
	panic(derr)
}

// Stats returns the current counters together with a scan of the table.
func (c *Cache) Stats() Stats {
	s := Stats{
		Hits:           c.stats.hits.Load(),
		Misses:         c.stats.misses.Load(),
		Evictions:      c.stats.evictions.Load(),
		DirtyEvictions: c.stats.dirtyEvictions.Load(),
		WriteBacks:     c.stats.writeBacks.Load(),
		Flushes:        c.stats.flushes.Load(),
		Prefetches:     c.stats.prefetches.Load(),
		PrefetchDrops:  c.stats.prefetchDrops.Load(),
		ReadAheadReads: c.stats.readAheadReads.Load(),
		QueueDepth:     c.ra.len(),
		Capacity:       len(c.entries),
	}

	for _, e := range c.entries {
		e.mu.Lock()
		if e.sector != device.InvalidSector {
			s.Resident++
		}
		if e.dirty {
			s.Dirty++
		}
		e.mu.Unlock()
	}

	return s
}

// Close stops the daemons, waits for operations already in progress, writes
// back every dirty block, and rejects later operations with ErrClosed.
func (c *Cache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	var err error
	if c.group != nil {
		c.cancel()
		c.ra.close()
		err = c.group.Wait()
	} else {
		c.ra.close()
	}

	c.ops.Lock()
	n := c.flush(context.Background(), false)
	c.ops.Unlock()

	c.logger.Debug("cache closed", "flushed", n)

	c.rc.ReleaseMemory(int64(len(c.entries)) * int64(c.blockSize))

	return err
}
