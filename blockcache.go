package blockcache

import (
	"context"
	"errors"

	"github.com/hupe1980/blockcache/device"
	"github.com/hupe1980/blockcache/internal/cache"
	"github.com/hupe1980/blockcache/resource"
)

// Stats is a point-in-time copy of the cache counters.
type Stats = cache.Stats

// Cache is a write-back block cache in front of a device.Device.
// All methods are safe for concurrent use.
type Cache struct {
	c      *cache.Cache
	dev    device.Device
	logger *Logger
}

// New creates a cache in front of dev. Unless WithoutDaemons is given, a
// flush goroutine and a read-ahead goroutine run until Close.
func New(dev device.Device, opts ...Option) (*Cache, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}

	rc := o.resources
	if rc == nil && o.ioLimit > 0 {
		rc = resource.NewController(resource.Config{
			IOLimitBytesPerSec: o.ioLimit,
			IOBurstBytes:       o.ioBurst,
		})
	}

	logger := o.logger.WithDevice(dev.BlockSize(), dev.NumBlocks())

	inner, err := cache.New(dev, func(co *cache.Options) {
		co.Capacity = o.capacity
		co.FlushInterval = o.flushInterval
		co.ReadAheadDepth = o.readAheadDepth
		co.MaxEvictionWait = o.maxEvictionWait
		co.Daemons = o.daemons
		co.Logger = logger.Logger
		co.Metrics = &observer{mc: o.metricsCollector, logger: logger}
		co.Resources = rc
	})
	if err != nil {
		return nil, translateError(err)
	}

	return &Cache{c: inner, dev: dev, logger: logger}, nil
}

// Device returns the device behind the cache.
func (c *Cache) Device() device.Device { return c.dev }

// BlockSize returns the size of one block in bytes.
func (c *Cache) BlockSize() int { return c.c.BlockSize() }

// Capacity returns the number of blocks the cache holds.
func (c *Cache) Capacity() int { return c.c.Capacity() }

// Read copies the block at sector into dst, which must be exactly one block
// long. A miss loads the block from the device.
//
// Read panics with a *device.Error if the device fails.
func (c *Cache) Read(sector uint32, dst []byte) error {
	return translateError(c.c.Read(sector, dst))
}

// ReadPartial copies len(dst) bytes starting at offset within the block.
func (c *Cache) ReadPartial(sector uint32, dst []byte, offset int) error {
	return rangeError(c.c.ReadPartial(sector, dst, offset), offset, len(dst), c.c.BlockSize())
}

// Write replaces the whole block at sector with src. The previous content is
// never read from the device. The block is written back later by the flush
// daemon, Flush, eviction, or Close.
func (c *Cache) Write(sector uint32, src []byte) error {
	return translateError(c.c.Write(sector, src))
}

// WritePartial copies src into the block at sector starting at offset. On a
// miss the rest of the block is loaded from the device, or zeroed if
// zeroFill is set.
func (c *Cache) WritePartial(sector uint32, src []byte, offset int, zeroFill bool) error {
	return rangeError(c.c.WritePartial(sector, src, offset, zeroFill), offset, len(src), c.c.BlockSize())
}

// Flush writes every dirty block back and returns how many it wrote. Blocks
// that are being written or evicted concurrently are left for the next pass.
func (c *Cache) Flush() int {
	return c.c.Flush()
}

// Prefetch hints that sector will be read soon. It never blocks and never
// fails. A hint for an already queued sector is ignored and one beyond the
// read-ahead depth is dropped. A hint for a cached sector still takes a queue
// slot and is serviced as a cache hit.
func (c *Cache) Prefetch(sector uint32) {
	c.c.Prefetch(sector)
}

// DrainReadAhead services pending prefetch hints on the calling goroutine.
// Use it with WithoutDaemons.
func (c *Cache) DrainReadAhead() int {
	return c.c.DrainReadAhead()
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return c.c.Stats()
}

// Close stops the daemons, writes back all dirty blocks, and makes every
// later call fail with ErrClosed. It does not close the device.
func (c *Cache) Close() error {
	err := translateError(c.c.Close())
	if errors.Is(err, ErrClosed) {
		return err
	}

	c.logger.LogClose(context.Background(), c.c.Stats(), err)

	return err
}
