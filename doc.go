// Package blockcache provides a fixed-size, concurrent write-back cache for
// block devices.
//
// A Cache holds a fixed number of blocks in memory. Reads and writes address
// one block by sector; a miss evicts a block chosen by the clock
// (second-chance) algorithm, writing it back first if it is dirty. Many
// goroutines may read the same block at once; a writer has the block to
// itself.
//
// # Quick Start
//
//	dev, _ := device.OpenFile("./disk.img", 4096, 1<<16)
//	defer dev.Close()
//
//	c, _ := blockcache.New(dev, blockcache.WithCapacity(256))
//	defer c.Close()
//
//	buf := make([]byte, c.BlockSize())
//	_ = c.Read(42, buf)
//	_ = c.Write(43, buf)
//
// # Durability
//
// Writes only reach the cache. A dirty block is written to the device when
// it is evicted, by the periodic flush (WithFlushInterval), by Flush, or by
// Close. Call Flush and then sync the device for a consistent on-disk image.
//
// # Read-Ahead
//
// Prefetch queues a sector for a background read. The queue is bounded
// (WithReadAheadDepth); hints that do not fit are dropped and counted in
// Stats. A synchronous Read of a queued sector removes the hint.
//
// # Devices
//
// Any device.Device works. Package device ships in-memory, file,
// memory-mapped, and object-store backed devices; the object device runs
// over the stores in package blobstore (local disk, MinIO, S3, DynamoDB).
//
// # Failures
//
// Argument and lifecycle errors are returned. A failing device is not: the
// cache cannot hand out a block it failed to load or drop one it failed to
// persist, so it panics with a *device.Error.
package blockcache
