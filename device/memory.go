package device

import (
	"context"
	"sync"
)

var _ Device = (*MemoryDevice)(nil)

// MemoryDevice keeps all blocks in one byte slice.
type MemoryDevice struct {
	mu        sync.RWMutex
	data      []byte
	blockSize int
	numBlocks uint32
}

// NewMemoryDevice allocates a zeroed device.
func NewMemoryDevice(blockSize int, numBlocks uint32) *MemoryDevice {
	if blockSize <= 0 {
		panic("device: block size must be positive")
	}

	return &MemoryDevice{
		data:      make([]byte, blockSize*int(numBlocks)),
		blockSize: blockSize,
		numBlocks: numBlocks,
	}
}

func (d *MemoryDevice) BlockSize() int    { return d.blockSize }
func (d *MemoryDevice) NumBlocks() uint32 { return d.numBlocks }

func (d *MemoryDevice) ReadBlock(ctx context.Context, sector uint32, p []byte) error {
	if err := check(d, sector, p); err != nil {
		return wrap(OpRead, sector, err)
	}
	if err := ctx.Err(); err != nil {
		return wrap(OpRead, sector, err)
	}

	d.mu.RLock()
	copy(p, d.block(sector))
	d.mu.RUnlock()

	return nil
}

func (d *MemoryDevice) WriteBlock(ctx context.Context, sector uint32, p []byte) error {
	if err := check(d, sector, p); err != nil {
		return wrap(OpWrite, sector, err)
	}
	if err := ctx.Err(); err != nil {
		return wrap(OpWrite, sector, err)
	}

	d.mu.Lock()
	copy(d.block(sector), p)
	d.mu.Unlock()

	return nil
}

// Snapshot returns a copy of sector's content, bypassing any cache.
func (d *MemoryDevice) Snapshot(sector uint32) []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]byte, d.blockSize)
	copy(out, d.block(sector))

	return out
}

func (d *MemoryDevice) block(sector uint32) []byte {
	off := int(sector) * d.blockSize
	return d.data[off : off+d.blockSize]
}
