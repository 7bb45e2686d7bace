package device

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/hupe1980/blockcache/internal/conv"
	"github.com/hupe1980/blockcache/internal/mmap"
)

var _ Device = (*MmapDevice)(nil)

// MmapDevice serves blocks from a shared mapping of an image file. Writes
// land in the page cache; Sync or Close persists them. Unix only.
type MmapDevice struct {
	f         *os.File
	m         *mmap.Mapping
	blockSize int
	numBlocks uint32
	closed    atomic.Bool
}

// OpenMmap opens or creates the image at path, extends it to the full device
// size, and maps it read-write.
func OpenMmap(path string, blockSize int, numBlocks uint32) (*MmapDevice, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBlockSize, blockSize)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	size := int64(blockSize) * int64(numBlocks)

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.Size() < size {
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	n, err := conv.Int64ToInt(size)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	m, err := mmap.Map(f, n, true)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("map %s: %w", path, err)
	}

	// The cache decides what is hot; kernel read-ahead would only pollute memory.
	_ = m.Advise(mmap.AccessRandom)

	return &MmapDevice{f: f, m: m, blockSize: blockSize, numBlocks: numBlocks}, nil
}

func (d *MmapDevice) BlockSize() int    { return d.blockSize }
func (d *MmapDevice) NumBlocks() uint32 { return d.numBlocks }

func (d *MmapDevice) ReadBlock(ctx context.Context, sector uint32, p []byte) error {
	b, err := d.block(ctx, sector, p)
	if err != nil {
		return wrap(OpRead, sector, err)
	}

	copy(p, b)
	return nil
}

func (d *MmapDevice) WriteBlock(ctx context.Context, sector uint32, p []byte) error {
	b, err := d.block(ctx, sector, p)
	if err != nil {
		return wrap(OpWrite, sector, err)
	}

	copy(b, p)
	return nil
}

func (d *MmapDevice) block(ctx context.Context, sector uint32, p []byte) ([]byte, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	if err := check(d, sector, p); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	off := int(sector) * d.blockSize
	return d.m.Bytes()[off : off+d.blockSize], nil
}

// Sync flushes dirty pages to the image file.
func (d *MmapDevice) Sync() error {
	if d.closed.Load() {
		return ErrClosed
	}
	return d.m.Sync()
}

// Close syncs, unmaps, and closes the image.
func (d *MmapDevice) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := d.m.Sync()
	if cerr := d.m.Close(); err == nil {
		err = cerr
	}
	if cerr := d.f.Close(); err == nil {
		err = cerr
	}

	return err
}
