package device

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/hupe1980/blockcache/internal/fs"
)

var _ Device = (*FileDevice)(nil)

// FileDevice stores blocks in a regular file at offset sector*BlockSize.
type FileDevice struct {
	f         fs.File
	blockSize int
	numBlocks uint32
	closed    atomic.Bool
}

// OpenFile opens or creates the image at path and extends it to the full
// device size.
func OpenFile(path string, blockSize int, numBlocks uint32) (*FileDevice, error) {
	return openFile(fs.Default, path, blockSize, numBlocks)
}

func openFile(fsys fs.FileSystem, path string, blockSize int, numBlocks uint32) (*FileDevice, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBlockSize, blockSize)
	}

	f, err := fsys.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
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
			return nil, fmt.Errorf("extend %s to %d bytes: %w", path, size, err)
		}
	}

	return &FileDevice{f: f, blockSize: blockSize, numBlocks: numBlocks}, nil
}

func (d *FileDevice) BlockSize() int    { return d.blockSize }
func (d *FileDevice) NumBlocks() uint32 { return d.numBlocks }

func (d *FileDevice) ReadBlock(ctx context.Context, sector uint32, p []byte) error {
	if err := d.ready(ctx, sector, p); err != nil {
		return wrap(OpRead, sector, err)
	}

	if _, err := d.f.ReadAt(p, d.offset(sector)); err != nil {
		return wrap(OpRead, sector, err)
	}

	return nil
}

func (d *FileDevice) WriteBlock(ctx context.Context, sector uint32, p []byte) error {
	if err := d.ready(ctx, sector, p); err != nil {
		return wrap(OpWrite, sector, err)
	}

	if _, err := d.f.WriteAt(p, d.offset(sector)); err != nil {
		return wrap(OpWrite, sector, err)
	}

	return nil
}

func (d *FileDevice) ready(ctx context.Context, sector uint32, p []byte) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if err := check(d, sector, p); err != nil {
		return err
	}
	return ctx.Err()
}

func (d *FileDevice) offset(sector uint32) int64 {
	return int64(sector) * int64(d.blockSize)
}

// Sync commits written blocks to stable storage.
func (d *FileDevice) Sync() error {
	if d.closed.Load() {
		return ErrClosed
	}
	return d.f.Sync()
}

// Close syncs and closes the image.
func (d *FileDevice) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}

	if err := d.f.Sync(); err != nil {
		_ = d.f.Close()
		return err
	}

	return d.f.Close()
}
