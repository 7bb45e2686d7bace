package device

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/blockcache/blobstore"
	"github.com/hupe1980/blockcache/internal/blockcodec"
	"github.com/hupe1980/blockcache/internal/conv"
)

// Codec selects how an ObjectDevice encodes block payloads.
type Codec = blockcodec.Kind

const (
	CodecNone = blockcodec.KindNone
	CodecLZ4  = blockcodec.KindLZ4
	CodecZstd = blockcodec.KindZstd
)

const (
	blockPrefix = "blk/"
	metaName    = "geometry"
)

// ErrGeometryMismatch is returned when a store already holds a device with a
// different block size or block count.
var ErrGeometryMismatch = errors.New("device: geometry mismatch")

// ObjectOptions configures an ObjectDevice.
type ObjectOptions struct {
	// Codec compresses block payloads. Every frame is checksummed regardless.
	Codec Codec
	// Prefix is prepended to every object name.
	Prefix string
}

var _ Device = (*ObjectDevice)(nil)

// ObjectDevice stores each block as one object in a blobstore.Store. Sectors
// that were never written read as zeros without touching the store.
type ObjectDevice struct {
	store     blobstore.Store
	opts      ObjectOptions
	blockSize int
	numBlocks uint32

	mu      sync.RWMutex
	written *roaring.Bitmap

	closed atomic.Bool
}

// OpenObject attaches to the device kept in store. A fresh store is stamped
// with the geometry; an existing one must match it.
func OpenObject(ctx context.Context, store blobstore.Store, blockSize int, numBlocks uint32, optFns ...func(o *ObjectOptions)) (*ObjectDevice, error) {
	if _, err := conv.IntToUint32(blockSize); err != nil || blockSize == 0 {
		return nil, fmt.Errorf("%w: %d", ErrBlockSize, blockSize)
	}

	opts := ObjectOptions{Codec: CodecNone}
	for _, fn := range optFns {
		fn(&opts)
	}

	d := &ObjectDevice{
		store:     store,
		opts:      opts,
		blockSize: blockSize,
		numBlocks: numBlocks,
		written:   roaring.New(),
	}

	if err := d.stamp(ctx); err != nil {
		return nil, err
	}

	if err := d.load(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *ObjectDevice) stamp(ctx context.Context) error {
	want := make([]byte, 8)
	binary.LittleEndian.PutUint32(want[0:], uint32(d.blockSize))
	binary.LittleEndian.PutUint32(want[4:], d.numBlocks)

	got, err := d.store.Get(ctx, d.opts.Prefix+metaName)
	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		return d.store.Put(ctx, d.opts.Prefix+metaName, want)
	case err != nil:
		return fmt.Errorf("read geometry: %w", err)
	case len(got) != len(want):
		return fmt.Errorf("%w: malformed geometry object", ErrGeometryMismatch)
	}

	bs := binary.LittleEndian.Uint32(got[0:])
	nb := binary.LittleEndian.Uint32(got[4:])
	if int(bs) != d.blockSize || nb != d.numBlocks {
		return fmt.Errorf("%w: store has %d x %d, want %d x %d", ErrGeometryMismatch, nb, bs, d.numBlocks, d.blockSize)
	}

	return nil
}

func (d *ObjectDevice) load(ctx context.Context) error {
	prefix := d.opts.Prefix + blockPrefix

	names, err := d.store.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list blocks: %w", err)
	}

	for _, name := range names {
		s, err := strconv.ParseUint(strings.TrimPrefix(name, prefix), 16, 32)
		if err != nil || uint32(s) >= d.numBlocks {
			continue
		}
		d.written.Add(uint32(s))
	}

	return nil
}

func (d *ObjectDevice) name(sector uint32) string {
	return fmt.Sprintf("%s%s%08x", d.opts.Prefix, blockPrefix, sector)
}

func (d *ObjectDevice) BlockSize() int    { return d.blockSize }
func (d *ObjectDevice) NumBlocks() uint32 { return d.numBlocks }

func (d *ObjectDevice) ReadBlock(ctx context.Context, sector uint32, p []byte) error {
	if err := d.ready(sector, p); err != nil {
		return wrap(OpRead, sector, err)
	}

	d.mu.RLock()
	written := d.written.Contains(sector)
	d.mu.RUnlock()

	if !written {
		clear(p)
		return nil
	}

	frame, err := d.store.Get(ctx, d.name(sector))
	if errors.Is(err, blobstore.ErrNotFound) {
		clear(p)
		return nil
	}
	if err != nil {
		return wrap(OpRead, sector, err)
	}

	raw, err := blockcodec.Decode(frame)
	if err != nil {
		return wrap(OpRead, sector, err)
	}
	if len(raw) != d.blockSize {
		return wrap(OpRead, sector, fmt.Errorf("%w: got %d, want %d", ErrBlockSize, len(raw), d.blockSize))
	}

	copy(p, raw)
	return nil
}

func (d *ObjectDevice) WriteBlock(ctx context.Context, sector uint32, p []byte) error {
	if err := d.ready(sector, p); err != nil {
		return wrap(OpWrite, sector, err)
	}

	frame, err := blockcodec.Encode(d.opts.Codec, p)
	if err != nil {
		return wrap(OpWrite, sector, err)
	}

	if err := d.store.Put(ctx, d.name(sector), frame); err != nil {
		return wrap(OpWrite, sector, err)
	}

	d.mu.Lock()
	d.written.Add(sector)
	d.mu.Unlock()

	return nil
}

// Discard deletes the object behind sector. The sector reads as zeros again.
func (d *ObjectDevice) Discard(ctx context.Context, sector uint32) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if sector == InvalidSector || sector >= d.numBlocks {
		return wrap(OpWrite, sector, ErrOutOfRange)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.written.Contains(sector) {
		return nil
	}

	if err := d.store.Delete(ctx, d.name(sector)); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return wrap(OpWrite, sector, err)
	}

	d.written.Remove(sector)
	return nil
}

// Allocated returns the number of sectors backed by an object.
func (d *ObjectDevice) Allocated() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.written.GetCardinality()
}

func (d *ObjectDevice) ready(sector uint32, p []byte) error {
	if d.closed.Load() {
		return ErrClosed
	}
	return check(d, sector, p)
}

// Close detaches from the store. It does not close the store.
func (d *ObjectDevice) Close() error {
	d.closed.Store(true)
	return nil
}
