package device

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blockcache/blobstore"
	"github.com/hupe1980/blockcache/internal/fs"
)

const (
	testBlockSize = 256
	testNumBlocks = 8
)

func pattern(b byte) []byte {
	p := make([]byte, testBlockSize)
	for i := range p {
		p[i] = b + byte(i)
	}
	return p
}

func testDevice(t *testing.T, d Device) {
	t.Helper()
	ctx := context.Background()

	assert.Equal(t, testBlockSize, d.BlockSize())
	assert.Equal(t, uint32(testNumBlocks), d.NumBlocks())
	assert.Equal(t, int64(testBlockSize*testNumBlocks), Geometry(d))

	buf := make([]byte, testBlockSize)

	t.Run("unwritten blocks are zero", func(t *testing.T) {
		require.NoError(t, d.ReadBlock(ctx, 3, buf))
		assert.Equal(t, make([]byte, testBlockSize), buf)
	})

	t.Run("round trip", func(t *testing.T) {
		for s := uint32(0); s < testNumBlocks; s++ {
			require.NoError(t, d.WriteBlock(ctx, s, pattern(byte(s))))
		}
		for s := uint32(0); s < testNumBlocks; s++ {
			require.NoError(t, d.ReadBlock(ctx, s, buf))
			assert.Equal(t, pattern(byte(s)), buf, "sector %d", s)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		for _, s := range []uint32{testNumBlocks, InvalidSector} {
			err := d.ReadBlock(ctx, s, buf)
			require.ErrorIs(t, err, ErrOutOfRange)

			var derr *Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, OpRead, derr.Op)
			assert.Equal(t, s, derr.Sector)

			assert.ErrorIs(t, d.WriteBlock(ctx, s, buf), ErrOutOfRange)
		}
	})

	t.Run("wrong buffer size", func(t *testing.T) {
		assert.ErrorIs(t, d.ReadBlock(ctx, 0, make([]byte, 10)), ErrBlockSize)
		assert.ErrorIs(t, d.WriteBlock(ctx, 0, make([]byte, testBlockSize+1)), ErrBlockSize)
	})
}

func TestMemoryDevice(t *testing.T) {
	d := NewMemoryDevice(testBlockSize, testNumBlocks)
	testDevice(t, d)

	assert.Equal(t, pattern(5), d.Snapshot(5))
	assert.Panics(t, func() { NewMemoryDevice(0, 1) })
}

func TestFileDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")

	d, err := OpenFile(path, testBlockSize, testNumBlocks)
	require.NoError(t, err)
	testDevice(t, d)
	require.NoError(t, d.Sync())
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	assert.ErrorIs(t, d.ReadBlock(context.Background(), 0, make([]byte, testBlockSize)), ErrClosed)

	// Contents survive a reopen.
	d, err = OpenFile(path, testBlockSize, testNumBlocks)
	require.NoError(t, err)
	defer d.Close()

	buf := make([]byte, testBlockSize)
	require.NoError(t, d.ReadBlock(context.Background(), 6, buf))
	assert.Equal(t, pattern(6), buf)
}

func TestFileDevice_Faults(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("bad-read", fs.Fault{FailAfterBytes: -1, FailReads: true})
	ffs.AddRule("bad-write", fs.Fault{FailAfterBytes: testBlockSize})

	buf := make([]byte, testBlockSize)

	r, err := openFile(ffs, filepath.Join(dir, "bad-read.img"), testBlockSize, testNumBlocks)
	require.NoError(t, err)
	defer r.Close()

	err = r.ReadBlock(context.Background(), 1, buf)
	require.ErrorIs(t, err, fs.ErrInjected)

	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, uint32(1), derr.Sector)

	w, err := openFile(ffs, filepath.Join(dir, "bad-write.img"), testBlockSize, testNumBlocks)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.WriteBlock(context.Background(), 0, buf))
	assert.ErrorIs(t, w.WriteBlock(context.Background(), 1, buf), fs.ErrInjected)
}

func TestMmapDevice(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mmap devices are unix only")
	}

	path := filepath.Join(t.TempDir(), "disk.img")

	d, err := OpenMmap(path, testBlockSize, testNumBlocks)
	require.NoError(t, err)
	testDevice(t, d)
	require.NoError(t, d.Close())

	f, err := OpenFile(path, testBlockSize, testNumBlocks)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, testBlockSize)
	require.NoError(t, f.ReadBlock(context.Background(), 2, buf))
	assert.Equal(t, pattern(2), buf)
}

func TestObjectDevice(t *testing.T) {
	for _, codec := range []Codec{CodecNone, CodecLZ4, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			d, err := OpenObject(context.Background(), blobstore.NewMemoryStore(), testBlockSize, testNumBlocks, func(o *ObjectOptions) {
				o.Codec = codec
			})
			require.NoError(t, err)
			testDevice(t, d)
			assert.Equal(t, uint64(testNumBlocks), d.Allocated())
		})
	}
}

func TestOpenInvalidBlockSize(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "x"), 0, 1)
	assert.ErrorIs(t, err, ErrBlockSize)

	_, err = OpenMmap(filepath.Join(t.TempDir(), "x"), -1, 1)
	assert.ErrorIs(t, err, ErrBlockSize)

	_, err = OpenObject(context.Background(), blobstore.NewMemoryStore(), 0, 1)
	assert.ErrorIs(t, err, ErrBlockSize)
}
