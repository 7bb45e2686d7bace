//go:build unix

package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSized(t *testing.T, size int64) *os.File {
	t.Helper()

	f, err := os.OpenFile(filepath.Join(t.TempDir(), "disk.img"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	t.Cleanup(func() { f.Close() })

	return f
}

func TestMap_WriteSyncRead(t *testing.T) {
	f := openSized(t, 8192)

	m, err := Map(f, 8192, true)
	require.NoError(t, err)
	assert.True(t, m.Writable())
	require.NoError(t, m.Advise(AccessRandom))

	copy(m.Bytes()[4096:], "mapped")
	require.NoError(t, m.Sync())
	require.NoError(t, m.Close())

	buf := make([]byte, 6)
	_, err = f.ReadAt(buf, 4096)
	require.NoError(t, err)
	assert.Equal(t, "mapped", string(buf))
}

func TestMap_ReadOnly(t *testing.T) {
	f := openSized(t, 4096)
	_, err := f.WriteAt([]byte("disk"), 0)
	require.NoError(t, err)

	m, err := Map(f, 4096, false)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, "disk", string(m.Bytes()[:4]))
	assert.NoError(t, m.Sync())
}

func TestMap_Errors(t *testing.T) {
	f := openSized(t, 4096)

	_, err := Map(f, 0, true)
	assert.ErrorIs(t, err, ErrInvalidSize)

	m, err := Map(f, 4096, true)
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Sync(), ErrClosed)
	assert.ErrorIs(t, m.Advise(AccessWillNeed), ErrClosed)
}
