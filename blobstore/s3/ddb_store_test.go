package s3

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blockcache/blobstore"
)

func TestDDBStore(t *testing.T) {
	ctx := context.Background()
	client := newMockDDBClient()

	disk0 := NewDDBStore(client, "blockcache", "disk0")
	disk1 := NewDDBStore(client, "blockcache", "disk1")

	_, err := disk0.Get(ctx, "blk/00000001")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, disk0.Put(ctx, "blk/00000002", []byte("two")))
	require.NoError(t, disk0.Put(ctx, "blk/00000001", []byte("one")))
	require.NoError(t, disk0.Put(ctx, "meta", []byte("geometry")))
	require.NoError(t, disk1.Put(ctx, "blk/00000001", []byte("other volume")))

	data, err := disk0.Get(ctx, "blk/00000001")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)

	names, err := disk0.List(ctx, "blk/")
	require.NoError(t, err)
	assert.Equal(t, []string{"blk/00000001", "blk/00000002"}, names)

	names, err = disk0.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"blk/00000001", "blk/00000002", "meta"}, names)

	require.NoError(t, disk0.Delete(ctx, "blk/00000001"))
	_, err = disk0.Get(ctx, "blk/00000001")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	data, err = disk1.Get(ctx, "blk/00000001")
	require.NoError(t, err)
	assert.Equal(t, []byte("other volume"), data)
}
