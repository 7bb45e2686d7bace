package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blockcache/device"
	"github.com/hupe1980/blockcache/testutil"
)

func TestReadAheadQueue(t *testing.T) {
	q := newReadAhead(2)

	queued, dropped := q.push(1)
	assert.True(t, queued)
	assert.False(t, dropped)

	queued, dropped = q.push(1)
	assert.False(t, queued, "duplicate accepted")
	assert.False(t, dropped)

	q.push(2)
	queued, dropped = q.push(3)
	assert.False(t, queued)
	assert.True(t, dropped)

	assert.True(t, q.remove(1))
	assert.False(t, q.remove(1))

	s, ok := q.tryPop()
	require.True(t, ok)
	assert.Equal(t, uint32(2), s)

	_, ok = q.tryPop()
	assert.False(t, ok)

	// Popped sectors may be queued again.
	queued, _ = q.push(2)
	assert.True(t, queued)
}

func TestReadAheadQueue_CloseWakesWaiter(t *testing.T) {
	q := newReadAhead(4)

	done := make(chan bool)
	go func() {
		_, ok := q.pop()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.close()

	assert.False(t, <-done)

	queued, _ := q.push(1)
	assert.False(t, queued)
}

func TestPrefetchDedup(t *testing.T) {
	dev := testutil.NewRecordingDevice(device.NewMemoryDevice(testBlockSize, 16))
	c := newTestCache(t, dev)

	c.Prefetch(9)
	c.Prefetch(9)
	assert.Equal(t, 1, c.Stats().QueueDepth)

	assert.Equal(t, 1, c.DrainReadAhead())
	assert.Equal(t, 1, dev.Reads(9))

	// The block is resident now.
	buf := make([]byte, testBlockSize)
	require.NoError(t, c.Read(9, buf))
	assert.Equal(t, 1, dev.Reads(9))

	st := c.Stats()
	assert.Equal(t, uint64(2), st.Prefetches)
	assert.Equal(t, uint64(1), st.ReadAheadReads)
}

func TestPrefetchOfCachedSector(t *testing.T) {
	dev := testutil.NewRecordingDevice(device.NewMemoryDevice(testBlockSize, 16))
	c := newTestCache(t, dev)

	buf := make([]byte, testBlockSize)
	require.NoError(t, c.Read(9, buf))

	// The hint is queued even though the block is resident.
	c.Prefetch(9)
	assert.Equal(t, 1, c.Stats().QueueDepth)

	assert.Equal(t, 1, c.DrainReadAhead())
	assert.Equal(t, 1, dev.Reads(9))
	assert.Equal(t, uint64(1), c.Stats().Hits)
}

func TestPrefetchQueueFull(t *testing.T) {
	dev := device.NewMemoryDevice(testBlockSize, 16)
	c := newTestCache(t, dev, func(o *Options) { o.ReadAheadDepth = 2 })

	c.Prefetch(1)
	c.Prefetch(2)
	c.Prefetch(3)

	st := c.Stats()
	assert.Equal(t, 2, st.QueueDepth)
	assert.Equal(t, uint64(1), st.PrefetchDrops)
}

func TestPrefetchIgnoresInvalidSectors(t *testing.T) {
	dev := device.NewMemoryDevice(testBlockSize, 16)
	c := newTestCache(t, dev)

	c.Prefetch(device.InvalidSector)
	c.Prefetch(16)

	assert.Zero(t, c.Stats().QueueDepth)
	assert.Zero(t, c.Stats().Prefetches)
}

func TestSynchronousReadCancelsPrefetch(t *testing.T) {
	dev := testutil.NewRecordingDevice(device.NewMemoryDevice(testBlockSize, 16))
	c := newTestCache(t, dev)

	c.Prefetch(4)
	c.Prefetch(5)

	buf := make([]byte, testBlockSize)
	require.NoError(t, c.Read(4, buf))
	assert.Equal(t, 1, c.Stats().QueueDepth)

	assert.Equal(t, 1, c.DrainReadAhead())
	assert.Equal(t, 1, dev.Reads(4))
	assert.Equal(t, 1, dev.Reads(5))
}

func TestReadAheadDaemon(t *testing.T) {
	dev := testutil.NewRecordingDevice(device.NewMemoryDevice(testBlockSize, 16))
	c := newTestCache(t, dev, func(o *Options) { o.Daemons = true })

	for s := uint32(0); s < 8; s++ {
		c.Prefetch(s)
	}

	require.Eventually(t, func() bool { return c.Stats().ReadAheadReads == 8 }, time.Second, time.Millisecond)

	buf := make([]byte, testBlockSize)
	for s := uint32(0); s < 8; s++ {
		require.NoError(t, c.Read(s, buf))
		assert.Equal(t, 1, dev.Reads(s))
	}
}
