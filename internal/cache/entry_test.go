package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/blockcache/device"
)

func TestEntryLifecycle(t *testing.T) {
	e := newEntry(16)
	assert.Equal(t, stateEmpty, e.state)
	assert.Equal(t, device.InvalidSector, e.sector)
	assert.False(t, e.busy())

	e.mu.Lock()
	assert.False(t, e.beginEvict(7))
	e.mu.Unlock()
	assert.True(t, e.evicting())
	assert.False(t, e.flushing())

	e.install(modeWrite)
	assert.Equal(t, stateResident, e.state)
	assert.Equal(t, uint32(7), e.sector)
	assert.Equal(t, device.InvalidSector, e.target)
	assert.Equal(t, 1, e.waitingWriters)
	assert.True(t, e.busy())

	e.write([]byte{1, 2}, 3)
	assert.True(t, e.dirty)
	assert.True(t, e.accessed)
	assert.False(t, e.busy())
	assert.Equal(t, []byte{0, 0, 0, 1, 2}, e.content[:5])

	e.mu.Lock()
	e.accessed = false
	assert.True(t, e.beginEvict(8))
	e.mu.Unlock()
	assert.Equal(t, stateEvictFlushing, e.state)
	assert.True(t, e.flushing())

	e.finishWriteBack()
	assert.Equal(t, stateEvicting, e.state)
	assert.False(t, e.dirty)

	e.install(modeRead)
	dst := make([]byte, 2)
	e.read(dst, 3)
	assert.Equal(t, uint32(8), e.sector)
	assert.True(t, e.accessed)
	assert.False(t, e.dirty)
}

func TestEntryInvariants(t *testing.T) {
	e := newEntry(16)

	assert.Panics(t, func() { e.install(modeRead) }, "install without eviction")

	e.mu.Lock()
	e.beginEvict(1)
	e.mu.Unlock()

	assert.Panics(t, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.beginEvict(2)
	}, "double eviction")

	r := newEntry(16)
	r.state = stateResident
	assert.Panics(t, func() { r.finishWriteBack() }, "write-back finished without flush")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "evict-flushing", stateEvictFlushing.String())
	assert.Equal(t, "unknown", state(42).String())
}
