package cache

import (
	"sync"

	"github.com/hupe1980/blockcache/device"
	"github.com/hupe1980/blockcache/internal/mem"
)

type state uint8

const (
	stateEmpty state = iota
	stateResident
	stateFlushing
	stateEvicting
	stateEvictFlushing
)

func (s state) String() string {
	switch s {
	case stateEmpty:
		return "empty"
	case stateResident:
		return "resident"
	case stateFlushing:
		return "flushing"
	case stateEvicting:
		return "evicting"
	case stateEvictFlushing:
		return "evict-flushing"
	default:
		return "unknown"
	}
}

type mode uint8

const (
	modeRead mode = iota
	modeWrite
)

// entry is one slot of the cache table.
// All fields except content are guarded by mu; content is guarded by the
// access protocol (see package doc).
type entry struct {
	mu    sync.Mutex
	ready *sync.Cond

	sector uint32
	target uint32
	state  state

	accessed bool
	dirty    bool

	readers        int
	writers        int
	waitingReaders int
	waitingWriters int

	content []byte
}

func newEntry(blockSize int) *entry {
	e := &entry{
		sector:  device.InvalidSector,
		target:  device.InvalidSector,
		content: mem.AllocBlock(blockSize),
	}
	e.ready = sync.NewCond(&e.mu)

	return e
}

func (e *entry) evicting() bool {
	return e.state == stateEvicting || e.state == stateEvictFlushing
}

func (e *entry) flushing() bool {
	return e.state == stateFlushing || e.state == stateEvictFlushing
}

func (e *entry) pinned() bool {
	return e.readers+e.writers+e.waitingReaders+e.waitingWriters > 0
}

// busy reports whether the clock must pass over the entry.
func (e *entry) busy() bool {
	return e.pinned() || e.flushing() || e.evicting()
}

// announce registers a pending access. Caller holds e.mu.
func (e *entry) announce(m mode) {
	if m == modeRead {
		e.waitingReaders++
	} else {
		e.waitingWriters++
	}
}

// read copies len(dst) bytes starting at off. The caller must have announced
// a read.
func (e *entry) read(dst []byte, off int) {
	e.mu.Lock()
	for e.evicting() || e.flushing() || e.writers+e.waitingWriters > 0 {
		e.ready.Wait()
	}

	invariant(e.waitingReaders > 0, "read on entry %d without announcement", e.sector)
	e.waitingReaders--
	e.readers++
	e.mu.Unlock()

	copy(dst, e.content[off:off+len(dst)])

	e.mu.Lock()
	e.readers--
	e.accessed = true
	e.ready.Broadcast()
	e.mu.Unlock()
}

// write copies src into the block starting at off. The caller must have
// announced a write.
func (e *entry) write(src []byte, off int) {
	e.mu.Lock()
	for e.evicting() || e.flushing() || e.readers+e.writers > 0 {
		e.ready.Wait()
	}

	invariant(e.waitingWriters > 0, "write on entry %d without announcement", e.sector)
	e.waitingWriters--
	e.writers++
	e.mu.Unlock()

	copy(e.content[off:], src)

	e.mu.Lock()
	e.writers--
	e.accessed = true
	e.dirty = true
	e.ready.Broadcast()
	e.mu.Unlock()
}

// beginEvict marks the entry as the victim for target and reports whether its
// old content has to be written back first. Caller holds e.mu.
func (e *entry) beginEvict(target uint32) bool {
	invariant(!e.evicting(), "entry %d selected for eviction twice", e.sector)

	e.target = target
	if e.dirty {
		e.state = stateEvictFlushing
		return true
	}

	e.state = stateEvicting

	return false
}

// install makes the entry resident for its target sector and registers the
// caller's pending access before anyone else can run.
func (e *entry) install(m mode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	invariant(e.state == stateEvicting, "install on entry in state %s", e.state)
	invariant(!e.dirty, "install over dirty entry %d", e.sector)

	e.sector = e.target
	e.target = device.InvalidSector
	e.state = stateResident
	e.accessed = false
	e.announce(m)
	e.ready.Broadcast()
}

// finishWriteBack clears dirty after a write-back and leaves the flushing state.
func (e *entry) finishWriteBack() {
	e.mu.Lock()
	e.dirty = false
	switch e.state {
	case stateFlushing:
		e.state = stateResident
	case stateEvictFlushing:
		e.state = stateEvicting
	default:
		panic("cache: invariant violated: write-back finished in state " + e.state.String())
	}
	e.ready.Broadcast()
	e.mu.Unlock()
}
