package cache

import (
	"sync"
	"sync/atomic"

	"github.com/hupe1980/blockcache/device"
)

// idleSignal wakes misses that found every entry pinned. A waiter registers
// before it sweeps and takes the channel at the start of each sweep, so a
// release that lands after the sweep looked at an entry is never lost.
type idleSignal struct {
	waiters atomic.Int32

	mu sync.Mutex
	ch chan struct{}
}

func (s *idleSignal) wait() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch == nil {
		s.ch = make(chan struct{})
	}

	return s.ch
}

// notify is called whenever an entry may have stopped being busy.
func (s *idleSignal) notify() {
	if s.waiters.Load() == 0 {
		return
	}

	s.mu.Lock()
	if s.ch != nil {
		close(s.ch)
		s.ch = nil
	}
	s.mu.Unlock()
}

// evict selects a victim with the clock sweep, reserves it for target, and
// writes back its old content if it was dirty. The caller holds c.mu on entry
// and is registered with c.idle; evict always returns with c.mu released.
//
// The returned entry is in the evicting state and has to be installed by the
// caller. When a full sweep finds only busy entries evict returns no entry and
// a channel that is closed once one of them is released.
func (c *Cache) evict(target uint32) (*entry, <-chan struct{}) {
	n := len(c.entries)

	var (
		wake <-chan struct{}
		busy int
	)

	for step := 0; ; step++ {
		if step%n == 0 {
			if step > 0 && busy == n {
				c.mu.Unlock()
				return nil, wake
			}

			busy = 0
			wake = c.idle.wait()
		}

		e := c.entries[c.hand.current()]
		c.hand.advance()

		e.mu.Lock()

		if e.busy() {
			e.mu.Unlock()
			busy++

			continue
		}

		if e.accessed {
			e.accessed = false
			e.mu.Unlock()

			continue
		}

		old := e.sector
		dirty := e.beginEvict(target)
		e.mu.Unlock()
		c.mu.Unlock()

		if dirty {
			c.writeBack(e, old, false)
			e.finishWriteBack()
		}

		if old != device.InvalidSector {
			c.stats.evictions.Add(1)
			if dirty {
				c.stats.dirtyEvictions.Add(1)
			}
			c.metrics.OnEviction(old, dirty)
		}

		return e, nil
	}
}
