// Package cache implements the fixed-capacity, concurrent block cache that sits
// between file-system code and a block device.
//
// # Table
//
// The cache owns a fixed slice of entries allocated once at construction. Each
// entry holds one block of content plus its synchronization state, guarded by
// the entry's own mutex and condition variable. A single table mutex orders
// sector→entry resolution and the start of eviction; it is never held across
// device I/O or data copies.
//
// # Entry states
//
//	empty ──install──▶ resident ◀──────────────┐
//	                     │  ▲                  │
//	               flush │  │ write-back done  │ install
//	                     ▼  │                  │
//	                   flushing            evicting ◀── evictFlushing
//	                                           ▲              ▲
//	                      clean victim ────────┘              │
//	                      dirty victim ───────────────────────┘
//
// An evicting entry is associated with two sectors: the one it still holds and
// the target it is being installed with. Lookups for the target join the
// installation instead of starting a second one, so a sector is never cached
// twice.
//
// # Access protocol
//
// Every access announces itself by bumping a waiting counter while the lock
// that found the entry is still held, waits on the entry's condition variable
// until no conflicting access is active, copies bytes without holding any lock,
// then publishes accessed/dirty and broadcasts.
//
// Readers wait for writers (active or waiting), flushes, and evictions. Writers
// wait for active readers and writers, flushes, and evictions. Waiting writers
// block new readers, so writers are preferred; there is no FIFO fairness
// between the two.
//
// # Eviction
//
// Victims are chosen by a clock (second-chance) sweep: pinned, flushing, and
// evicting entries are skipped, accessed entries lose their bit and are
// skipped, and the first remaining entry is taken. A dirty victim is written
// back before its slot is reused. When a full sweep finds every entry busy
// the miss releases the table lock and sleeps until a read, write, or flush
// releases one. After [Options.MaxEvictionWait] it gets [ErrCacheExhausted].
//
// # Background tasks
//
// A flush daemon writes back dirty entries every [Options.FlushInterval] and a
// read-ahead daemon services prefetch hints through the ordinary read path.
// Both stop when the cache is closed.
//
// # Failures
//
// Device errors are fatal: the cache panics with a *device.Error. Broken
// internal invariants panic as well.
package cache
