package cache

import "sync"

// clock is the eviction hand. It has its own mutex so that Stats and tests can
// read it without taking the table lock.
type clock struct {
	mu   sync.Mutex
	hand int
	size int
}

func (c *clock) current() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hand
}

func (c *clock) advance() {
	c.mu.Lock()
	c.hand = (c.hand + 1) % c.size
	c.mu.Unlock()
}
