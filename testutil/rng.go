package testutil

import (
	"math/rand"
	"sync"
)

// RNG is a seeded, thread-safe source of test data.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset rewinds the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Sector returns a pseudo-random sector in [0,numBlocks).
func (r *RNG) Sector(numBlocks uint32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint32(r.rand.Int63n(int64(numBlocks)))
}

// FillBytes fills p with pseudo-random bytes.
func (r *RNG) FillBytes(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Read(p)
}

// Block returns size pseudo-random bytes.
func (r *RNG) Block(size int) []byte {
	p := make([]byte, size)
	r.FillBytes(p)
	return p
}

// Pattern returns a block filled with b. Handy for spotting torn copies.
func Pattern(size int, b byte) []byte {
	p := make([]byte, size)
	for i := range p {
		p[i] = b
	}
	return p
}
