package mmap

import (
	"errors"
	"os"
	"sync"
)

// AccessPattern is a paging hint for the kernel.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	AccessSequential
	AccessRandom
	AccessWillNeed
	AccessDontNeed
)

var (
	// ErrClosed is returned when using a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for a non-positive mapping size.
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrUnsupported is returned on platforms without mmap support.
	ErrUnsupported = errors.New("mmap: unsupported platform")
)

// Mapping is a shared mapping of a file. It does not own the file.
type Mapping struct {
	mu       sync.RWMutex
	data     []byte
	writable bool
}

// Map maps the first size bytes of f. The file must be at least size bytes
// long. A writable mapping is shared, so stores reach the file.
func Map(f *os.File, size int, writable bool) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	data, err := osMap(f, size, writable)
	if err != nil {
		return nil, err
	}

	return &Mapping{data: data, writable: writable}, nil
}

// Bytes returns the mapped memory. It is nil after Close.
func (m *Mapping) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data
}

// Writable reports whether the mapping accepts stores.
func (m *Mapping) Writable() bool { return m.writable }

// Sync flushes dirty pages of the mapping to the file.
func (m *Mapping) Sync() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return ErrClosed
	}
	if !m.writable {
		return nil
	}
	return osSync(m.data)
}

// Advise passes an access pattern hint to the kernel.
func (m *Mapping) Advise(pattern AccessPattern) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return ErrClosed
	}
	return osAdvise(m.data, pattern)
}

// Close unmaps the memory. It is safe to call more than once.
func (m *Mapping) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil
	}

	err := osUnmap(m.data)
	m.data = nil
	return err
}
