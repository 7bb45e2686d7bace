package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("cache closed")

	// ErrInvalidCapacity is returned by New for a capacity below one entry.
	ErrInvalidCapacity = errors.New("invalid capacity")

	// ErrInvalidSector is returned for the empty-slot sentinel or a sector
	// beyond the end of the device.
	ErrInvalidSector = errors.New("invalid sector")

	// ErrOutOfRange is returned when offset+length leaves the block.
	ErrOutOfRange = errors.New("range exceeds block")

	// ErrBlockSize is returned when a whole-block buffer has the wrong length.
	ErrBlockSize = errors.New("buffer is not one block")

	// ErrCacheExhausted is returned when every entry stayed busy for
	// Options.MaxEvictionWait.
	ErrCacheExhausted = errors.New("cache exhausted: all entries pinned")
)

func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("cache: invariant violated: "+format, args...))
	}
}
