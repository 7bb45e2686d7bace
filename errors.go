package blockcache

import (
	"errors"
	"fmt"

	"github.com/hupe1980/blockcache/device"
	"github.com/hupe1980/blockcache/internal/cache"
	"github.com/hupe1980/blockcache/resource"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("blockcache: closed")

	// ErrInvalidCapacity is returned by New for a capacity below one block.
	ErrInvalidCapacity = errors.New("blockcache: invalid capacity")

	// ErrInvalidSector is returned for device.InvalidSector or a sector past
	// the end of the device.
	ErrInvalidSector = errors.New("blockcache: invalid sector")

	// ErrBlockSize is returned when a whole-block buffer is not exactly one
	// block long, or the device reports a non-positive block size.
	ErrBlockSize = errors.New("blockcache: wrong block size")

	// ErrCacheExhausted is returned when a miss found every entry in use for
	// longer than the configured eviction wait.
	ErrCacheExhausted = errors.New("blockcache: all entries in use")

	// ErrMemoryLimit is returned by New when the resource controller cannot
	// reserve the entry buffers.
	ErrMemoryLimit = errors.New("blockcache: memory limit exceeded")
)

// ErrOutOfRange indicates a partial access that leaves the block.
//
// The underlying error can be accessed via errors.Unwrap.
type ErrOutOfRange struct {
	Offset    int
	Length    int
	BlockSize int
	cause     error
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("blockcache: range [%d,%d) exceeds block size %d", e.Offset, e.Offset+e.Length, e.BlockSize)
}

func (e *ErrOutOfRange) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, cache.ErrClosed):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	case errors.Is(err, cache.ErrInvalidCapacity):
		return fmt.Errorf("%w: %w", ErrInvalidCapacity, err)
	case errors.Is(err, cache.ErrInvalidSector):
		return fmt.Errorf("%w: %w", ErrInvalidSector, err)
	case errors.Is(err, cache.ErrBlockSize), errors.Is(err, device.ErrBlockSize):
		return fmt.Errorf("%w: %w", ErrBlockSize, err)
	case errors.Is(err, cache.ErrCacheExhausted):
		return fmt.Errorf("%w: %w", ErrCacheExhausted, err)
	case errors.Is(err, resource.ErrMemoryLimitExceeded):
		return fmt.Errorf("%w: %w", ErrMemoryLimit, err)
	}

	return err
}

// rangeError attaches the failed range to an out-of-range error.
func rangeError(err error, offset, length, blockSize int) error {
	if errors.Is(err, cache.ErrOutOfRange) {
		return &ErrOutOfRange{Offset: offset, Length: length, BlockSize: blockSize, cause: err}
	}

	return translateError(err)
}
