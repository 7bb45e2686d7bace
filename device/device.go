package device

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// InvalidSector marks an empty cache slot. It is never a valid address.
const InvalidSector uint32 = math.MaxUint32

var (
	// ErrOutOfRange is returned for a sector at or beyond NumBlocks.
	ErrOutOfRange = errors.New("sector out of range")

	// ErrBlockSize is returned when a buffer is not exactly one block.
	ErrBlockSize = errors.New("buffer length does not match block size")

	// ErrClosed is returned by operations on a closed device.
	ErrClosed = errors.New("device closed")
)

// Device is a fixed-geometry block device.
type Device interface {
	// ReadBlock fills p with the content of sector. len(p) must equal BlockSize.
	ReadBlock(ctx context.Context, sector uint32, p []byte) error
	// WriteBlock stores p as the content of sector. len(p) must equal BlockSize.
	WriteBlock(ctx context.Context, sector uint32, p []byte) error
	// BlockSize is the size of every block in bytes.
	BlockSize() int
	// NumBlocks is the number of addressable sectors.
	NumBlocks() uint32
}

// Op names a device operation.
type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

// Error describes a failed device operation.
type Error struct {
	Op     Op
	Sector uint32
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("device %s sector %d: %v", e.Op, e.Sector, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op Op, sector uint32, err error) error {
	if err == nil {
		return nil
	}

	var derr *Error
	if errors.As(err, &derr) {
		return err
	}

	return &Error{Op: op, Sector: sector, Err: err}
}

// check validates a request against the device geometry.
func check(d Device, sector uint32, p []byte) error {
	if sector == InvalidSector || sector >= d.NumBlocks() {
		return ErrOutOfRange
	}

	if len(p) != d.BlockSize() {
		return fmt.Errorf("%w: got %d, want %d", ErrBlockSize, len(p), d.BlockSize())
	}

	return nil
}

// Geometry returns the total capacity of d in bytes.
func Geometry(d Device) int64 {
	return int64(d.BlockSize()) * int64(d.NumBlocks())
}
