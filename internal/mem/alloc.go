package mem

import (
	"unsafe"
)

// PageSize is the alignment of block buffers. It satisfies the O_DIRECT
// requirements of common Linux filesystems.
const PageSize = 4096

// AllocBlock allocates a zeroed buffer of size bytes whose first byte is
// PageSize aligned. It returns nil for size <= 0.
//
// The buffer is carved out of a slightly larger allocation; the slice keeps
// the backing array alive.
func AllocBlock(size int) []byte {
	return AllocAligned(size, PageSize)
}

// AllocAligned allocates size bytes aligned to align, which must be a power
// of two.
func AllocAligned(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	if align <= 1 {
		return make([]byte, size)
	}
	if align&(align-1) != 0 {
		panic("mem: alignment must be a power of two")
	}

	buf := make([]byte, size+align)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := int((uintptr(align) - addr&uintptr(align-1)) & uintptr(align-1))

	return buf[offset : offset+size : offset+size]
}

// IsAligned reports whether b starts at a multiple of align.
func IsAligned(b []byte, align int) bool {
	if len(b) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&b[0]))%uintptr(align) == 0 //nolint:gosec // address inspection only
}
