// Package hash computes the CRC32-Castagnoli checksums used for block frames
// and for object upload integrity headers.
//
// Go's hash/crc32 uses the SSE4.2 and ARM CRC instructions for this
// polynomial when the CPU has them.
package hash
