// Package mem allocates the cache's block buffers.
//
// Buffers are page aligned so a device may hand them to the kernel for
// direct I/O without an intermediate copy.
package mem
