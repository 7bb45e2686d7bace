// Package device defines the block device contract consumed by the cache and
// ships several implementations.
//
// A Device exposes NumBlocks fixed-size blocks addressed by a uint32 sector.
// Sector math.MaxUint32 is reserved as InvalidSector and is never a valid
// address.
//
// Implementations:
//
//   - MemoryDevice: a byte slice, for tests and scratch space
//   - FileDevice: a regular file addressed with ReadAt/WriteAt
//   - MmapDevice: a shared memory mapping of a file (unix only)
//   - ObjectDevice: one object per written block in a blobstore.Store
//     (memory, MinIO, S3, DynamoDB), optionally compressed
//
// Implementations must be safe for concurrent use on distinct sectors. The
// cache never issues two concurrent operations on the same sector.
package device
