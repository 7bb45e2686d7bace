// Package blobstore abstracts the object stores behind ObjectDevice.
//
// A Store holds whole objects addressed by name. Implementations must be safe
// for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: one file per object under a directory
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3 through the AWS SDK
//   - s3.DDBStore: Amazon DynamoDB, one item per object
//
// # Custom Implementations
//
//	type Store interface {
//	    Get(ctx, name) ([]byte, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Get must return an error satisfying errors.Is(err, ErrNotFound) for
// missing objects; devices treat those as never-written blocks.
package blobstore
