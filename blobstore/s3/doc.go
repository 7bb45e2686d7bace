// Package s3 provides blobstore.Store implementations on AWS.
//
//   - Store: one S3 object per block object, uploaded through the transfer
//     manager with CRC32C checksums
//   - DDBStore: one DynamoDB item per block object, for small blocks that
//     need single-digit millisecond access
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil { ... }
//
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "volumes/disk0")
//	dev, err := device.OpenObject(ctx, store, 4096, 1<<20)
//
// Both stores accept narrow client interfaces (Client, DDBClient) so tests
// can substitute mocks.
package s3
