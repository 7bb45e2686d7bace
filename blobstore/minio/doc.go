// Package minio provides a blobstore.Store on the MinIO client.
//
// It works with MinIO and any S3-compatible server (Ceph, Garage, SeaweedFS)
// and needs no AWS dependencies.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "blocks", "volumes/disk0")
//	dev, err := device.OpenObject(ctx, store, 4096, 1<<20)
package minio
