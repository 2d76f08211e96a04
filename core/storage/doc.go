// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small interface. The sync service keeps its
// shared field-map table in a bucket so every replica loads the same mapping, and the
// "mapping push" command publishes a local table there.
//
// # Operations
//
//   - BucketExists / MakeBucket: used by EnsureBucket before publishing.
//   - PutObject: uploads content (with size and options).
//   - GetObject: retrieves content as a stream; ReadObject reads it fully.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	data, err := storage.ReadObject(ctx, client, "cloudsync", "mapping/mapper.yaml")
package storage
