// Package storage wraps the MinIO Go client for the event journal bucket.
//
// Client is the narrow interface the rest of the code depends on; a testify
// mock lives in core/storage/mocks. NewClient works with AWS S3 and
// self-hosted MinIO alike and bounds every connection with Config.Timeout.
//
// PutJSON and ListKeys are the two object helpers the journal is built on:
//
//	err := storage.PutJSON(ctx, client, "journal", "events/1.json", entry, nil)
//	keys, err := storage.ListKeys(ctx, client, "journal", "events/")
package storage
