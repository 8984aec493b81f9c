// Package blobstore persists compressed stream-list snapshots so the cache
// layer can warm-start without recomputing every composite stream from the
// relational store.
//
// Implementations: MemoryStore and LocalStore here, plus S3 (with an
// optional DynamoDB commit pointer) and MinIO in subpackages.
package blobstore
