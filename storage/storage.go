// Package storage is the narrow object-store surface the pipeline needs:
// get, put, copy, delete and prefix listing. Durability and versioning
// are the store's concern, not the pipeline's.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that a locator did not resolve to an object.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is the object-store collaborator. List paginates transparently
// and returns every object under the prefix.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
	Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	Delete(ctx context.Context, bucket, key string) error
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}
