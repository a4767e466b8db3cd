package port

import "context"

// BlobStore writes immutable objects to object storage.
type BlobStore interface {
	Put(ctx context.Context, key string, body []byte) error
}
