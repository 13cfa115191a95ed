package storage

import "context"

// Object is a single blob written to the bucket. An empty CacheControl leaves
// the bucket default in place.
type Object struct {
	Key          string
	ContentType  string
	CacheControl string
	Body         []byte
}

type PutResult struct {
	Key  string
	URL  string
	ETag string
	Size int64
}

// ObjectStore is a bucket whose objects are readable at a public URL.
type ObjectStore interface {
	Put(ctx context.Context, obj Object) (*PutResult, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}
