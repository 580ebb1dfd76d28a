// Package storage contains the object-store abstraction for S3-compatible
// backends. The pipeline never reads object content; only listing, size
// metadata, batched deletes, and creation events are needed.
package storage

import (
	"context"
	"time"
)

// ObjectInfo contains the metadata the pipeline uses about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectCreatedEvent is emitted once per uploaded object. Key is delivered
// URL-encoded, exactly as the backend publishes it.
type ObjectCreatedEvent struct {
	Bucket string
	Key    string
}

// RemoveResult reports the outcome of one key inside a batched delete.
type RemoveResult struct {
	Key string
	Err error
}

// ObjectStore is the capability set the pipeline needs from an
// S3-compatible object store.
type ObjectStore interface {
	// Ping verifies the backend is reachable and the bucket exists.
	Ping(ctx context.Context) error
	// Stat fetches size metadata for a single object without reading content.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// List returns every object under the prefix with its last-modified
	// timestamp. Continuation across pages is handled by the implementation.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// RemoveBatch deletes the given keys in one batched operation and
	// returns a per-key result. Partial failures are reported, not retried.
	RemoveBatch(ctx context.Context, keys []string) ([]RemoveResult, error)
	// Listen emits object-created events until ctx is canceled. The channel
	// closes when the upstream event stream ends; callers decide whether to
	// re-establish it.
	Listen(ctx context.Context) <-chan ObjectCreatedEvent
}
