package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"fileintake/internal/config"
	"fileintake/internal/logx"
)

// minioStore implements the ObjectStore interface against an S3-compatible
// backend (MinIO, AWS S3, etc.). It is safe for concurrent use by multiple
// goroutines.
type minioStore struct {
	client *minio.Client
	bucket string
}

// NewMinIO creates a new S3-compatible object store backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStore{client: cli, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

// Ping checks that the bucket is reachable.
func (m *minioStore) Ping(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", m.bucket)
	}
	return nil
}

// Stat fetches object metadata only; content is never read.
func (m *minioStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	st, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         st.Size,
		LastModified: st.LastModified,
	}, nil
}

// List drains the SDK's listing channel; minio-go continues across pages
// internally, so callers see one complete snapshot.
func (m *minioStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objects := make([]ObjectInfo, 0)
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return objects, nil
}

// RemoveBatch issues one batched delete and maps per-key errors back onto
// the input keys, preserving order.
func (m *minioStore) RemoveBatch(ctx context.Context, keys []string) ([]RemoveResult, error) {
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	failed := make(map[string]error, len(keys))
	for rerr := range m.client.RemoveObjects(ctx, m.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed[rerr.ObjectName] = rerr.Err
	}

	results := make([]RemoveResult, 0, len(keys))
	for _, key := range keys {
		results = append(results, RemoveResult{Key: key, Err: failed[key]})
	}
	return results, nil
}

// Listen subscribes to bucket notifications for created objects and
// translates them into ObjectCreatedEvents. Stream-level errors are logged
// and end the subscription; the returned channel is then closed.
func (m *minioStore) Listen(ctx context.Context) <-chan ObjectCreatedEvent {
	out := make(chan ObjectCreatedEvent)

	go func() {
		defer close(out)
		for info := range m.client.ListenBucketNotification(ctx, m.bucket, "", "", []string{"s3:ObjectCreated:*"}) {
			if info.Err != nil {
				if ctx.Err() == nil {
					logx.Error("storage", "notification_stream_error", info.Err, map[string]any{"bucket": m.bucket})
				}
				return
			}
			for _, rec := range info.Records {
				ev := ObjectCreatedEvent{
					Bucket: rec.S3.Bucket.Name,
					Key:    rec.S3.Object.Key,
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
