// Package intake validates uploaded objects and indexes accepted ones.
package intake

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"fileintake/internal/errorreport"
	"fileintake/internal/logx"
	"fileintake/internal/metrics"
	"fileintake/internal/model"
	"fileintake/internal/repository"
	"fileintake/internal/storage"
)

// RetentionWindow is the fixed lifetime of a metadata record; the store's
// expiry sweep removes the record once uploadDate + RetentionWindow passes.
const RetentionWindow = 30 * time.Minute

var tracer = otel.Tracer("fileintake/intake")

// Validator handles one object-created event per invocation: it checks the
// extension allow-list, fetches size metadata, and writes exactly one
// FileMetadata record for accepted uploads. Rejections publish to the error
// channel instead and are not faults. Invocations are stateless and safe to
// re-run; a redelivered event produces a duplicate record with a fresh id.
type Validator struct {
	store   storage.ObjectStore
	repo    repository.MetadataRepository
	errors  errorreport.Publisher
	allowed map[string]struct{}
	mx      *metrics.Pipeline
	now     func() time.Time
}

// NewValidator constructs a validator with the given allow-list. Extensions
// are matched case-insensitively by construction: the list and every
// extracted extension are lower-cased.
func NewValidator(store storage.ObjectStore, repo repository.MetadataRepository, errors errorreport.Publisher, allowedExtensions []string, mx *metrics.Pipeline) *Validator {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &Validator{
		store:   store,
		repo:    repo,
		errors:  errors,
		allowed: allowed,
		mx:      mx,
		now:     time.Now,
	}
}

// HandleObjectCreated processes a single object-created event. A returned
// error marks the invocation failed so the redelivery runner retries it;
// rejection by the allow-list returns nil.
func (v *Validator) HandleObjectCreated(ctx context.Context, ev storage.ObjectCreatedEvent) error {
	ctx, span := tracer.Start(ctx, "intake.HandleObjectCreated")
	defer span.End()

	key, err := url.QueryUnescape(ev.Key)
	if err != nil {
		return fmt.Errorf("decode object key %q: %w", ev.Key, err)
	}
	ext := strings.ToLower(path.Ext(key))
	span.SetAttributes(attribute.String("file.key", key), attribute.String("file.extension", ext))

	if _, ok := v.allowed[ext]; !ok {
		msg := fmt.Sprintf("Invalid file extension: %s for file %s", ext, key)
		if err := v.errors.Publish(ctx, msg); err != nil {
			return fmt.Errorf("publish rejection: %w", err)
		}
		v.mx.FilesRejected.WithLabelValues(ext).Inc()
		logx.Info("intake", "upload_rejected", map[string]any{
			"bucket":    ev.Bucket,
			"key":       key,
			"extension": ext,
		})
		return nil
	}

	info, err := v.store.Stat(ctx, key)
	if err != nil {
		return fmt.Errorf("head object %q: %w", key, err)
	}

	now := v.now().UTC()
	rec := &model.FileMetadata{
		ID:             uuid.NewString(),
		UploadDate:     now,
		FileExtension:  ext,
		FileName:       key,
		FileSize:       info.Size,
		ExpirationTime: now.Add(RetentionWindow).Unix(),
	}

	if _, err := v.repo.Put(ctx, rec); err != nil {
		return fmt.Errorf("put metadata for %q: %w", key, err)
	}

	v.mx.FilesAccepted.Inc()
	logx.Info("intake", "upload_indexed", map[string]any{
		"id":        rec.ID,
		"key":       key,
		"extension": ext,
		"size":      rec.FileSize,
	})
	return nil
}
