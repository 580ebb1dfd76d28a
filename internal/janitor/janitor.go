// Package janitor purges aged objects from the object store on a fixed
// schedule. Its lifecycle is independent of the metadata TTL: an object may
// be purged while its record still exists, and vice versa.
package janitor

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"fileintake/internal/logx"
	"fileintake/internal/metrics"
	"fileintake/internal/storage"
)

var tracer = otel.Tracer("fileintake/janitor")

// Janitor deletes every object older than the configured max age.
type Janitor struct {
	store  storage.ObjectStore
	maxAge time.Duration
	mx     *metrics.Pipeline
	now    func() time.Time
}

// New constructs a janitor with the given age threshold.
func New(store storage.ObjectStore, maxAge time.Duration, mx *metrics.Pipeline) *Janitor {
	return &Janitor{
		store:  store,
		maxAge: maxAge,
		mx:     mx,
		now:    time.Now,
	}
}

// Run performs one purge pass: list, select strictly-older-than-cutoff,
// one batched delete. Per-key failures inside the batch are logged and
// trusted as final; they are not retried here.
func (j *Janitor) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "janitor.Run")
	defer span.End()

	objects, err := j.store.List(ctx, "")
	if err != nil {
		return fmt.Errorf("list objects: %w", err)
	}

	cutoff := j.now().Add(-j.maxAge)
	stale := make([]string, 0)
	for _, obj := range objects {
		if obj.LastModified.Before(cutoff) {
			stale = append(stale, obj.Key)
		}
	}
	span.SetAttributes(
		attribute.Int("janitor.listed", len(objects)),
		attribute.Int("janitor.stale", len(stale)),
	)

	if len(stale) == 0 {
		return nil
	}

	results, err := j.store.RemoveBatch(ctx, stale)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}

	deleted := 0
	for _, res := range results {
		if res.Err != nil {
			logx.Warn("janitor", "object_delete_failed", map[string]any{
				"key":   res.Key,
				"error": res.Err.Error(),
			})
			continue
		}
		deleted++
	}

	j.mx.ObjectsPurged.Add(float64(deleted))
	logx.Info("janitor", "purge_complete", map[string]any{
		"deleted":         deleted,
		"max_age_minutes": int(j.maxAge.Minutes()),
	})
	return nil
}

// RunLoop invokes Run on the given interval until ctx is canceled. A failed
// pass is logged; the next tick is the only retry mechanism.
func (j *Janitor) RunLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logx.Error("janitor", "purge_failed", err, nil)
			}
		}
	}
}
