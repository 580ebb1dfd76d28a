package repository

import (
	"context"
	"time"

	"fileintake/internal/logx"
)

// ExpirySweeper enforces the per-record TTL inside the metadata store.
// It runs independently of the object-store janitor; the two lifetimes are
// unsynchronized, so a record can outlive its object and vice versa.
type ExpirySweeper struct {
	repo     MetadataRepository
	interval time.Duration
	now      func() time.Time
}

// NewExpirySweeper constructs a sweeper that deletes expired records on
// the given interval.
func NewExpirySweeper(repo MetadataRepository, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{
		repo:     repo,
		interval: interval,
		now:      time.Now,
	}
}

// Sweep deletes every record whose expiration time has passed.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now().UTC())
}

// Run sweeps on the configured interval until ctx is canceled. Sweep
// failures are logged; the next tick retries.
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				logx.Error("sweeper", "sweep_failed", err, nil)
				continue
			}
			if n > 0 {
				logx.Info("sweeper", "records_expired", map[string]any{"deleted": n})
			}
		}
	}
}
