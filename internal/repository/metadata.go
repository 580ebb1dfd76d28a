package repository

import (
	"context"
	"time"

	"fileintake/internal/model"
)

// MetadataRepository defines data access for file metadata records using
// SQL queries only. No business logic here, strictly persistence operations.
type MetadataRepository interface {
	// Put inserts a new metadata record. Records are write-once: there is
	// deliberately no update operation.
	// Returns the stored record (may include values set by the DB).
	Put(ctx context.Context, rec *model.FileMetadata) (*model.FileMetadata, error)

	// FindByExtension returns up to limit records with the given extension,
	// newest first, via the secondary index.
	FindByExtension(ctx context.Context, ext string, limit int) ([]model.FileMetadata, error)

	// DeleteExpired removes every record whose expiration time has passed
	// relative to now. Returns the number of deleted rows.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
