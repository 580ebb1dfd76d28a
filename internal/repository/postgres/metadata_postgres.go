package postgres

import (
	"context"
	"database/sql"
	"time"

	"fileintake/internal/model"
	"fileintake/internal/repository"
)

// MetadataPostgres is a PostgreSQL implementation of repository.MetadataRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Inserts fire the file_metadata_feed trigger, which is what makes the
// change feed emit an insert event for every stored record.
type MetadataPostgres struct {
	db *sql.DB
}

// NewMetadataPostgres creates a new MetadataPostgres repository.
func NewMetadataPostgres(db *sql.DB) *MetadataPostgres {
	return &MetadataPostgres{db: db}
}

var _ repository.MetadataRepository = (*MetadataPostgres)(nil)

// Put inserts a new metadata row and returns the stored record.
func (r *MetadataPostgres) Put(ctx context.Context, rec *model.FileMetadata) (*model.FileMetadata, error) {
	const q = `
		INSERT INTO file_metadata (id, upload_date, file_extension, file_name, file_size, expiration_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, upload_date, file_extension, file_name, file_size, expiration_time
	`
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.UploadDate,
		rec.FileExtension,
		rec.FileName,
		rec.FileSize,
		rec.ExpirationTime,
	)
	var out model.FileMetadata
	if err := row.Scan(
		&out.ID,
		&out.UploadDate,
		&out.FileExtension,
		&out.FileName,
		&out.FileSize,
		&out.ExpirationTime,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByExtension returns records for one extension, newest first.
func (r *MetadataPostgres) FindByExtension(ctx context.Context, ext string, limit int) ([]model.FileMetadata, error) {
	const q = `
		SELECT id, upload_date, file_extension, file_name, file_size, expiration_time
		FROM file_metadata
		WHERE file_extension = $1
		ORDER BY upload_date DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, ext, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.FileMetadata, 0)
	for rows.Next() {
		var m model.FileMetadata
		if err := rows.Scan(
			&m.ID,
			&m.UploadDate,
			&m.FileExtension,
			&m.FileName,
			&m.FileSize,
			&m.ExpirationTime,
		); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteExpired removes rows whose expiration_time is at or before now.
// The feed trigger turns each deleted row into a remove event.
func (r *MetadataPostgres) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM file_metadata WHERE expiration_time <= $1`
	res, err := r.db.ExecContext(ctx, q, now.Unix())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
