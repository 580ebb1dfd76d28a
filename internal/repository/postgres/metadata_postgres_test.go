package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"fileintake/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var metadataColumns = []string{"id", "upload_date", "file_extension", "file_name", "file_size", "expiration_time"}

func TestMetadataPostgres_Put(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewMetadataPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rec := &model.FileMetadata{
		ID:             "test-uuid",
		UploadDate:     now,
		FileExtension:  ".pdf",
		FileName:       "report.pdf",
		FileSize:       2048,
		ExpirationTime: now.Add(30 * time.Minute).Unix(),
	}

	t.Run("success", func(t *testing.T) {
		rows := sqlmock.NewRows(metadataColumns).
			AddRow(rec.ID, rec.UploadDate, rec.FileExtension, rec.FileName, rec.FileSize, rec.ExpirationTime)

		mock.ExpectQuery("INSERT INTO file_metadata").
			WithArgs(rec.ID, rec.UploadDate, rec.FileExtension, rec.FileName, rec.FileSize, rec.ExpirationTime).
			WillReturnRows(rows)

		stored, err := repo.Put(ctx, rec)

		assert.NoError(t, err)
		assert.NotNil(t, stored)
		assert.Equal(t, rec.ID, stored.ID)
		assert.Equal(t, rec.ExpirationTime, stored.ExpirationTime)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert error", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO file_metadata").
			WillReturnError(errors.New("insert failed"))

		stored, err := repo.Put(ctx, rec)

		assert.Error(t, err)
		assert.Nil(t, stored)
	})
}

func TestMetadataPostgres_FindByExtension(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewMetadataPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		now := time.Now().UTC()
		rows := sqlmock.NewRows(metadataColumns).
			AddRow("id-1", now, ".pdf", "report.pdf", 2048, now.Add(30*time.Minute).Unix()).
			AddRow("id-2", now.Add(-time.Minute), ".pdf", "older.pdf", 512, now.Add(29*time.Minute).Unix())

		mock.ExpectQuery("SELECT (.+) FROM file_metadata WHERE file_extension = ?").
			WithArgs(".pdf", 10).
			WillReturnRows(rows)

		items, err := repo.FindByExtension(ctx, ".pdf", 10)

		assert.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, "report.pdf", items[0].FileName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM file_metadata WHERE file_extension = ?").
			WithArgs(".exe", 10).
			WillReturnRows(sqlmock.NewRows(metadataColumns))

		items, err := repo.FindByExtension(ctx, ".exe", 10)

		assert.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestMetadataPostgres_DeleteExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewMetadataPostgres(db)
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("rows deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM file_metadata WHERE expiration_time").
			WithArgs(now.Unix()).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.DeleteExpired(ctx, now)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM file_metadata WHERE expiration_time").
			WithArgs(now.Unix()).
			WillReturnError(errors.New("delete failed"))

		n, err := repo.DeleteExpired(ctx, now)

		assert.Error(t, err)
		assert.Zero(t, n)
	})
}
