package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fileintake/internal/logx"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_file_metadata",
		SQL: `CREATE TABLE IF NOT EXISTS file_metadata (
  id              UUID        NOT NULL,
  upload_date     TIMESTAMPTZ NOT NULL,
  file_extension  TEXT        NOT NULL,
  file_name       TEXT        NOT NULL,
  file_size       BIGINT      NOT NULL DEFAULT 0 CHECK (file_size >= 0),
  expiration_time BIGINT      NOT NULL,
  PRIMARY KEY (id, upload_date)
);`,
	},
	{
		Name: "create_index_file_metadata_extension",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_file_metadata_extension ON file_metadata (file_extension);`,
	},
	{
		Name: "create_index_file_metadata_expiration",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_file_metadata_expiration ON file_metadata (expiration_time);`,
	},
	{
		Name: "create_function_file_metadata_feed",
		SQL: `CREATE OR REPLACE FUNCTION file_metadata_feed_notify() RETURNS trigger AS $$
DECLARE
  payload TEXT;
BEGIN
  IF (TG_OP = 'INSERT') THEN
    payload := json_build_object('kind', 'insert', 'new', json_build_object(
      'id', NEW.id,
      'uploadDate', NEW.upload_date,
      'fileExtension', NEW.file_extension,
      'fileName', NEW.file_name,
      'fileSize', NEW.file_size,
      'expirationTime', NEW.expiration_time))::text;
  ELSIF (TG_OP = 'UPDATE') THEN
    payload := json_build_object('kind', 'modify', 'new', json_build_object(
      'id', NEW.id,
      'uploadDate', NEW.upload_date,
      'fileExtension', NEW.file_extension,
      'fileName', NEW.file_name,
      'fileSize', NEW.file_size,
      'expirationTime', NEW.expiration_time))::text;
  ELSE
    payload := json_build_object('kind', 'remove')::text;
  END IF;
  PERFORM pg_notify('file_metadata_feed', payload);
  RETURN NULL;
END;
$$ LANGUAGE plpgsql;`,
	},
	{
		Name: "create_trigger_file_metadata_feed",
		SQL: `DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'file_metadata_feed') THEN
    CREATE TRIGGER file_metadata_feed
      AFTER INSERT OR UPDATE OR DELETE ON file_metadata
      FOR EACH ROW EXECUTE FUNCTION file_metadata_feed_notify();
  END IF;
END $$;`,
	},
}

// EnsureMigrated checks if the 'file_metadata' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, dbHost string) error {
	start := time.Now()

	logx.Info("database", "db_migration_check", map[string]any{
		"db_host": dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.file_metadata') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		logx.Error("database", "db_migration_failed", err, map[string]any{
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logx.Info("database", "db_migration_skip", map[string]any{
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logx.Error("database", "db_migration_failed", err, map[string]any{
				"migration_step": step.Name,
				"db_host":        dbHost,
				"duration_ms":    time.Since(start).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logx.Info("database", "db_migration_step", map[string]any{
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logx.Info("database", "db_migration_success", map[string]any{
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}
