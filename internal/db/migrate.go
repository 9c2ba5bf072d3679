package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillSnapshotSize(db); err != nil {
		return fmt.Errorf("backfilling snapshot sizes: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		project_id  TEXT NOT NULL,
		type        TEXT NOT NULL DEFAULT 'auto'
		            CHECK(type IN ('auto','manual')),
		payload     TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_snapshots_project ON snapshots(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at)`,

	`CREATE TABLE IF NOT EXISTS recent_projects (
		project_uuid TEXT PRIMARY KEY,
		file_name    TEXT NOT NULL,
		file_path    TEXT NOT NULL DEFAULT '',
		is_temporary INTEGER NOT NULL DEFAULT 0,
		opened_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_recent_projects_opened ON recent_projects(opened_at)`,

	// Track payload size for snapshot listings
	`ALTER TABLE snapshots ADD COLUMN size_bytes INTEGER NOT NULL DEFAULT 0`,
}

// migrateBackfillSnapshotSize fills size_bytes for rows written before the
// column existed. Idempotent: only touches rows still at 0.
func migrateBackfillSnapshotSize(db *sql.DB) error {
	ctx := context.Background()

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE size_bytes = 0`).Scan(&count); err != nil {
		return fmt.Errorf("checking snapshot sizes: %w", err)
	}
	if count == 0 {
		return nil
	}

	if _, err := db.ExecContext(ctx, `UPDATE snapshots SET size_bytes = length(payload) WHERE size_bytes = 0`); err != nil {
		return fmt.Errorf("updating snapshot sizes: %w", err)
	}
	return nil
}
