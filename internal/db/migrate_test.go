package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Re-running must tolerate the ALTER TABLE statements.
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"snapshots", "recent_projects"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_snapshots_project",
		"idx_snapshots_created",
		"idx_recent_projects_opened",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_MemoryJournalMode(t *testing.T) {
	// WAL only applies to file databases; in-memory reports "memory".
	db := openTestDB(t)

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "memory", mode)
}

func TestMigrate_SnapshotTypeCheckConstraint(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO snapshots (id, name, project_id, type, payload, created_at)
		VALUES ('s1', 'bad', 'p1', 'INVALID', '{}', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "invalid snapshot type should be rejected by CHECK constraint")

	_, err = db.Exec(`INSERT INTO snapshots (id, name, project_id, type, payload, created_at)
		VALUES ('s1', 'good', 'p1', 'manual', '{}', '2025-01-01T00:00:00Z')`)
	assert.NoError(t, err)
}

func TestMigrate_SnapshotNameUnique(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO snapshots (id, name, project_id, payload, created_at)
		VALUES ('s1', 'dup', 'p1', '{}', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO snapshots (id, name, project_id, payload, created_at)
		VALUES ('s2', 'dup', 'p1', '{}', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err)
}

// TestMigrate_UpgradeBackfillsSnapshotSize simulates a database created before
// size_bytes existed and checks existing rows survive with their size filled.
func TestMigrate_UpgradeBackfillsSnapshotSize(t *testing.T) {
	db, err := sql.Open("sqlite", MemoryPath)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE snapshots (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		project_id  TEXT NOT NULL,
		type        TEXT NOT NULL DEFAULT 'auto'
		            CHECK(type IN ('auto','manual')),
		payload     TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO snapshots (id, name, project_id, payload, created_at)
		VALUES ('s1', 'legacy', 'p1', '{"a":1}', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	var size int
	require.NoError(t, db.QueryRow(`SELECT size_bytes FROM snapshots WHERE id = 's1'`).Scan(&size))
	assert.Equal(t, len(`{"a":1}`), size)
}
