package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/ganttly/internal/db"
	"github.com/alexanderramin/ganttly/internal/domain"
)

// SQLiteSnapshotRepo implements SnapshotRepo on a DBTX, so it can run
// standalone or bound to a transaction.
type SQLiteSnapshotRepo struct {
	db db.DBTX
}

// NewSQLiteSnapshotRepo creates a new SQLiteSnapshotRepo.
func NewSQLiteSnapshotRepo(d db.DBTX) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: d}
}

const snapshotColumns = `id, name, project_id, type, created_at`

func (r *SQLiteSnapshotRepo) Create(ctx context.Context, rec *SnapshotRecord) error {
	query := `INSERT INTO snapshots (id, name, project_id, type, payload, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.Info.ID,
		rec.Info.Name,
		rec.Info.ProjectID,
		string(rec.Info.Type),
		string(rec.Payload),
		len(rec.Payload),
		formatTimestamp(rec.Info.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	rec.SizeBytes = len(rec.Payload)
	rec.Info.SizeBytes = rec.SizeBytes
	return nil
}

func (r *SQLiteSnapshotRepo) GetByName(ctx context.Context, name string) (*SnapshotRecord, error) {
	query := `SELECT ` + snapshotColumns + `, payload, size_bytes FROM snapshots WHERE name = ?`
	row := r.db.QueryRowContext(ctx, query, name)

	var rec SnapshotRecord
	var typ, createdAt, payload string
	err := row.Scan(&rec.Info.ID, &rec.Info.Name, &rec.Info.ProjectID, &typ, &createdAt, &payload, &rec.SizeBytes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}
	rec.Info.Type = domain.SnapshotType(typ)
	rec.Info.SizeBytes = rec.SizeBytes
	rec.Info.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	rec.Payload = []byte(payload)
	return &rec, nil
}

func (r *SQLiteSnapshotRepo) List(ctx context.Context) ([]domain.SnapshotInfo, error) {
	query := `SELECT ` + snapshotColumns + `, size_bytes FROM snapshots ORDER BY created_at DESC, rowid DESC`
	return r.queryInfos(ctx, query)
}

func (r *SQLiteSnapshotRepo) ListByProject(ctx context.Context, projectID string) ([]domain.SnapshotInfo, error) {
	query := `SELECT ` + snapshotColumns + `, size_bytes FROM snapshots WHERE project_id = ?
		ORDER BY created_at DESC, rowid DESC`
	return r.queryInfos(ctx, query, projectID)
}

func (r *SQLiteSnapshotRepo) Latest(ctx context.Context) (*domain.SnapshotInfo, error) {
	query := `SELECT ` + snapshotColumns + `, size_bytes FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`
	infos, err := r.queryInfos(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("latest snapshot: %w", ErrNotFound)
	}
	return &infos[0], nil
}

func (r *SQLiteSnapshotRepo) DeleteByName(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("snapshot %q: %w", name, ErrNotFound)
	}
	return nil
}

// PruneAuto deletes all but the newest keep auto snapshots of a project and
// returns how many rows were removed. Manual snapshots are never pruned.
func (r *SQLiteSnapshotRepo) PruneAuto(ctx context.Context, projectID string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	query := `DELETE FROM snapshots WHERE id IN (
		SELECT id FROM snapshots
		WHERE project_id = ? AND type = 'auto'
		ORDER BY created_at DESC, rowid DESC
		LIMIT -1 OFFSET ?
	)`
	res, err := r.db.ExecContext(ctx, query, projectID, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning auto snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning auto snapshots: %w", err)
	}
	return int(n), nil
}

func (r *SQLiteSnapshotRepo) queryInfos(ctx context.Context, query string, args ...any) ([]domain.SnapshotInfo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var infos []domain.SnapshotInfo
	for rows.Next() {
		var info domain.SnapshotInfo
		var typ, createdAt string
		if err := rows.Scan(&info.ID, &info.Name, &info.ProjectID, &typ, &createdAt, &info.SizeBytes); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		info.Type = domain.SnapshotType(typ)
		info.CreatedAt, err = parseTimestamp(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return infos, nil
}
