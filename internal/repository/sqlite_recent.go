package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/ganttly/internal/db"
	"github.com/alexanderramin/ganttly/internal/domain"
)

// SQLiteRecentProjectRepo implements RecentProjectRepo using a SQLite database.
type SQLiteRecentProjectRepo struct {
	db db.DBTX
}

// NewSQLiteRecentProjectRepo creates a new SQLiteRecentProjectRepo.
func NewSQLiteRecentProjectRepo(d db.DBTX) *SQLiteRecentProjectRepo {
	return &SQLiteRecentProjectRepo{db: d}
}

// Upsert records r, replacing any earlier entry for the same project.
func (r *SQLiteRecentProjectRepo) Upsert(ctx context.Context, rp *domain.RecentProject) error {
	query := `INSERT INTO recent_projects (project_uuid, file_name, file_path, is_temporary, opened_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(project_uuid) DO UPDATE SET
			file_name = excluded.file_name,
			file_path = excluded.file_path,
			is_temporary = excluded.is_temporary,
			opened_at = excluded.opened_at`
	_, err := r.db.ExecContext(ctx, query,
		rp.ProjectUUID,
		rp.FileName,
		rp.FilePath,
		boolToInt(rp.IsTemporary),
		formatTimestamp(rp.OpenedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting recent project: %w", err)
	}
	return nil
}

// List returns the most recently opened projects first. A limit <= 0 means
// no limit.
func (r *SQLiteRecentProjectRepo) List(ctx context.Context, limit int) ([]domain.RecentProject, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT project_uuid, file_name, file_path, is_temporary, opened_at
		FROM recent_projects ORDER BY opened_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent projects: %w", err)
	}
	defer rows.Close()

	var out []domain.RecentProject
	for rows.Next() {
		var rp domain.RecentProject
		var temp int
		var openedAt string
		if err := rows.Scan(&rp.ProjectUUID, &rp.FileName, &rp.FilePath, &temp, &openedAt); err != nil {
			return nil, fmt.Errorf("scanning recent project row: %w", err)
		}
		rp.IsTemporary = intToBool(temp)
		if rp.OpenedAt, err = parseTimestamp(openedAt); err != nil {
			return nil, fmt.Errorf("parsing opened_at: %w", err)
		}
		out = append(out, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent projects: %w", err)
	}
	return out, nil
}

func (r *SQLiteRecentProjectRepo) Delete(ctx context.Context, projectUUID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recent_projects WHERE project_uuid = ?`, projectUUID)
	if err != nil {
		return fmt.Errorf("deleting recent project: %w", err)
	}
	return nil
}
