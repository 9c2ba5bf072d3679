package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/ganttly/internal/domain"
)

// ErrNotFound is returned (wrapped) when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// SnapshotRecord is a stored snapshot: its listing info plus the encoded
// package payload.
type SnapshotRecord struct {
	Info      domain.SnapshotInfo
	Payload   []byte
	SizeBytes int
}

type SnapshotRepo interface {
	Create(ctx context.Context, rec *SnapshotRecord) error
	GetByName(ctx context.Context, name string) (*SnapshotRecord, error)
	List(ctx context.Context) ([]domain.SnapshotInfo, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.SnapshotInfo, error)
	Latest(ctx context.Context) (*domain.SnapshotInfo, error)
	DeleteByName(ctx context.Context, name string) error
	PruneAuto(ctx context.Context, projectID string, keep int) (int, error)
}

type RecentProjectRepo interface {
	Upsert(ctx context.Context, r *domain.RecentProject) error
	List(ctx context.Context, limit int) ([]domain.RecentProject, error)
	Delete(ctx context.Context, projectUUID string) error
}
