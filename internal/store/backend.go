package store

import (
	"context"

	"github.com/alexanderramin/ganttly/internal/domain"
)

// Backend is the durable storage the store orchestrates. Implementations
// must be safe for use from the autosave goroutine.
//
// LoadSnapshot returns (nil, nil) for an unknown name and GetLatestSnapshot
// returns (nil, nil) when no snapshot exists.
type Backend interface {
	SaveAutoSnapshot(ctx context.Context, pkg *domain.Package, typ domain.SnapshotType) (domain.SnapshotInfo, error)
	LoadSnapshot(ctx context.Context, name string) (*domain.Package, error)
	GetSnapshotsList(ctx context.Context) ([]domain.SnapshotInfo, error)
	DeleteSnapshot(ctx context.Context, name string) error
	GetLatestSnapshot(ctx context.Context) (*domain.SnapshotInfo, error)
	LoadProjectFromFile(ctx context.Context, path string) (*domain.Package, error)
	SaveProjectToFile(ctx context.Context, pkg *domain.Package, path string) error
	UpdateRecentProjects(ctx context.Context, rp domain.RecentProject) error
	ListRecentProjects(ctx context.Context, limit int) ([]domain.RecentProject, error)
}

// ProgressFunc maps a task list to a completion percentage in [0, 100].
type ProgressFunc func(tasks []domain.Task) float64
