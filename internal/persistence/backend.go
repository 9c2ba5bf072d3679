// Package persistence implements the store's durable backend: project
// snapshots and the recent-projects list in SQLite, project files on disk.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/ganttly/internal/db"
	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/alexanderramin/ganttly/internal/pkgfile"
	"github.com/alexanderramin/ganttly/internal/repository"
	"github.com/google/uuid"
)

// DefaultRetention is the number of auto snapshots kept per project.
const DefaultRetention = 20

// Backend stores snapshots and recent projects through the repository layer.
type Backend struct {
	uow       db.UnitOfWork
	snapshots repository.SnapshotRepo
	recent    repository.RecentProjectRepo

	retention int
	now       func() time.Time
	newID     func() string
	wrapTx    func(db.DBTX) db.DBTX
}

type Option func(*Backend)

// WithRetention sets how many auto snapshots are kept per project. Zero or
// less keeps every snapshot.
func WithRetention(n int) Option {
	return func(b *Backend) {
		b.retention = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		if now != nil {
			b.now = now
		}
	}
}

// withTxWrapper decorates the handle snapshot transactions write through.
func withTxWrapper(wrap func(db.DBTX) db.DBTX) Option {
	return func(b *Backend) {
		b.wrapTx = wrap
	}
}

// New builds a backend over an opened and migrated database.
func New(database *sql.DB, opts ...Option) *Backend {
	b := &Backend{
		snapshots: repository.NewSQLiteSnapshotRepo(database),
		recent:    repository.NewSQLiteRecentProjectRepo(database),
		retention: DefaultRetention,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(b)
	}
	var uowOpts []db.UnitOfWorkOption
	if b.wrapTx != nil {
		uowOpts = append(uowOpts, db.WithTxWrapper(b.wrapTx))
	}
	b.uow = db.NewSQLiteUnitOfWork(database, uowOpts...)
	return b
}

// SaveAutoSnapshot stores pkg as a new snapshot of the given type. Old auto
// snapshots of the same project beyond the retention limit are pruned in the
// same transaction.
func (b *Backend) SaveAutoSnapshot(ctx context.Context, pkg *domain.Package, typ domain.SnapshotType) (domain.SnapshotInfo, error) {
	payload, err := pkgfile.Marshal(pkg)
	if err != nil {
		return domain.SnapshotInfo{}, fmt.Errorf("encoding snapshot: %w", err)
	}
	now := b.now()
	id := b.newID()
	rec := &repository.SnapshotRecord{
		Info: domain.SnapshotInfo{
			ID:        id,
			Name:      snapshotName(typ, pkg.Manifest.ProjectUUID, now, id),
			ProjectID: pkg.Manifest.ProjectUUID,
			CreatedAt: now,
			Type:      typ,
		},
		Payload: payload,
	}

	info, err := db.InTx(ctx, b.uow, func(ctx context.Context, tx db.DBTX) (domain.SnapshotInfo, error) {
		repo := repository.NewSQLiteSnapshotRepo(tx)
		if err := repo.Create(ctx, rec); err != nil {
			return domain.SnapshotInfo{}, err
		}
		if typ == domain.SnapshotAuto && b.retention > 0 {
			if _, err := repo.PruneAuto(ctx, rec.Info.ProjectID, b.retention); err != nil {
				return domain.SnapshotInfo{}, err
			}
		}
		return rec.Info, nil
	})
	if err != nil {
		return domain.SnapshotInfo{}, fmt.Errorf("saving %s snapshot: %w", typ, err)
	}
	return info, nil
}

// snapshotName is sortable by time and unique through the id suffix.
func snapshotName(typ domain.SnapshotType, projectID string, at time.Time, id string) string {
	return fmt.Sprintf("%s-%s-%s-%s", typ, short(projectID), at.Format("20060102T150405.000"), short(id))
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// LoadSnapshot returns (nil, nil) when no snapshot has the given name.
func (b *Backend) LoadSnapshot(ctx context.Context, name string) (*domain.Package, error) {
	rec, err := b.snapshots.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pkg, err := pkgfile.Unmarshal(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", name, err)
	}
	return pkg, nil
}

// GetSnapshotsList lists every snapshot, newest first.
func (b *Backend) GetSnapshotsList(ctx context.Context) ([]domain.SnapshotInfo, error) {
	infos, err := b.snapshots.List(ctx)
	if err != nil {
		return nil, err
	}
	if infos == nil {
		infos = []domain.SnapshotInfo{}
	}
	return infos, nil
}

func (b *Backend) DeleteSnapshot(ctx context.Context, name string) error {
	return b.snapshots.DeleteByName(ctx, name)
}

// GetLatestSnapshot returns (nil, nil) when there are no snapshots.
func (b *Backend) GetLatestSnapshot(ctx context.Context) (*domain.SnapshotInfo, error) {
	info, err := b.snapshots.Latest(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return info, err
}

func (b *Backend) LoadProjectFromFile(_ context.Context, path string) (*domain.Package, error) {
	return pkgfile.ReadFile(path)
}

func (b *Backend) SaveProjectToFile(_ context.Context, pkg *domain.Package, path string) error {
	return pkgfile.WriteFile(path, pkg)
}

func (b *Backend) UpdateRecentProjects(ctx context.Context, rp domain.RecentProject) error {
	if rp.OpenedAt.IsZero() {
		rp.OpenedAt = b.now()
	}
	return b.recent.Upsert(ctx, &rp)
}

func (b *Backend) ListRecentProjects(ctx context.Context, limit int) ([]domain.RecentProject, error) {
	return b.recent.List(ctx, limit)
}
