package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alexanderramin/ganttly/internal/domain"
)

// MemoryBackend is an in-memory persistence backend for store tests. It is
// safe for concurrent use so autosave goroutines can write to it.
//
// Setting SaveErr or LoadErr makes the corresponding operations fail.
type MemoryBackend struct {
	mu        sync.Mutex
	seq       int
	snapshots map[string]memorySnapshot
	files     map[string]*domain.Package
	recent    map[string]domain.RecentProject

	SaveErr error
	LoadErr error
}

type memorySnapshot struct {
	info domain.SnapshotInfo
	pkg  *domain.Package
	seq  int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		snapshots: make(map[string]memorySnapshot),
		files:     make(map[string]*domain.Package),
		recent:    make(map[string]domain.RecentProject),
	}
}

func clonePackage(pkg *domain.Package) *domain.Package {
	return domain.NewPackage(pkg.ToProject(), pkg.Manifest)
}

func (b *MemoryBackend) SaveAutoSnapshot(_ context.Context, pkg *domain.Package, typ domain.SnapshotType) (domain.SnapshotInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SaveErr != nil {
		return domain.SnapshotInfo{}, b.SaveErr
	}
	b.seq++
	info := domain.SnapshotInfo{
		ID:        fmt.Sprintf("snap-%d", b.seq),
		Name:      fmt.Sprintf("%s-%s-%04d", typ, pkg.Manifest.ProjectUUID, b.seq),
		ProjectID: pkg.Manifest.ProjectUUID,
		CreatedAt: time.Now().UTC(),
		Type:      typ,
	}
	b.snapshots[info.Name] = memorySnapshot{info: info, pkg: clonePackage(pkg), seq: b.seq}
	return info, nil
}

// PutSnapshot seeds a snapshot under an explicit name.
func (b *MemoryBackend) PutSnapshot(name string, pkg *domain.Package, typ domain.SnapshotType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	info := domain.SnapshotInfo{
		ID:        fmt.Sprintf("snap-%d", b.seq),
		Name:      name,
		ProjectID: pkg.Manifest.ProjectUUID,
		CreatedAt: time.Now().UTC(),
		Type:      typ,
	}
	b.snapshots[name] = memorySnapshot{info: info, pkg: clonePackage(pkg), seq: b.seq}
}

func (b *MemoryBackend) LoadSnapshot(_ context.Context, name string) (*domain.Package, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.LoadErr != nil {
		return nil, b.LoadErr
	}
	s, ok := b.snapshots[name]
	if !ok {
		return nil, nil
	}
	return clonePackage(s.pkg), nil
}

func (b *MemoryBackend) GetSnapshotsList(context.Context) ([]domain.SnapshotInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sortedLocked(), nil
}

func (b *MemoryBackend) DeleteSnapshot(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.snapshots[name]; !ok {
		return fmt.Errorf("snapshot %q not found", name)
	}
	delete(b.snapshots, name)
	return nil
}

func (b *MemoryBackend) GetLatestSnapshot(context.Context) (*domain.SnapshotInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.LoadErr != nil {
		return nil, b.LoadErr
	}
	sorted := b.sortedLocked()
	if len(sorted) == 0 {
		return nil, nil
	}
	return &sorted[0], nil
}

func (b *MemoryBackend) LoadProjectFromFile(_ context.Context, path string) (*domain.Package, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.LoadErr != nil {
		return nil, b.LoadErr
	}
	pkg, ok := b.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return clonePackage(pkg), nil
}

func (b *MemoryBackend) SaveProjectToFile(_ context.Context, pkg *domain.Package, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SaveErr != nil {
		return b.SaveErr
	}
	b.files[path] = clonePackage(pkg)
	return nil
}

func (b *MemoryBackend) UpdateRecentProjects(_ context.Context, rp domain.RecentProject) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recent[rp.ProjectUUID] = rp
	return nil
}

func (b *MemoryBackend) ListRecentProjects(_ context.Context, limit int) ([]domain.RecentProject, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.RecentProject, 0, len(b.recent))
	for _, rp := range b.recent {
		out = append(out, rp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PutFile seeds a project file.
func (b *MemoryBackend) PutFile(path string, pkg *domain.Package) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[path] = clonePackage(pkg)
}

// File returns the package written to path, or nil.
func (b *MemoryBackend) File(path string) *domain.Package {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pkg, ok := b.files[path]; ok {
		return clonePackage(pkg)
	}
	return nil
}

// SnapshotCount counts stored snapshots of the given type.
func (b *MemoryBackend) SnapshotCount(typ domain.SnapshotType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, s := range b.snapshots {
		if s.info.Type == typ {
			n++
		}
	}
	return n
}

// Recent returns the recent-project entry for a project id.
func (b *MemoryBackend) Recent(projectID string) (domain.RecentProject, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rp, ok := b.recent[projectID]
	return rp, ok
}

func (b *MemoryBackend) sortedLocked() []domain.SnapshotInfo {
	all := make([]memorySnapshot, 0, len(b.snapshots))
	for _, s := range b.snapshots {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq > all[j].seq })
	out := make([]domain.SnapshotInfo, len(all))
	for i, s := range all {
		out[i] = s.info
	}
	return out
}

// BuildPackage wraps a project in a package with a minimal manifest.
func BuildPackage(p *domain.Project) *domain.Package {
	return domain.NewPackage(p, domain.Manifest{
		ProjectUUID:        p.ID,
		FileVersion:        domain.CurrentFileVersion,
		CreatedPlatform:    "test",
		CreatedWithVersion: "test",
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	})
}
