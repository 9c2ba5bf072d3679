package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alexanderramin/ganttly/internal/domain"
)

// DefaultRecentLimit bounds RecentProjects when no limit is given.
const DefaultRecentLimit = 10

func (s *Store) checkOpenLocked() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// buildPackageLocked packages the active project. A project loaded from a
// package keeps the platform and version it was created with.
func (s *Store) buildPackageLocked() *domain.Package {
	p := s.current
	st := s.statuses[p.ID]
	return domain.NewPackage(p, domain.Manifest{
		ProjectUUID:        p.ID,
		FileVersion:        domain.CurrentFileVersion,
		CreatedPlatform:    domain.CoalesceStr(st.createdPlatform, s.platform),
		CreatedWithVersion: domain.CoalesceStr(st.createdWithVersion, s.appVersion),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	})
}

// SaveProject writes a manual snapshot of the active project, marks it
// saved and clears the undo history. Without an active project it does
// nothing.
func (s *Store) SaveProject(ctx context.Context) (err error) {
	start := s.now()
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	id := s.current.ID
	defer func() {
		s.observe(ctx, "save_project", start, err, map[string]any{"project_id": id})
	}()

	pkg := s.buildPackageLocked()
	info, err := s.backend.SaveAutoSnapshot(ctx, pkg, domain.SnapshotManual)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save project: %w", err)
	}
	now := s.now()
	s.statuses[id].save(now)
	s.history.clear()
	recentErr := s.backend.UpdateRecentProjects(ctx, domain.RecentProject{
		FileName:    info.Name,
		ProjectUUID: id,
		IsTemporary: false,
		OpenedAt:    now,
	})
	s.mu.Unlock()

	s.notify(
		Event{Kind: EventStateChanged, ProjectID: id},
		Event{Kind: EventHistoryChanged, ProjectID: id},
	)
	if recentErr != nil {
		return fmt.Errorf("update recent projects: %w", recentErr)
	}
	return nil
}

// ExportProjectFile writes the active project to a package file at path and
// marks it saved. The undo history is kept.
func (s *Store) ExportProjectFile(ctx context.Context, path string) (err error) {
	start := s.now()
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	id := s.current.ID
	defer func() {
		s.observe(ctx, "export_project", start, err, map[string]any{"project_id": id, "path": path})
	}()

	if err := s.backend.SaveProjectToFile(ctx, s.buildPackageLocked(), path); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("export project to %s: %w", path, err)
	}
	now := s.now()
	s.statuses[id].save(now)
	recentErr := s.backend.UpdateRecentProjects(ctx, domain.RecentProject{
		FileName:    filepath.Base(path),
		FilePath:    path,
		ProjectUUID: id,
		OpenedAt:    now,
	})
	s.mu.Unlock()

	s.notify(Event{Kind: EventStateChanged, ProjectID: id})
	if recentErr != nil {
		return fmt.Errorf("update recent projects: %w", recentErr)
	}
	return nil
}

// OpenProjectFile loads a package file, replaces or inserts its project and
// makes it active in the saved state. A failed load leaves the store
// untouched.
func (s *Store) OpenProjectFile(ctx context.Context, path string) (err error) {
	start := s.now()
	defer func() {
		s.observe(ctx, "open_project", start, err, map[string]any{"path": path})
	}()

	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	pkg, err := s.backend.LoadProjectFromFile(ctx, path)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("open project file %s: %w", path, err)
	}
	if pkg == nil {
		s.mu.Unlock()
		return fmt.Errorf("open project file %s: %w", path, ErrNotFound)
	}
	p := s.loadPackageLocked(pkg, domain.OpenedFile)
	s.statuses[p.ID].save(s.now())
	recentErr := s.backend.UpdateRecentProjects(ctx, domain.RecentProject{
		FileName:    filepath.Base(path),
		FilePath:    path,
		ProjectUUID: p.ID,
		OpenedAt:    s.now(),
	})
	s.mu.Unlock()

	s.notifySwitched(p.ID)
	if recentErr != nil {
		return fmt.Errorf("update recent projects: %w", recentErr)
	}
	return nil
}

// RestoreSnapshot makes the project held by the named snapshot active. An
// unknown name is a no-op.
func (s *Store) RestoreSnapshot(ctx context.Context, name string) (err error) {
	start := s.now()
	defer func() {
		s.observe(ctx, "restore_snapshot", start, err, map[string]any{"snapshot": name})
	}()

	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	pkg, err := s.backend.LoadSnapshot(ctx, name)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("restore snapshot %s: %w", name, err)
	}
	if pkg == nil {
		s.mu.Unlock()
		return nil
	}
	p := s.loadPackageLocked(pkg, domain.OpenedSnapshot)
	s.statuses[p.ID].restoreSnapshot(s.now())
	s.mu.Unlock()

	s.notifySwitched(p.ID)
	return nil
}

// InitializeFromLatestSnapshot restores the most recent snapshot, or creates
// an empty project when none can be loaded. Only the first call has any
// effect; Open makes it.
func (s *Store) InitializeFromLatestSnapshot(ctx context.Context) {
	s.initOnce.Do(func() {
		start := s.now()
		s.mu.Lock()
		p, source, err := s.initializeLocked(ctx)
		s.mu.Unlock()

		s.observe(ctx, "initialize", start, err, map[string]any{"source": source, "project_id": p.ID})
		s.notifySwitched(p.ID)
	})
}

func (s *Store) initializeLocked(ctx context.Context) (*domain.Project, string, error) {
	info, err := s.backend.GetLatestSnapshot(ctx)
	if err != nil {
		return s.newProjectLocked(""), "new", fmt.Errorf("latest snapshot: %w", err)
	}
	if info == nil {
		return s.newProjectLocked(""), "new", nil
	}
	pkg, err := s.backend.LoadSnapshot(ctx, info.Name)
	if err != nil {
		return s.newProjectLocked(""), "new", fmt.Errorf("load snapshot %s: %w", info.Name, err)
	}
	if pkg == nil {
		return s.newProjectLocked(""), "new", nil
	}
	p := s.loadPackageLocked(pkg, domain.OpenedSnapshot)
	s.statuses[p.ID].restoreSnapshot(s.now())
	return p, "snapshot", nil
}

// loadPackageLocked installs the package's project in the collection and
// makes it active. The caller applies the state transition.
func (s *Store) loadPackageLocked(pkg *domain.Package, from domain.Provenance) *domain.Project {
	p := pkg.ToProject()
	if p.ID == "" {
		p.ID = s.newID()
	}
	p.Progress = s.progress(p.Tasks)
	s.upsertProjectLocked(p)
	s.statuses[p.ID] = &saveStatus{
		openedFrom:         from,
		createdPlatform:    pkg.Manifest.CreatedPlatform,
		createdWithVersion: pkg.Manifest.CreatedWithVersion,
	}
	s.switchToLocked(p)
	return p
}

func (s *Store) notifySwitched(id string) {
	s.notify(
		Event{Kind: EventProjectsChanged, ProjectID: id},
		Event{Kind: EventProjectSwitched, ProjectID: id},
		Event{Kind: EventStateChanged, ProjectID: id},
		Event{Kind: EventHistoryChanged, ProjectID: id},
	)
}

// ListSnapshots returns every durable snapshot, newest first.
func (s *Store) ListSnapshots(ctx context.Context) ([]domain.SnapshotInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return nil, err
	}
	list, err := s.backend.GetSnapshotsList(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return list, nil
}

func (s *Store) DeleteSnapshot(ctx context.Context, name string) (err error) {
	start := s.now()
	defer func() {
		s.observe(ctx, "delete_snapshot", start, err, map[string]any{"snapshot": name})
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return err
	}
	if err := s.backend.DeleteSnapshot(ctx, name); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", name, err)
	}
	if s.lastAutosave != nil && s.lastAutosave.Name == name {
		s.lastAutosave = nil
	}
	return nil
}

// RecentProjects lists recently saved or opened projects, most recent first.
func (s *Store) RecentProjects(ctx context.Context, limit int) ([]domain.RecentProject, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return nil, err
	}
	list, err := s.backend.ListRecentProjects(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent projects: %w", err)
	}
	return list, nil
}
