package store

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/mitchellh/hashstructure/v2"
)

// restartAutosaveLocked binds the periodic autosave task to the current
// (active project, timer flag) pair. Any previous task is cancelled; it
// exits on its own once it observes the cancellation.
func (s *Store) restartAutosaveLocked() {
	s.cancelAutosaveLocked()
	if s.closed || s.current == nil || s.autosaveTimer != domain.AutosaveActive || s.autosaveInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stopAutosave = cancel
	s.autosaveWG.Add(1)
	go s.runAutosave(ctx, s.autosaveInterval)
}

func (s *Store) cancelAutosaveLocked() {
	if s.stopAutosave != nil {
		s.stopAutosave()
		s.stopAutosave = nil
	}
}

func (s *Store) runAutosave(ctx context.Context, interval time.Duration) {
	defer s.autosaveWG.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if ctx.Err() != nil {
				s.mu.Unlock()
				return
			}
			saved, _ := s.autosaveLocked(ctx)
			var id string
			if s.current != nil {
				id = s.current.ID
			}
			s.mu.Unlock()

			if saved {
				s.notify(Event{Kind: EventAutosaved, ProjectID: id})
			}
		}
	}
}

// autosaveLocked writes an auto snapshot when the active project has unsaved
// changes and its content differs from the last autosave. The save-state
// machine is not touched. Failures are reported to the use-case observer.
func (s *Store) autosaveLocked(ctx context.Context) (bool, error) {
	if s.current == nil || s.autosaveTimer != domain.AutosaveActive {
		return false, nil
	}
	if !s.statuses[s.current.ID].unsaved {
		return false, nil
	}
	pkg := s.buildPackageLocked()
	hash, hashErr := hashstructure.Hash(pkg, hashstructure.FormatV2, nil)
	if hashErr == nil && hash == s.lastAutosaveHash {
		return false, nil
	}

	start := s.now()
	info, err := s.backend.SaveAutoSnapshot(ctx, pkg, domain.SnapshotAuto)
	s.observe(ctx, "autosave", start, err, map[string]any{"project_id": s.current.ID})
	if err != nil {
		return false, fmt.Errorf("autosave: %w", err)
	}
	if hashErr == nil {
		s.lastAutosaveHash = hash
	}
	s.lastAutosave = &info
	return true, nil
}

// AutosaveNow runs one autosave pass immediately. It reports whether a
// snapshot was written.
func (s *Store) AutosaveNow(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	saved, err := s.autosaveLocked(ctx)
	var id string
	if s.current != nil {
		id = s.current.ID
	}
	s.mu.Unlock()

	if saved {
		s.notify(Event{Kind: EventAutosaved, ProjectID: id})
	}
	return saved, err
}

// SetAutosaveActive flips the autosave timer flag and rebinds the periodic
// task.
func (s *Store) SetAutosaveActive(active bool) {
	s.mu.Lock()
	if active {
		s.autosaveTimer = domain.AutosaveActive
	} else {
		s.autosaveTimer = domain.AutosavePaused
	}
	s.restartAutosaveLocked()
	var id string
	if s.current != nil {
		id = s.current.ID
	}
	s.mu.Unlock()

	s.notify(Event{Kind: EventStateChanged, ProjectID: id})
}
