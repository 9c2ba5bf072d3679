package store

import (
	"time"

	"github.com/alexanderramin/ganttly/internal/domain"
)

// ProjectState is the observable save-state of the active project.
type ProjectState struct {
	CurrentState      domain.SaveState
	HasUnsavedChanges bool
	IsUntitled        bool
	LastModified      time.Time
	AutosaveTimer     domain.AutosaveTimer
	OpenedFrom        domain.Provenance
}

// saveStatus is the per-project part of ProjectState. The autosave flag is
// store-wide and merged in by Store.ProjectState.
type saveStatus struct {
	state        domain.SaveState
	unsaved      bool
	untitled     bool
	lastModified time.Time
	openedFrom   domain.Provenance

	// Carried from a loaded manifest so re-saves keep the original origin.
	createdPlatform    string
	createdWithVersion string
}

func (s *saveStatus) initialize(now time.Time) {
	s.state = domain.StateUntitled
	s.unsaved = false
	s.untitled = true
	s.lastModified = now
}

func (s *saveStatus) edit(now time.Time) {
	s.state = domain.StateDirty
	s.unsaved = true
	s.lastModified = now
}

func (s *saveStatus) save(now time.Time) {
	s.state = domain.StateSaved
	s.unsaved = false
	s.untitled = false
	s.lastModified = now
}

func (s *saveStatus) restoreSnapshot(now time.Time) {
	s.save(now)
	s.openedFrom = domain.OpenedSnapshot
}
