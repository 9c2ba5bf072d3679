// Package store holds the canonical in-memory project collection, the active
// project, its save-state machine and undo/redo history, and orchestrates
// persistence through a Backend.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/google/uuid"
)

const (
	DefaultUndoLimit        = 50
	DefaultAutosaveInterval = 30 * time.Second
	defaultProjectName      = "Untitled Project"
)

// Store is the single mutable project store. All methods are safe for
// concurrent use; operations are serialised by one lock, matching a
// single-threaded event queue. Backend I/O runs under that lock, so callers
// queue behind an in-flight save or load.
type Store struct {
	mu sync.Mutex

	backend  Backend
	progress ProgressFunc
	now      func() time.Time
	newID    func() string
	useCases UseCaseObserver

	platform   string
	appVersion string

	projects []*domain.Project
	current  *domain.Project
	statuses map[string]*saveStatus
	history  history

	autosaveTimer    domain.AutosaveTimer
	autosaveInterval time.Duration
	stopAutosave     context.CancelFunc
	autosaveWG       sync.WaitGroup
	lastAutosaveHash uint64
	lastAutosave     *domain.SnapshotInfo

	initOnce sync.Once
	closed   bool

	subs subscribers
}

// Option configures a Store at Open.
type Option func(*Store)

func WithUndoLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.history.limit = n
		}
	}
}

func WithAutosaveInterval(d time.Duration) Option {
	return func(s *Store) {
		s.autosaveInterval = d
	}
}

// WithAutosaveEnabled sets the initial autosave timer flag.
func WithAutosaveEnabled(enabled bool) Option {
	return func(s *Store) {
		if enabled {
			s.autosaveTimer = domain.AutosaveActive
		} else {
			s.autosaveTimer = domain.AutosavePaused
		}
	}
}

func WithProgressFunc(fn ProgressFunc) Option {
	return func(s *Store) {
		if fn != nil {
			s.progress = fn
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func WithUseCaseObserver(o UseCaseObserver) Option {
	return func(s *Store) {
		if o != nil {
			s.useCases = o
		}
	}
}

// WithPlatform sets the platform tag and application version written into
// package manifests.
func WithPlatform(platform, appVersion string) Option {
	return func(s *Store) {
		s.platform = platform
		s.appVersion = appVersion
	}
}

// Open builds a store over backend and initializes it from the latest
// snapshot, creating an empty project when there is none.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}
	s := &Store{
		backend:          backend,
		progress:         domain.CalculateProjectProgress,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            func() string { return uuid.New().String() },
		useCases:         NoopUseCaseObserver{},
		platform:         "go",
		appVersion:       "dev",
		statuses:         make(map[string]*saveStatus),
		history:          history{limit: DefaultUndoLimit},
		autosaveTimer:    domain.AutosaveActive,
		autosaveInterval: DefaultAutosaveInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.InitializeFromLatestSnapshot(ctx)
	return s, nil
}

// Ready reports whether the store can be used: ErrNoStore for a nil handle,
// ErrClosed after Close.
func (s *Store) Ready() error {
	if s == nil {
		return ErrNoStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close stops autosave, writes a final silent autosave when the active
// project has unsaved changes, and marks the store closed. Afterwards
// mutators are no-ops and persistence, undo and redo return ErrClosed.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.cancelAutosaveLocked()
	_, err := s.autosaveLocked(ctx)
	s.closed = true
	s.mu.Unlock()

	s.autosaveWG.Wait()
	if err != nil {
		return fmt.Errorf("final autosave: %w", err)
	}
	return nil
}

// ── read-only surface ───────────────────────────────────────────────────────

// CurrentProject returns a copy of the active project, or nil.
func (s *Store) CurrentProject() *domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Projects returns copies of every project in the collection.
func (s *Store) Projects() []*domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out
}

// ProjectState returns the save-state of the active project.
func (s *Store) ProjectState() ProjectState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectStateLocked()
}

// StateOf returns the save-state of any open project, active or not.
func (s *Store) StateOf(id string) (ProjectState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[id]
	if !ok {
		return ProjectState{}, false
	}
	return ProjectState{
		CurrentState:      st.state,
		HasUnsavedChanges: st.unsaved,
		IsUntitled:        st.untitled,
		LastModified:      st.lastModified,
		AutosaveTimer:     s.autosaveTimer,
		OpenedFrom:        st.openedFrom,
	}, true
}

func (s *Store) projectStateLocked() ProjectState {
	ps := ProjectState{AutosaveTimer: s.autosaveTimer}
	if s.current == nil {
		return ps
	}
	st := s.statuses[s.current.ID]
	ps.CurrentState = st.state
	ps.HasUnsavedChanges = st.unsaved
	ps.IsUntitled = st.untitled
	ps.LastModified = st.lastModified
	ps.OpenedFrom = st.openedFrom
	return ps
}

// LastAutosave returns the most recent autosave written for the active
// project, or nil.
func (s *Store) LastAutosave() *domain.SnapshotInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastAutosave == nil {
		return nil
	}
	info := *s.lastAutosave
	return &info
}

// ── project lifecycle ───────────────────────────────────────────────────────

// NewProject creates an empty project, makes it active and returns its id.
func (s *Store) NewProject(name string) string {
	s.mu.Lock()
	p := s.newProjectLocked(name)
	s.mu.Unlock()

	s.notify(
		Event{Kind: EventProjectsChanged, ProjectID: p.ID},
		Event{Kind: EventProjectSwitched, ProjectID: p.ID},
		Event{Kind: EventStateChanged, ProjectID: p.ID},
	)
	return p.ID
}

func (s *Store) newProjectLocked(name string) *domain.Project {
	now := s.now()
	p := domain.NewProject(s.newID(), domain.CoalesceStr(name, defaultProjectName), now)
	p.Progress = s.progress(p.Tasks)
	st := &saveStatus{openedFrom: domain.OpenedManual}
	st.initialize(now)
	s.statuses[p.ID] = st
	s.projects = append(s.projects, p)
	s.switchToLocked(p)
	return p
}

// SetCurrentProject switches the active project without mutating it.
func (s *Store) SetCurrentProject(id string) error {
	s.mu.Lock()
	p := s.findProjectLocked(id)
	if p == nil {
		s.mu.Unlock()
		return fmt.Errorf("switching to %q: %w", id, ErrUnknownProject)
	}
	changed := s.current != p
	if changed {
		s.switchToLocked(p)
	}
	s.mu.Unlock()

	if changed {
		s.notify(Event{Kind: EventProjectSwitched, ProjectID: id})
	}
	return nil
}

// CloseProject removes a project that is not active from the collection.
func (s *Store) CloseProject(id string) error {
	s.mu.Lock()
	if s.current != nil && s.current.ID == id {
		s.mu.Unlock()
		return fmt.Errorf("cannot close the active project")
	}
	idx := -1
	for i, p := range s.projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("closing %q: %w", id, ErrUnknownProject)
	}
	s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	delete(s.statuses, id)
	s.mu.Unlock()

	s.notify(Event{Kind: EventProjectsChanged, ProjectID: id})
	return nil
}

// switchToLocked makes p active. History belongs to the active project, so
// both stacks are cleared, and the autosave task is restarted for p.
func (s *Store) switchToLocked(p *domain.Project) {
	s.current = p
	s.history.clear()
	s.lastAutosaveHash = 0
	s.lastAutosave = nil
	s.restartAutosaveLocked()
}

// upsertProjectLocked replaces the project with p's id, or appends p.
func (s *Store) upsertProjectLocked(p *domain.Project) {
	for i, existing := range s.projects {
		if existing.ID == p.ID {
			s.projects[i] = p
			return
		}
	}
	s.projects = append(s.projects, p)
}

func (s *Store) findProjectLocked(id string) *domain.Project {
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// touchLocked applies the edit transition to the active project and
// recomputes derived fields.
func (s *Store) touchLocked() {
	now := s.now()
	s.current.Progress = s.progress(s.current.Tasks)
	s.current.UpdatedAt = now
	s.statuses[s.current.ID].edit(now)
}
