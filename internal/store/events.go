package store

import "sync"

type EventKind string

const (
	EventProjectChanged  EventKind = "project_changed"
	EventProjectSwitched EventKind = "project_switched"
	EventProjectsChanged EventKind = "projects_changed"
	EventStateChanged    EventKind = "state_changed"
	EventHistoryChanged  EventKind = "history_changed"
	EventAutosaved       EventKind = "autosaved"
)

// Event tells observers which part of the store changed.
type Event struct {
	Kind      EventKind
	ProjectID string
}

type subscribers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(Event)
}

// Subscribe registers fn to be called after every store change. Observers
// run on the goroutine that made the change, after the store lock is
// released. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	if s.subs.fns == nil {
		s.subs.fns = make(map[int]func(Event))
	}
	id := s.subs.nextID
	s.subs.nextID++
	s.subs.fns[id] = fn
	return func() {
		s.subs.mu.Lock()
		defer s.subs.mu.Unlock()
		delete(s.subs.fns, id)
	}
}

func (s *Store) notify(events ...Event) {
	if len(events) == 0 {
		return
	}
	s.subs.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs.fns))
	for _, fn := range s.subs.fns {
		fns = append(fns, fn)
	}
	s.subs.mu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}
