package store

import (
	"fmt"

	"github.com/alexanderramin/ganttly/internal/domain"
)

// UndoItem records one reversible task or resource operation. Before is nil
// for adds and After is nil for deletes; both hold domain.Task or
// domain.Resource values matching Kind.
type UndoItem struct {
	Kind     domain.UndoKind
	TargetID string
	Before   domain.Entity
	After    domain.Entity
}

// validate checks the kind is one of the six known kinds and that the
// snapshots have the shape the kind requires.
func (it UndoItem) validate() error {
	if !it.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownUndoKind, it.Kind)
	}
	if it.TargetID == "" {
		return fmt.Errorf("%w: missing target id", ErrInvalidUndoItem)
	}
	wantTask := it.Kind == domain.UndoAddTask || it.Kind == domain.UndoUpdateTask || it.Kind == domain.UndoDeleteTask
	check := func(e domain.Entity, required bool, field string) error {
		if e == nil {
			if required {
				return fmt.Errorf("%w: %s requires %s", ErrInvalidUndoItem, it.Kind, field)
			}
			return nil
		}
		switch e.(type) {
		case domain.Task:
			if !wantTask {
				return fmt.Errorf("%w: %s %s is a task", ErrInvalidUndoItem, it.Kind, field)
			}
		case domain.Resource:
			if wantTask {
				return fmt.Errorf("%w: %s %s is a resource", ErrInvalidUndoItem, it.Kind, field)
			}
		default:
			return fmt.Errorf("%w: unsupported %s snapshot %T", ErrInvalidUndoItem, field, e)
		}
		return nil
	}

	var needBefore, needAfter bool
	switch it.Kind {
	case domain.UndoAddTask, domain.UndoAddResource:
		needAfter = true
	case domain.UndoUpdateTask, domain.UndoUpdateResource:
		needBefore, needAfter = true, true
	case domain.UndoDeleteTask, domain.UndoDeleteResource:
		needBefore = true
	}
	if err := check(it.Before, needBefore, "before state"); err != nil {
		return err
	}
	return check(it.After, needAfter, "after state")
}

func (it UndoItem) clone() UndoItem {
	it.Before = cloneEntity(it.Before)
	it.After = cloneEntity(it.After)
	return it
}

func cloneEntity(e domain.Entity) domain.Entity {
	switch v := e.(type) {
	case domain.Task:
		return v.Clone()
	case domain.Resource:
		return v
	default:
		return e
	}
}

// history is a pair of bounded LIFO stacks.
type history struct {
	undo  []UndoItem
	redo  []UndoItem
	limit int
}

// push appends item, keeping the newest limit entries, and clears redo.
func (h *history) push(item UndoItem) {
	h.undo = append(h.undo, item)
	if over := len(h.undo) - h.limit; over > 0 {
		h.undo = append([]UndoItem(nil), h.undo[over:]...)
	}
	h.redo = nil
}

func (h *history) clear() {
	h.undo = nil
	h.redo = nil
}

func snapshotStack(items []UndoItem) []UndoItem {
	out := make([]UndoItem, len(items))
	for i, it := range items {
		out[i] = it.clone()
	}
	return out
}

// UndoStack returns a copy of the undo stack, oldest first.
func (s *Store) UndoStack() []UndoItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotStack(s.history.undo)
}

// RedoStack returns a copy of the redo stack, oldest first.
func (s *Store) RedoStack() []UndoItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotStack(s.history.redo)
}

// PushUndo records item on the undo stack without touching the project.
// Unknown kinds are rejected.
func (s *Store) PushUndo(item UndoItem) error {
	if err := item.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.history.push(item.clone())
	s.mu.Unlock()

	s.notify(Event{Kind: EventHistoryChanged})
	return nil
}

// Undo reverts the most recent recorded operation against the current
// project. It is a no-op when the stack is empty or no project is active.
// The revert goes through the normal edit path, so the project becomes
// dirty and progress is recomputed.
func (s *Store) Undo() error {
	return s.replay(true)
}

// Redo re-applies the most recently undone operation.
func (s *Store) Redo() error {
	return s.replay(false)
}

func (s *Store) replay(undo bool) error {
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	from, to := &s.history.undo, &s.history.redo
	if !undo {
		from, to = to, from
	}
	if len(*from) == 0 {
		s.mu.Unlock()
		return nil
	}
	item := (*from)[len(*from)-1]
	if err := item.validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	*from = (*from)[:len(*from)-1]
	*to = append(*to, item)

	if undo {
		s.applyInverseLocked(item)
	} else {
		s.applyForwardLocked(item)
	}
	s.touchLocked()
	id := s.current.ID
	s.mu.Unlock()

	s.notify(
		Event{Kind: EventProjectChanged, ProjectID: id},
		Event{Kind: EventHistoryChanged, ProjectID: id},
		Event{Kind: EventStateChanged, ProjectID: id},
	)
	return nil
}

func (s *Store) applyInverseLocked(it UndoItem) {
	switch it.Kind {
	case domain.UndoAddTask:
		s.removeTaskLocked(it.TargetID)
	case domain.UndoUpdateTask:
		s.replaceTaskLocked(it.TargetID, it.Before.(domain.Task))
	case domain.UndoDeleteTask:
		s.appendTaskLocked(it.Before.(domain.Task))
	case domain.UndoAddResource:
		s.removeResourceLocked(it.TargetID)
	case domain.UndoUpdateResource:
		s.replaceResourceLocked(it.TargetID, it.Before.(domain.Resource))
	case domain.UndoDeleteResource:
		s.appendResourceLocked(it.Before.(domain.Resource))
	}
}

func (s *Store) applyForwardLocked(it UndoItem) {
	switch it.Kind {
	case domain.UndoAddTask:
		s.appendTaskLocked(it.After.(domain.Task))
	case domain.UndoUpdateTask:
		s.replaceTaskLocked(it.TargetID, it.After.(domain.Task))
	case domain.UndoDeleteTask:
		s.removeTaskLocked(it.TargetID)
	case domain.UndoAddResource:
		s.appendResourceLocked(it.After.(domain.Resource))
	case domain.UndoUpdateResource:
		s.replaceResourceLocked(it.TargetID, it.After.(domain.Resource))
	case domain.UndoDeleteResource:
		s.removeResourceLocked(it.TargetID)
	}
}
