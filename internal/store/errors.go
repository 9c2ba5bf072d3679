package store

import "errors"

var (
	// ErrNoStore is returned when a caller reaches for the store outside
	// its lifetime: before Open succeeded or on a nil handle.
	ErrNoStore = errors.New("project store is not initialized")

	// ErrClosed is returned by persistence operations after Close.
	ErrClosed = errors.New("project store is closed")

	// ErrNoBackend is returned by Open when no persistence backend is given.
	ErrNoBackend = errors.New("persistence backend is required")

	// ErrUnknownProject is returned when switching to a project id that is
	// not in the collection.
	ErrUnknownProject = errors.New("unknown project")

	// ErrUnknownUndoKind rejects history items outside the six task and
	// resource operation kinds.
	ErrUnknownUndoKind = errors.New("unknown undo operation kind")

	// ErrInvalidUndoItem rejects history items whose snapshots do not match
	// their kind.
	ErrInvalidUndoItem = errors.New("invalid undo item")

	// ErrNotFound is returned when a file load yields no package.
	ErrNotFound = errors.New("not found")
)
