package domain

// SaveState is the save-state machine position of the active project.
type SaveState string

const (
	StateUntitled SaveState = "UNTITLED"
	StateDirty    SaveState = "DIRTY"
	StateSaved    SaveState = "SAVED"
)

type AutosaveTimer string

const (
	AutosaveActive AutosaveTimer = "active"
	AutosavePaused AutosaveTimer = "paused"
)

// Provenance records where the active project was loaded from.
type Provenance string

const (
	OpenedNone     Provenance = ""
	OpenedManual   Provenance = "manual"
	OpenedFile     Provenance = "file"
	OpenedSnapshot Provenance = "snapshot"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// ValidTaskStatuses is the canonical set of accepted task status strings.
var ValidTaskStatuses = map[string]bool{
	"todo": true, "in_progress": true, "done": true,
}

type RiskStatus string

const (
	RiskOpen      RiskStatus = "open"
	RiskMitigated RiskStatus = "mitigated"
	RiskClosed    RiskStatus = "closed"
)

// UndoKind identifies a reversible task or resource operation.
type UndoKind string

const (
	UndoAddTask        UndoKind = "add-task"
	UndoUpdateTask     UndoKind = "update-task"
	UndoDeleteTask     UndoKind = "delete-task"
	UndoAddResource    UndoKind = "add-resource"
	UndoUpdateResource UndoKind = "update-resource"
	UndoDeleteResource UndoKind = "delete-resource"
)

// Valid reports whether k is one of the six recognised operation kinds.
func (k UndoKind) Valid() bool {
	switch k {
	case UndoAddTask, UndoUpdateTask, UndoDeleteTask,
		UndoAddResource, UndoUpdateResource, UndoDeleteResource:
		return true
	}
	return false
}

type SnapshotType string

const (
	SnapshotAuto   SnapshotType = "auto"
	SnapshotManual SnapshotType = "manual"
)
