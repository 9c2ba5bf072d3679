package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/alexanderramin/ganttly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a store over an in-memory backend with the periodic
// autosave task disabled unless opts say otherwise.
func newTestStore(t *testing.T, opts ...Option) (*Store, *testutil.MemoryBackend) {
	t.Helper()
	backend := testutil.NewMemoryBackend()
	opts = append([]Option{WithAutosaveInterval(0)}, opts...)
	s, err := Open(context.Background(), backend, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, backend
}

func TestOpen_RequiresBackend(t *testing.T) {
	_, err := Open(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestOpen_CreatesUntitledProjectWithoutSnapshots(t *testing.T) {
	s, _ := newTestStore(t)

	p := s.CurrentProject()
	require.NotNil(t, p)
	assert.Equal(t, "Untitled Project", p.Name)
	assert.Len(t, s.Projects(), 1)

	st := s.ProjectState()
	assert.Equal(t, domain.StateUntitled, st.CurrentState)
	assert.False(t, st.HasUnsavedChanges)
	assert.True(t, st.IsUntitled)
	assert.Equal(t, domain.OpenedManual, st.OpenedFrom)
	assert.Equal(t, domain.AutosaveActive, st.AutosaveTimer)
}

func TestOpen_RestoresLatestSnapshot(t *testing.T) {
	backend := testutil.NewMemoryBackend()
	older := testutil.NewTestProject("Older")
	latest := testutil.NewTestProject("Latest", testutil.WithTasks(testutil.CompletedTask("Ship")))
	backend.PutSnapshot("snap-older", testutil.BuildPackage(older), domain.SnapshotAuto)
	backend.PutSnapshot("snap-latest", testutil.BuildPackage(latest), domain.SnapshotManual)

	s, err := Open(context.Background(), backend, WithAutosaveInterval(0))
	require.NoError(t, err)
	defer s.Close(context.Background())

	p := s.CurrentProject()
	require.NotNil(t, p)
	assert.Equal(t, latest.ID, p.ID)
	assert.Equal(t, "Latest", p.Name)
	assert.Equal(t, float64(100), p.Progress)

	st := s.ProjectState()
	assert.Equal(t, domain.StateSaved, st.CurrentState)
	assert.False(t, st.HasUnsavedChanges)
	assert.False(t, st.IsUntitled)
	assert.Equal(t, domain.OpenedSnapshot, st.OpenedFrom)
}

func TestOpen_LoadFailureCreatesNewProject(t *testing.T) {
	backend := testutil.NewMemoryBackend()
	backend.PutSnapshot("snap", testutil.BuildPackage(testutil.NewTestProject("Stored")), domain.SnapshotAuto)
	backend.LoadErr = errors.New("disk on fire")

	s, err := Open(context.Background(), backend, WithAutosaveInterval(0))
	require.NoError(t, err)
	defer s.Close(context.Background())

	assert.Equal(t, "Untitled Project", s.CurrentProject().Name)
	assert.Equal(t, domain.StateUntitled, s.ProjectState().CurrentState)
}

func TestInitializeFromLatestSnapshot_RunsOnce(t *testing.T) {
	s, backend := newTestStore(t)
	first := s.CurrentProject().ID

	backend.PutSnapshot("later", testutil.BuildPackage(testutil.NewTestProject("Later")), domain.SnapshotAuto)
	s.InitializeFromLatestSnapshot(context.Background())

	assert.Equal(t, first, s.CurrentProject().ID)
	assert.Len(t, s.Projects(), 1)
}

func TestStore_ProgressExample(t *testing.T) {
	s, _ := newTestStore(t)

	t1 := testutil.NewTestTask("T1")
	s.AddTask(t1)
	assert.Equal(t, float64(0), s.CurrentProject().Progress)
	assert.Equal(t, domain.StateDirty, s.ProjectState().CurrentState)

	t2 := testutil.CompletedTask("T2")
	s.AddTask(t2)
	assert.Equal(t, float64(50), s.CurrentProject().Progress)

	require.NoError(t, s.Undo())
	p := s.CurrentProject()
	require.Len(t, p.Tasks, 1)
	assert.Equal(t, t1.ID, p.Tasks[0].ID)
	assert.Equal(t, float64(0), p.Progress)
	assert.Len(t, s.RedoStack(), 1)

	require.NoError(t, s.Redo())
	p = s.CurrentProject()
	require.Len(t, p.Tasks, 2)
	assert.Equal(t, []string{t1.ID, t2.ID}, []string{p.Tasks[0].ID, p.Tasks[1].ID})
	assert.Equal(t, float64(50), p.Progress)
}

func TestStore_ProgressNeverStale(t *testing.T) {
	s, _ := newTestStore(t)

	a := testutil.NewTestTask("A", testutil.WithTaskProgress(40))
	b := testutil.NewTestTask("B", testutil.WithTaskProgress(10))
	s.AddTask(a)
	s.AddTask(b)

	b.Progress = 80
	s.UpdateTask(b.ID, b)
	p := s.CurrentProject()
	assert.Equal(t, domain.CalculateProjectProgress(p.Tasks), p.Progress)
	assert.Equal(t, float64(60), p.Progress)

	s.DeleteTask(a.ID)
	p = s.CurrentProject()
	assert.Equal(t, float64(80), p.Progress)

	require.NoError(t, s.Undo())
	p = s.CurrentProject()
	assert.Equal(t, domain.CalculateProjectProgress(p.Tasks), p.Progress)
}

func TestStore_UndoRedoRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	a := testutil.NewTestTask("Design")
	b := testutil.NewTestTask("Build", testutil.WithDependencies("x"))
	r := testutil.NewTestResource("Ada", testutil.WithRole("engineer"))

	s.AddTask(a)
	s.AddTask(b)
	a.Progress = 30
	a.Status = domain.TaskInProgress
	s.UpdateTask(a.ID, a)
	s.AddResource(r)
	r.HourlyRate = 120
	s.UpdateResource(r.ID, r)
	s.DeleteTask(b.ID)
	s.DeleteResource(r.ID)

	before := s.CurrentProject()
	n := len(s.UndoStack())
	require.Equal(t, 7, n)

	for i := 0; i < n; i++ {
		require.NoError(t, s.Undo())
	}
	empty := s.CurrentProject()
	assert.Empty(t, empty.Tasks)
	assert.Empty(t, empty.Resources)
	assert.Empty(t, s.UndoStack())

	for i := 0; i < n; i++ {
		require.NoError(t, s.Redo())
	}
	after := s.CurrentProject()
	assert.ElementsMatch(t, before.Tasks, after.Tasks)
	assert.ElementsMatch(t, before.Resources, after.Resources)
	assert.Len(t, s.UndoStack(), n)
	assert.Empty(t, s.RedoStack())
}

func TestStore_UndoPartialDepth(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < 5; i++ {
		s.AddTask(testutil.NewTestTask("task"))
	}
	before := s.CurrentProject().Tasks

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Undo())
	}
	assert.Len(t, s.CurrentProject().Tasks, 2)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Redo())
	}
	assert.ElementsMatch(t, before, s.CurrentProject().Tasks)
}

func TestStore_UndoStackCappedAtLimit(t *testing.T) {
	s, _ := newTestStore(t)

	var ids []string
	for i := 0; i < 51; i++ {
		task := testutil.NewTestTask("task")
		ids = append(ids, task.ID)
		s.AddTask(task)
	}

	stack := s.UndoStack()
	require.Len(t, stack, 50)
	assert.Equal(t, ids[1], stack[0].TargetID, "oldest entry evicted first")
	assert.Equal(t, ids[50], stack[49].TargetID)
}

func TestStore_UndoLimitOption(t *testing.T) {
	s, _ := newTestStore(t, WithUndoLimit(3))
	for i := 0; i < 5; i++ {
		s.AddResource(testutil.NewTestResource("r"))
	}
	assert.Len(t, s.UndoStack(), 3)
}

func TestStore_PushClearsRedo(t *testing.T) {
	s, _ := newTestStore(t)

	a := testutil.NewTestTask("A")
	b := testutil.NewTestTask("B")
	s.AddTask(a)
	s.AddTask(b)
	require.NoError(t, s.Undo())
	require.Len(t, s.RedoStack(), 1)

	c := testutil.NewTestTask("C")
	s.AddTask(c)
	assert.Empty(t, s.RedoStack())

	require.NoError(t, s.Redo())
	p := s.CurrentProject()
	require.Len(t, p.Tasks, 2)
	assert.Equal(t, a.ID, p.Tasks[0].ID)
	assert.Equal(t, c.ID, p.Tasks[1].ID, "discarded forward action must not come back")
}

func TestStore_UndoRedoEmptyIsNoop(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Undo())
	require.NoError(t, s.Redo())
	assert.Equal(t, domain.StateUntitled, s.ProjectState().CurrentState)
}

func TestStore_UndoMarksDirty(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddTask(testutil.NewTestTask("A"))
	require.NoError(t, s.ExportProjectFile(context.Background(), "/tmp/a.json"))
	require.Equal(t, domain.StateSaved, s.ProjectState().CurrentState)

	require.NoError(t, s.Undo())
	st := s.ProjectState()
	assert.Equal(t, domain.StateDirty, st.CurrentState)
	assert.True(t, st.HasUnsavedChanges)
}

func TestPushUndo_Validation(t *testing.T) {
	task := testutil.NewTestTask("A")
	res := testutil.NewTestResource("R")

	tests := []struct {
		name    string
		item    UndoItem
		wantErr error
	}{
		{"unknown kind", UndoItem{Kind: "rename-project", TargetID: "p"}, ErrUnknownUndoKind},
		{"empty kind", UndoItem{TargetID: "p"}, ErrUnknownUndoKind},
		{"missing target", UndoItem{Kind: domain.UndoAddTask, After: task}, ErrInvalidUndoItem},
		{"add without after", UndoItem{Kind: domain.UndoAddTask, TargetID: task.ID}, ErrInvalidUndoItem},
		{"update without before", UndoItem{Kind: domain.UndoUpdateTask, TargetID: task.ID, After: task}, ErrInvalidUndoItem},
		{"task kind with resource", UndoItem{Kind: domain.UndoDeleteTask, TargetID: res.ID, Before: res}, ErrInvalidUndoItem},
		{"resource kind with task", UndoItem{Kind: domain.UndoAddResource, TargetID: task.ID, After: task}, ErrInvalidUndoItem},
		{"valid add task", UndoItem{Kind: domain.UndoAddTask, TargetID: task.ID, After: task}, nil},
		{"valid delete resource", UndoItem{Kind: domain.UndoDeleteResource, TargetID: res.ID, Before: res}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			err := s.PushUndo(tc.item)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, s.UndoStack())
				return
			}
			require.NoError(t, err)
			assert.Len(t, s.UndoStack(), 1)
		})
	}
}

func TestPushUndo_ClearsRedoAndReplays(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddTask(testutil.NewTestTask("A"))
	require.NoError(t, s.Undo())
	require.Len(t, s.RedoStack(), 1)

	task := testutil.NewTestTask("Pushed")
	require.NoError(t, s.PushUndo(UndoItem{Kind: domain.UndoDeleteTask, TargetID: task.ID, Before: task}))
	assert.Empty(t, s.RedoStack())

	// Undoing a recorded delete re-inserts the snapshot.
	require.NoError(t, s.Undo())
	p := s.CurrentProject()
	require.Len(t, p.Tasks, 1)
	assert.Equal(t, task.ID, p.Tasks[0].ID)
}

func TestStore_MissingEntityDirtiesWithoutUndo(t *testing.T) {
	s, _ := newTestStore(t)

	s.UpdateTask("nope", testutil.NewTestTask("ghost"))
	st := s.ProjectState()
	assert.Equal(t, domain.StateDirty, st.CurrentState)
	assert.True(t, st.HasUnsavedChanges)
	assert.Empty(t, s.UndoStack())
	assert.Empty(t, s.CurrentProject().Tasks)

	s.DeleteResource("nope")
	assert.Empty(t, s.UndoStack())
}

func TestStore_CostRiskMilestoneNotRecorded(t *testing.T) {
	s, _ := newTestStore(t)

	cost := testutil.NewTestCost("Licences", 1200)
	s.AddCost(cost)
	cost.Amount = 1500
	s.UpdateCost(cost.ID, cost)
	risk := testutil.NewTestRisk("Vendor delay", 0.4, 3)
	s.AddRisk(risk)
	risk.Status = domain.RiskMitigated
	s.UpdateRisk(risk.ID, risk)
	s.AddMilestone(domain.Milestone{ID: "m1", Name: "Beta"})
	s.SetBudget(domain.Budget{Total: 10000, Currency: "EUR"})

	p := s.CurrentProject()
	require.Len(t, p.Costs, 1)
	assert.Equal(t, 1500.0, p.TotalCost())
	require.Len(t, p.Risks, 1)
	assert.Equal(t, domain.RiskMitigated, p.Risks[0].Status)
	assert.Len(t, p.Milestones, 1)
	assert.Equal(t, 10000.0, p.Budget.Total)

	assert.Empty(t, s.UndoStack())
	assert.Equal(t, domain.StateDirty, s.ProjectState().CurrentState)

	s.DeleteCost(cost.ID)
	s.DeleteRisk(risk.ID)
	s.DeleteMilestone("m1")
	p = s.CurrentProject()
	assert.Empty(t, p.Costs)
	assert.Empty(t, p.Risks)
	assert.Empty(t, p.Milestones)
}

func TestStore_RenameProject(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Error(t, s.RenameProject("   "))
	assert.Equal(t, domain.StateUntitled, s.ProjectState().CurrentState)

	require.NoError(t, s.RenameProject("  Apollo "))
	assert.Equal(t, "Apollo", s.CurrentProject().Name)
	assert.Equal(t, domain.StateDirty, s.ProjectState().CurrentState)
}

func TestStore_MutatorsWithoutActiveProject(t *testing.T) {
	s := &Store{
		progress: domain.CalculateProjectProgress,
		now:      time.Now,
		statuses: make(map[string]*saveStatus),
		history:  history{limit: DefaultUndoLimit},
	}

	s.AddTask(testutil.NewTestTask("A"))
	s.AddResource(testutil.NewTestResource("R"))
	s.AddCost(testutil.NewTestCost("c", 1))
	require.NoError(t, s.Undo())

	assert.Nil(t, s.CurrentProject())
	assert.Empty(t, s.UndoStack())
	assert.Equal(t, domain.SaveState(""), s.ProjectState().CurrentState)
}

func TestStore_CurrentProjectIsACopy(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddTask(testutil.NewTestTask("A", testutil.WithDependencies("x")))

	p := s.CurrentProject()
	p.Tasks[0].Name = "mutated"
	p.Tasks[0].Dependencies[0] = "y"
	p.Name = "mutated"

	fresh := s.CurrentProject()
	assert.Equal(t, "A", fresh.Tasks[0].Name)
	assert.Equal(t, []string{"x"}, fresh.Tasks[0].Dependencies)
	assert.Equal(t, "Untitled Project", fresh.Name)
}

func TestStore_StateMachine(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	assert.Equal(t, domain.StateUntitled, s.ProjectState().CurrentState)

	s.AddResource(testutil.NewTestResource("R"))
	st := s.ProjectState()
	assert.Equal(t, domain.StateDirty, st.CurrentState)
	assert.True(t, st.HasUnsavedChanges)
	assert.True(t, st.IsUntitled, "edit keeps the untitled flag")

	s.AddTask(testutil.NewTestTask("A"))
	require.NoError(t, s.Undo())
	require.NotEmpty(t, s.RedoStack())

	require.NoError(t, s.SaveProject(ctx))
	st = s.ProjectState()
	assert.Equal(t, domain.StateSaved, st.CurrentState)
	assert.False(t, st.HasUnsavedChanges)
	assert.False(t, st.IsUntitled)
	assert.Empty(t, s.UndoStack())
	assert.Empty(t, s.RedoStack())

	assert.Equal(t, 1, backend.SnapshotCount(domain.SnapshotManual))
	rp, ok := backend.Recent(s.CurrentProject().ID)
	require.True(t, ok)
	assert.False(t, rp.IsTemporary)
}

func TestSaveProject_BackendFailureKeepsState(t *testing.T) {
	s, backend := newTestStore(t)
	s.AddTask(testutil.NewTestTask("A"))
	backend.SaveErr = errors.New("read-only")

	err := s.SaveProject(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.StateDirty, s.ProjectState().CurrentState)
	assert.Len(t, s.UndoStack(), 1)
}

func TestExportThenOpenProjectFile(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	s.AddTask(testutil.CompletedTask("Done"))
	s.AddCost(testutil.NewTestCost("Hosting", 300))
	s.SetBudget(domain.Budget{Total: 5000, Currency: "EUR"})
	id := s.CurrentProject().ID

	require.NoError(t, s.ExportProjectFile(ctx, "/projects/apollo.json"))
	assert.Equal(t, domain.StateSaved, s.ProjectState().CurrentState)
	assert.Len(t, s.UndoStack(), 1, "export keeps history")

	pkg := backend.File("/projects/apollo.json")
	require.NotNil(t, pkg)
	assert.Equal(t, id, pkg.Manifest.ProjectUUID)
	assert.Equal(t, domain.CurrentFileVersion, pkg.Manifest.FileVersion)
	assert.Len(t, pkg.Tasks, 1)
	assert.Len(t, pkg.Project.Costs, 1)
	assert.Equal(t, 5000.0, pkg.Budget.Total)

	s.NewProject("Scratch")
	require.Len(t, s.Projects(), 2)

	require.NoError(t, s.OpenProjectFile(ctx, "/projects/apollo.json"))
	p := s.CurrentProject()
	assert.Equal(t, id, p.ID)
	assert.Equal(t, float64(100), p.Progress)
	assert.Len(t, s.Projects(), 2, "existing project replaced, not duplicated")

	st := s.ProjectState()
	assert.Equal(t, domain.StateSaved, st.CurrentState)
	assert.Equal(t, domain.OpenedFile, st.OpenedFrom)
	assert.Empty(t, s.UndoStack())

	rp, ok := backend.Recent(id)
	require.True(t, ok)
	assert.Equal(t, "apollo.json", rp.FileName)
	assert.Equal(t, "/projects/apollo.json", rp.FilePath)
}

func TestOpenProjectFile_FailureLeavesStateUntouched(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddTask(testutil.NewTestTask("A"))
	before := s.CurrentProject()
	beforeState := s.ProjectState()

	err := s.OpenProjectFile(context.Background(), "/missing.json")
	require.Error(t, err)
	assert.Equal(t, before, s.CurrentProject())
	assert.Equal(t, beforeState, s.ProjectState())
	assert.Len(t, s.UndoStack(), 1)
}

func TestRestoreSnapshot_MissingIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddTask(testutil.NewTestTask("A"))
	before := s.CurrentProject()
	beforeState := s.ProjectState()

	require.NoError(t, s.RestoreSnapshot(context.Background(), "missing"))
	assert.Equal(t, before, s.CurrentProject())
	assert.Equal(t, beforeState, s.ProjectState())
}

func TestRestoreSnapshot_Found(t *testing.T) {
	s, backend := newTestStore(t)
	stored := testutil.NewTestProject("Stored", testutil.WithTasks(testutil.NewTestTask("T", testutil.WithTaskProgress(25))))
	backend.PutSnapshot("snap-1", testutil.BuildPackage(stored), domain.SnapshotManual)
	s.AddTask(testutil.NewTestTask("A"))

	require.NoError(t, s.RestoreSnapshot(context.Background(), "snap-1"))
	p := s.CurrentProject()
	assert.Equal(t, stored.ID, p.ID)
	assert.Equal(t, float64(25), p.Progress)

	st := s.ProjectState()
	assert.Equal(t, domain.StateSaved, st.CurrentState)
	assert.False(t, st.HasUnsavedChanges)
	assert.False(t, st.IsUntitled)
	assert.Equal(t, domain.OpenedSnapshot, st.OpenedFrom)
	assert.Empty(t, s.UndoStack())
}

func TestSnapshotPassthroughs(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()
	backend.PutSnapshot("a", testutil.BuildPackage(testutil.NewTestProject("A")), domain.SnapshotAuto)
	backend.PutSnapshot("b", testutil.BuildPackage(testutil.NewTestProject("B")), domain.SnapshotManual)

	list, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Name)

	require.NoError(t, s.DeleteSnapshot(ctx, "a"))
	list, err = s.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.SaveProject(ctx))
	recent, err := s.RecentProjects(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestAutosaveNow(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	saved, err := s.AutosaveNow(ctx)
	require.NoError(t, err)
	assert.False(t, saved, "clean project is not autosaved")

	s.AddTask(testutil.NewTestTask("A"))
	saved, err = s.AutosaveNow(ctx)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1, backend.SnapshotCount(domain.SnapshotAuto))
	require.NotNil(t, s.LastAutosave())
	assert.Equal(t, domain.SnapshotAuto, s.LastAutosave().Type)

	st := s.ProjectState()
	assert.Equal(t, domain.StateDirty, st.CurrentState, "autosave never flips to saved")
	assert.True(t, st.HasUnsavedChanges)

	saved, err = s.AutosaveNow(ctx)
	require.NoError(t, err)
	assert.False(t, saved, "unchanged content is not written twice")
	assert.Equal(t, 1, backend.SnapshotCount(domain.SnapshotAuto))
}

func TestAutosaveNow_PausedDoesNothing(t *testing.T) {
	s, backend := newTestStore(t, WithAutosaveEnabled(false))
	s.AddTask(testutil.NewTestTask("A"))

	saved, err := s.AutosaveNow(context.Background())
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Zero(t, backend.SnapshotCount(domain.SnapshotAuto))
	assert.Equal(t, domain.AutosavePaused, s.ProjectState().AutosaveTimer)
}

func TestAutosave_FiresOnInterval(t *testing.T) {
	s, backend := newTestStore(t, WithAutosaveInterval(10*time.Millisecond))

	var mu sync.Mutex
	var autosaved int
	unsubscribe := s.Subscribe(func(ev Event) {
		if ev.Kind == EventAutosaved {
			mu.Lock()
			autosaved++
			mu.Unlock()
		}
	})
	defer unsubscribe()

	// Clean projects are skipped at each boundary.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, backend.SnapshotCount(domain.SnapshotAuto))

	s.AddTask(testutil.NewTestTask("A"))
	assert.Eventually(t, func() bool {
		return backend.SnapshotCount(domain.SnapshotAuto) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return autosaved == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, domain.StateDirty, s.ProjectState().CurrentState)
}

func TestAutosave_PauseStopsTimer(t *testing.T) {
	s, backend := newTestStore(t, WithAutosaveInterval(10*time.Millisecond))

	s.SetAutosaveActive(false)
	s.AddTask(testutil.NewTestTask("A"))
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, backend.SnapshotCount(domain.SnapshotAuto))

	s.SetAutosaveActive(true)
	assert.Eventually(t, func() bool {
		return backend.SnapshotCount(domain.SnapshotAuto) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestClose_FlushesDirtyProject(t *testing.T) {
	backend := testutil.NewMemoryBackend()
	ctx := context.Background()
	s, err := Open(ctx, backend, WithAutosaveInterval(time.Hour))
	require.NoError(t, err)

	s.AddTask(testutil.NewTestTask("A"))
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, 1, backend.SnapshotCount(domain.SnapshotAuto))

	assert.ErrorIs(t, s.Ready(), ErrClosed)
	assert.ErrorIs(t, s.SaveProject(ctx), ErrClosed)
	_, err = s.ListSnapshots(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	require.NoError(t, s.Close(ctx), "second close is a no-op")
}

func TestClose_RejectsLaterEdits(t *testing.T) {
	backend := testutil.NewMemoryBackend()
	ctx := context.Background()
	s, err := Open(ctx, backend, WithAutosaveInterval(time.Hour))
	require.NoError(t, err)

	s.AddTask(testutil.NewTestTask("A", testutil.WithTaskID("A")))
	name := s.CurrentProject().Name
	require.NoError(t, s.Close(ctx))

	s.AddTask(testutil.NewTestTask("B"))
	s.DeleteTask("A")
	p := s.CurrentProject()
	require.Len(t, p.Tasks, 1)
	assert.Equal(t, "A", p.Tasks[0].ID)

	assert.ErrorIs(t, s.Undo(), ErrClosed)
	assert.ErrorIs(t, s.Redo(), ErrClosed)
	assert.ErrorIs(t, s.RenameProject("Renamed"), ErrClosed)
	assert.Equal(t, name, s.CurrentProject().Name)
	assert.Equal(t, 1, backend.SnapshotCount(domain.SnapshotAuto), "no autosave after close")
}

func TestReady_NilStore(t *testing.T) {
	var s *Store
	assert.ErrorIs(t, s.Ready(), ErrNoStore)
}

func TestProjectLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	first := s.CurrentProject().ID
	s.AddTask(testutil.NewTestTask("A"))

	second := s.NewProject("Second")
	assert.Equal(t, second, s.CurrentProject().ID)
	assert.Equal(t, "Second", s.CurrentProject().Name)
	assert.Equal(t, domain.StateUntitled, s.ProjectState().CurrentState)
	assert.Empty(t, s.UndoStack(), "history belongs to the active project")

	require.NoError(t, s.SetCurrentProject(first))
	assert.Equal(t, first, s.CurrentProject().ID)
	assert.Equal(t, domain.StateDirty, s.ProjectState().CurrentState, "state is tracked per project")

	assert.ErrorIs(t, s.SetCurrentProject("missing"), ErrUnknownProject)
	assert.Error(t, s.CloseProject(first), "active project cannot be closed")

	st, ok := s.StateOf(second)
	require.True(t, ok)
	assert.Equal(t, domain.StateUntitled, st.CurrentState)
	_, ok = s.StateOf("missing")
	assert.False(t, ok)

	require.NoError(t, s.CloseProject(second))
	assert.Len(t, s.Projects(), 1)
	assert.ErrorIs(t, s.CloseProject(second), ErrUnknownProject)
}

func TestSubscribe_ObserversRunOutsideLock(t *testing.T) {
	s, _ := newTestStore(t)

	var kinds []EventKind
	var progress []float64
	unsubscribe := s.Subscribe(func(ev Event) {
		kinds = append(kinds, ev.Kind)
		// Reading the store from an observer must not deadlock.
		progress = append(progress, s.CurrentProject().Progress)
	})

	s.AddTask(testutil.CompletedTask("A"))
	assert.Contains(t, kinds, EventProjectChanged)
	assert.Contains(t, kinds, EventStateChanged)
	assert.Contains(t, kinds, EventHistoryChanged)
	assert.Equal(t, float64(100), progress[0])

	unsubscribe()
	kinds = nil
	s.AddTask(testutil.NewTestTask("B"))
	assert.Empty(t, kinds)
}

func TestUseCaseObserver_ReceivesPersistenceEvents(t *testing.T) {
	obs := &recordingObserver{}
	s, backend := newTestStore(t, WithUseCaseObserver(obs))
	ctx := context.Background()

	s.AddTask(testutil.NewTestTask("A"))
	require.NoError(t, s.SaveProject(ctx))
	backend.SaveErr = errors.New("boom")
	require.Error(t, s.ExportProjectFile(ctx, "/x.json"))

	names := obs.names()
	assert.Contains(t, names, "initialize")
	assert.Contains(t, names, "save_project")
	assert.Contains(t, names, "export_project")

	last := obs.last()
	assert.False(t, last.Success)
	assert.Error(t, last.Err)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, ev UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *recordingObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	for i, ev := range o.events {
		out[i] = ev.Name
	}
	return out
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

func TestOpenProjectFile_SeededFileBecomesActive(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	shared := testutil.NewTestProject("Shared Plan", testutil.WithTasks(
		testutil.CompletedTask("Survey", testutil.WithTaskID("T1")),
		testutil.NewTestTask("Design", testutil.WithTaskID("T2"), testutil.WithDependencies("T1")),
	))
	backend.PutFile("/shared/plan.yaml", testutil.BuildPackage(shared))

	require.NoError(t, s.OpenProjectFile(ctx, "/shared/plan.yaml"))
	p := s.CurrentProject()
	assert.Equal(t, shared.ID, p.ID)
	assert.Equal(t, "Shared Plan", p.Name)
	assert.Equal(t, float64(50), p.Progress)
	assert.Len(t, s.Projects(), 2)

	updated := p.Tasks[1].Clone()
	updated.Progress = 100
	updated.Status = domain.TaskDone
	s.UpdateTask("T2", updated)

	assert.Equal(t, float64(100), s.CurrentProject().Progress)
	assert.Equal(t, domain.StateDirty, s.ProjectState().CurrentState)
	assert.Len(t, s.UndoStack(), 1)
}
