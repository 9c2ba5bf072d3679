package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatStatus_NoProject(t *testing.T) {
	assert.Contains(t, FormatStatus(StatusData{}), "No active project")
}

func TestFormatStatus_RendersOverview(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	out := FormatStatus(StatusData{
		Project:      sampleProject(),
		State:        domain.StateSaved,
		OpenedFrom:   domain.OpenedSnapshot,
		LastModified: now.Add(-10 * time.Minute),
		Autosave:     domain.AutosavePaused,
		LastAutosave: &domain.SnapshotInfo{Name: "auto-1", CreatedAt: now.Add(-1 * time.Hour)},
		UndoDepth:    3,
		RedoDepth:    1,
		Now:          now,
	})

	assert.Contains(t, out, "Bridge Retrofit")
	assert.Contains(t, out, "saved")
	assert.Contains(t, out, "snapshot")
	assert.Contains(t, out, "10 minutes ago")
	assert.Contains(t, out, "paused")
	assert.Contains(t, out, "1 hour ago")
	assert.Contains(t, out, "3 undo · 1 redo")
	assert.Contains(t, out, "0 todo")
	assert.Contains(t, out, "1 active")
	assert.Contains(t, out, "1 done")
	assert.Contains(t, out, "2 open")
}

func TestFormatSnapshotList(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	assert.Contains(t, FormatSnapshotList(nil, now), "No snapshots")

	out := FormatSnapshotList([]domain.SnapshotInfo{
		{Name: "manual-abc", Type: domain.SnapshotManual, ProjectID: "abcdef1234", CreatedAt: now.Add(-2 * time.Minute), SizeBytes: 1200},
		{Name: "auto-abc", Type: domain.SnapshotAuto, ProjectID: "abcdef1234", CreatedAt: now.Add(-3 * time.Hour)},
	}, now)
	assert.Contains(t, out, "manual-abc")
	assert.Contains(t, out, "2 minutes ago")
	assert.Contains(t, out, "3 hours ago")
	assert.Contains(t, out, "1.2 kB")
}

func TestFormatRecentList(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	assert.Contains(t, FormatRecentList(nil, now), "No recent projects")

	out := FormatRecentList([]domain.RecentProject{
		{FileName: "plan.yaml", FilePath: "/tmp/plan.yaml", ProjectUUID: "abcdef1234", OpenedAt: now.Add(-time.Hour)},
		{FileName: "Scratch", IsTemporary: true, ProjectUUID: "12345678aa", OpenedAt: now},
	}, now)
	assert.Contains(t, out, "plan.yaml")
	assert.Contains(t, out, "(temp)")
	assert.Contains(t, out, "just now")
}

func TestFormatShellHelp_ListsCategories(t *testing.T) {
	out := FormatShellHelp()
	for _, want := range []string{"PROJECTS", "EDITING", "PERSISTENCE", "undo / redo", "export <path>"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, FormatShellWelcome(), "ganttly")
}
