package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/alexanderramin/ganttly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentProjectRepo_UpsertReplacesEntry(t *testing.T) {
	repo := NewSQLiteRecentProjectRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	first := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, &domain.RecentProject{
		FileName: "Bridge", FilePath: "/tmp/bridge.json", ProjectUUID: "p1", IsTemporary: true, OpenedAt: first,
	}))
	require.NoError(t, repo.Upsert(ctx, &domain.RecentProject{
		FileName: "Bridge v2", FilePath: "/tmp/bridge2.json", ProjectUUID: "p1", IsTemporary: false, OpenedAt: first.Add(time.Hour),
	}))

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bridge v2", list[0].FileName)
	assert.Equal(t, "/tmp/bridge2.json", list[0].FilePath)
	assert.False(t, list[0].IsTemporary)
	assert.Equal(t, first.Add(time.Hour), list[0].OpenedAt)
}

func TestRecentProjectRepo_ListOrderAndLimit(t *testing.T) {
	repo := NewSQLiteRecentProjectRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, repo.Upsert(ctx, &domain.RecentProject{
			FileName: id, ProjectUUID: id, OpenedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p3", list[0].ProjectUUID)
	assert.Equal(t, "p2", list[1].ProjectUUID)
}

func TestRecentProjectRepo_Delete(t *testing.T) {
	repo := NewSQLiteRecentProjectRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &domain.RecentProject{FileName: "x", ProjectUUID: "p1", OpenedAt: time.Now()}))
	require.NoError(t, repo.Delete(ctx, "p1"))

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
