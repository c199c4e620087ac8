package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camshare/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func activity(id string, kind model.ActivityKind, camera string, at time.Time) model.Activity {
	return model.Activity{ID: id, Kind: kind, CameraID: camera, Actor: "authority", Detail: "detail " + id, OccurredAt: at}
}

func TestDatabase_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "camshare.db")

	db, err := New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestDatabase_InMemoryURI(t *testing.T) {
	db, err := New("file:repo_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer db.Close()

	repo := NewActivityRepository(db)
	require.NoError(t, repo.Insert(&model.Activity{ID: "a", Kind: model.ActivityAccessRequested, OccurredAt: time.Now()}))

	n, err := repo.Count(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestActivityRepository_InsertAndList(t *testing.T) {
	repo := NewActivityRepository(newTestDB(t))
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.InsertBatch([]model.Activity{
		activity("1", model.ActivityAccessRequested, "CAM-002", base),
		activity("2", model.ActivityAccessGranted, "CAM-002", base.Add(time.Minute)),
		activity("3", model.ActivityScanCompleted, "CAM-001", base.Add(2*time.Minute)),
	}))

	all, err := repo.List(&model.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].ID)
	assert.Equal(t, model.ActivityScanCompleted, all[0].Kind)
	assert.True(t, all[2].OccurredAt.Equal(base))
	assert.Equal(t, "detail 1", all[2].Detail)

	byCamera, err := repo.List(&model.ActivityFilter{CameraID: "CAM-002"})
	require.NoError(t, err)
	assert.Len(t, byCamera, 2)

	byKind, err := repo.List(&model.ActivityFilter{Kind: model.ActivityAccessGranted})
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	assert.Equal(t, "2", byKind[0].ID)

	since, err := repo.List(&model.ActivityFilter{Since: base.Add(30 * time.Second)})
	require.NoError(t, err)
	assert.Len(t, since, 2)

	limited, err := repo.List(&model.ActivityFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	count, err := repo.Count(&model.ActivityFilter{CameraID: "CAM-002", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestActivityRepository_DuplicateIDIgnored(t *testing.T) {
	repo := NewActivityRepository(newTestDB(t))
	a := activity("dup", model.ActivityAccessRevoked, "CAM-003", time.Now())

	require.NoError(t, repo.Insert(&a))
	require.NoError(t, repo.Insert(&a))

	n, err := repo.Count(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestActivityRepository_DeleteBefore(t *testing.T) {
	repo := NewActivityRepository(newTestDB(t))
	now := time.Now().UTC()

	require.NoError(t, repo.InsertBatch([]model.Activity{
		activity("old", model.ActivityAccessRequested, "CAM-001", now.Add(-48*time.Hour)),
		activity("new", model.ActivityAccessRequested, "CAM-001", now),
	}))

	removed, err := repo.DeleteBefore(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	rest, err := repo.List(nil)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "new", rest[0].ID)
}

func TestActivityRepository_EmptyList(t *testing.T) {
	repo := NewActivityRepository(newTestDB(t))

	list, err := repo.List(&model.ActivityFilter{CameraID: "none"})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
