package implementation

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-musictriage-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStateRepositoryLifecycle(t *testing.T) {
	repo := NewFileStateRepository(t.TempDir())
	ctx := context.Background()

	// Absent key: no state, no error.
	loaded, err := repo.Load(ctx, "liked:nobody")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	session := entity.NewSession("liked:user1", []string{"a", "b"})
	session.Append(&entity.Decision{
		TrackId:   "a",
		TrackName: "Alpha",
		ThemeKeys: []string{"ambiance"},
		Status:    entity.DecisionApplied,
		DecidedAt: time.Now(),
	})
	require.NoError(t, repo.Save(ctx, session))

	exists, err := repo.Exists(ctx, "liked:user1")
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err = repo.Load(ctx, "liked:user1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1, loaded.Cursor)
	assert.Equal(t, []string{"a", "b"}, loaded.TrackIds)
	require.Len(t, loaded.Log, 1)
	assert.Equal(t, "Alpha", loaded.Log[0].TrackName)

	require.NoError(t, repo.Delete(ctx, "liked:user1"))
	exists, err = repo.Exists(ctx, "liked:user1")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting twice is fine.
	require.NoError(t, repo.Delete(ctx, "liked:user1"))
}

func TestFileStateRepositorySaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileStateRepository(dir)
	ctx := context.Background()

	session := entity.NewSession("liked:user1", []string{"a"})
	require.NoError(t, repo.Save(ctx, session))
	session.Append(&entity.Decision{
		TrackId:   "a",
		Skipped:   true,
		Status:    entity.DecisionApplied,
		DecidedAt: time.Now(),
	})
	require.NoError(t, repo.Save(ctx, session))

	// No temp file left behind after a completed save.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "session-liked_user1.json", entries[0].Name())

	loaded, err := repo.Load(ctx, "liked:user1")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Cursor)
}

func TestFileStateRepositoryCorruptFile(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileStateRepository(dir)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, entity.NewSession("liked:user1", []string{"a"})))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session-liked_user1.json"), []byte("{oops"), 0o644))

	_, err := repo.Load(ctx, "liked:user1")
	assert.ErrorIs(t, err, entity.ErrStateCorruption)
}
