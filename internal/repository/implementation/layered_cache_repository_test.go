package implementation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suggestions(theme string) []*entity.Suggestion {
	return []*entity.Suggestion{{TrackId: "t1", ThemeKey: theme, Confidence: 0.8}}
}

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("][ not a cache"), 0o644)
}

func TestLayeredCacheWriteThrough(t *testing.T) {
	front := memory.NewSuggestionCache()
	back := memory.NewSuggestionCache()
	layered := NewLayeredCacheRepository(front, back)
	ctx := context.Background()

	require.NoError(t, layered.Put(ctx, "k1", suggestions("ambiance")))

	_, found, err := front.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, found)
	_, found, err = back.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestLayeredCacheBackfillsFront(t *testing.T) {
	front := memory.NewSuggestionCache()
	back := memory.NewSuggestionCache()
	layered := NewLayeredCacheRepository(front, back)
	ctx := context.Background()

	// Seed only the durable layer, as after a restart.
	require.NoError(t, back.Put(ctx, "k1", suggestions("ambiance")))

	got, found, err := layered.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ambiance", got[0].ThemeKey)

	// The read repopulated the fast layer.
	_, found, err = front.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestLayeredCacheMiss(t *testing.T) {
	layered := NewLayeredCacheRepository(memory.NewSuggestionCache(), memory.NewSuggestionCache())

	_, found, err := layered.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLayeredCacheClear(t *testing.T) {
	front := memory.NewSuggestionCache()
	back := memory.NewSuggestionCache()
	layered := NewLayeredCacheRepository(front, back)
	ctx := context.Background()

	require.NoError(t, layered.Put(ctx, "k1", suggestions("ambiance")))
	require.NoError(t, layered.Clear(ctx))

	_, found, err := layered.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileCacheSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestion-cache.json")
	ctx := context.Background()

	first := NewFileCacheRepository(path)
	require.NoError(t, first.Put(ctx, "k1", suggestions("lets_dance")))

	reopened := NewFileCacheRepository(path)
	got, found, err := reopened.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "lets_dance", got[0].ThemeKey)
	assert.InDelta(t, 0.8, got[0].Confidence, 1e-9)
}

func TestFileCacheToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestion-cache.json")
	ctx := context.Background()

	repo := NewFileCacheRepository(path)
	require.NoError(t, repo.Put(ctx, "k1", suggestions("ambiance")))

	// A mangled cache file means a cold cache, never an error.
	require.NoError(t, writeGarbage(path))
	reopened := NewFileCacheRepository(path)
	_, found, err := reopened.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found)

	// And it is fully usable afterwards.
	require.NoError(t, reopened.Put(ctx, "k2", suggestions("lets_dance")))
	_, found, err = reopened.Get(ctx, "k2")
	require.NoError(t, err)
	assert.True(t, found)
}
