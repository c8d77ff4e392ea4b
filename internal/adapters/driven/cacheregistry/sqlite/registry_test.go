package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
)

// setupTestRegistry creates a temporary SQLite registry for testing.
func setupTestRegistry(t *testing.T) *Registry {
	t.Helper()

	registry, err := NewRegistry(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, registry)

	t.Cleanup(func() {
		assert.NoError(t, registry.Close())
	})
	return registry
}

func testSession(lawID, cacheID string) domain.CacheSession {
	return domain.CacheSession{
		CacheID:     cacheID,
		LawID:       lawID,
		ContentHash: domain.ContentHash("texto de " + lawID),
		ExpiresAt:   time.Now().UTC().Add(time.Hour).Truncate(time.Second),
		Model:       "models/gemini-1.5-pro",
	}
}

func TestRegistry_Put_Get(t *testing.T) {
	registry := setupTestRegistry(t)
	ctx := context.Background()

	session := testSession("ley_24714", "cachedContents/abc")
	require.NoError(t, registry.Put(ctx, session))

	found, err := registry.Find(ctx, "ley_24714")
	require.NoError(t, err)
	assert.Equal(t, session.CacheID, found.CacheID)
	assert.Equal(t, session.LawID, found.LawID)
	assert.Equal(t, session.ContentHash, found.ContentHash)
	assert.Equal(t, session.Model, found.Model)
	assert.True(t, session.ExpiresAt.Equal(found.ExpiresAt.UTC()))
}

func TestRegistry_Put_ReplacesSessionForSameLaw(t *testing.T) {
	registry := setupTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Put(ctx, testSession("ley_24714", "cachedContents/old")))
	require.NoError(t, registry.Put(ctx, testSession("ley_24714", "cachedContents/new")))

	found, err := registry.Find(ctx, "ley_24714")
	require.NoError(t, err)
	assert.Equal(t, "cachedContents/new", found.CacheID)

	sessions, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1, "one row per law")
}

func TestRegistry_Find_NotFound(t *testing.T) {
	registry := setupTestRegistry(t)

	_, err := registry.Find(context.Background(), "ley_999")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistry_List(t *testing.T) {
	registry := setupTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Put(ctx, testSession("ley_24714", "cachedContents/a")))
	require.NoError(t, registry.Put(ctx, testSession("ley_19587", "cachedContents/b")))

	sessions, err := registry.List(ctx)

	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "ley_19587", sessions[0].LawID)
	assert.Equal(t, "ley_24714", sessions[1].LawID)
}

func TestRegistry_List_IncludesExpired(t *testing.T) {
	registry := setupTestRegistry(t)
	ctx := context.Background()

	expired := testSession("ley_24714", "cachedContents/a")
	expired.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, registry.Put(ctx, expired))

	sessions, err := registry.List(ctx)

	require.NoError(t, err)
	assert.Len(t, sessions, 1, "expiry filtering is the caller's concern")
}

func TestRegistry_Remove(t *testing.T) {
	registry := setupTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Put(ctx, testSession("ley_24714", "cachedContents/a")))
	require.NoError(t, registry.Remove(ctx, "cachedContents/a"))

	_, err := registry.Find(ctx, "ley_24714")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistry_Remove_UnknownIsNoError(t *testing.T) {
	registry := setupTestRegistry(t)

	assert.NoError(t, registry.Remove(context.Background(), "cachedContents/unknown"))
}

func TestRegistry_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	registry, err := NewRegistry(dir)
	require.NoError(t, err)
	require.NoError(t, registry.Put(ctx, testSession("ley_24714", "cachedContents/a")))
	require.NoError(t, registry.Close())

	reopened, err := NewRegistry(dir)
	require.NoError(t, err)
	defer reopened.Close()

	found, err := reopened.Find(ctx, "ley_24714")
	require.NoError(t, err)
	assert.Equal(t, "cachedContents/a", found.CacheID)
}
