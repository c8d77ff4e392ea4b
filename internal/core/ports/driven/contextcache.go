package driven

import (
	"context"
	"time"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
)

// CreateCacheRequest describes a new remote context cache entry.
type CreateCacheRequest struct {
	// Model is the generation model the cache is created for.
	Model string

	// DisplayName is a human-readable label ("lawID--hashPrefix").
	// It is never parsed; the authoritative association lives in the
	// CacheRegistry.
	DisplayName string

	// System is the system instruction baked into the cache.
	System string

	// Content is the full document text to cache.
	Content string

	// TTL is the lifetime of the entry.
	TTL time.Duration
}

// RemoteCache describes a cache entry as reported by the remote service.
type RemoteCache struct {
	// CacheID is the remote handle.
	CacheID string

	// DisplayName is the label set at creation.
	DisplayName string

	// ExpiresAt is the remote expiry time.
	ExpiresAt time.Time
}

// ContextCacheAPI is the remote LLM context cache service.
// The remote service owns cached content; leyrag only holds handles.
type ContextCacheAPI interface {
	// Create uploads content as a new cache entry and returns its handle.
	Create(ctx context.Context, req CreateCacheRequest) (string, error)

	// List returns the caller's cache entries.
	List(ctx context.Context) ([]RemoteCache, error)

	// Delete removes a cache entry. Deleting an unknown handle returns
	// domain.ErrNotFound.
	Delete(ctx context.Context, cacheID string) error
}

// CacheRegistry persists the structured association between a remote
// cache handle, its owning law and the content hash it was built from.
// It replaces the fragile convention of recovering this association by
// parsing the remote display name.
type CacheRegistry interface {
	// Put stores or replaces the session for its law.
	Put(ctx context.Context, session domain.CacheSession) error

	// Find returns the session for a law, or domain.ErrNotFound.
	Find(ctx context.Context, lawID string) (*domain.CacheSession, error)

	// List returns all tracked sessions, including expired ones.
	List(ctx context.Context) ([]domain.CacheSession, error)

	// Remove deletes the session with the given cache id, if present.
	Remove(ctx context.Context, cacheID string) error
}
