package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
	"github.com/leyrag-labs/leyrag/internal/logger"
)

// CacheManager manages content-addressed server-side context caches:
// one cache entry per law, keyed by the SHA-256 of its processed text.
//
// The remote service owns the cached content. The local registry holds
// the structured (cache id, law id, content hash, expiry) association,
// so reuse decisions never depend on parsing remote display names.
// Expiry is lazy: entries become invisible once their expiry passes,
// but nothing sweeps them proactively.
type CacheManager struct {
	api       driven.ContextCacheAPI
	registry  driven.CacheRegistry
	generator driven.Generator
	reader    driven.DocumentReader
	prompts   driven.PromptStore
	model     string
	ttl       time.Duration
	now       func() time.Time
}

// NewCacheManager creates a cache manager with the given TTL for new
// cache entries.
func NewCacheManager(
	api driven.ContextCacheAPI,
	registry driven.CacheRegistry,
	generator driven.Generator,
	reader driven.DocumentReader,
	model string,
	ttl time.Duration,
) *CacheManager {
	return &CacheManager{
		api:       api,
		registry:  registry,
		generator: generator,
		reader:    reader,
		model:     model,
		ttl:       ttl,
		now:       time.Now,
	}
}

// SetPromptStore sets the store for customisable prompt templates.
func (m *CacheManager) SetPromptStore(store driven.PromptStore) {
	m.prompts = store
}

// GetOrCreate returns a valid cache session for the document, reusing
// an existing entry when the content hash still matches and the entry
// has not expired, and creating a fresh entry otherwise.
//
// The returned bool reports whether an existing session was reused.
// Bookkeeping failures while matching degrade to a cache miss; a
// creation failure is fatal to this call.
func (m *CacheManager) GetOrCreate(ctx context.Context, doc domain.LawDocument) (domain.CacheSession, bool, error) {
	if doc.FilePath == "" {
		return domain.CacheSession{}, false, fmt.Errorf("%w: document %s has no processed file", domain.ErrCache, doc.ID)
	}
	content, err := m.reader.Read(doc.FilePath)
	if err != nil {
		return domain.CacheSession{}, false, fmt.Errorf("%w: read %s: %v", domain.ErrCache, doc.FilePath, err)
	}

	hash := domain.ContentHash(content)
	now := m.now()

	if session := m.findReusable(ctx, doc.ID, hash, now); session != nil {
		logger.Info("Reusing cache %s for %s (hash %s)", session.CacheID, doc.ID, session.HashPrefix())
		return *session, true, nil
	}

	session, err := m.create(ctx, doc, content, hash, now)
	if err != nil {
		return domain.CacheSession{}, false, err
	}
	logger.Info("Created cache %s for %s (hash %s, ttl %s)", session.CacheID, doc.ID, session.HashPrefix(), m.ttl)
	return session, false, nil
}

// findReusable returns the tracked session for a law if it is still
// valid for the given content hash and still exists remotely.
// Any failure while matching is treated as "no match found": a broken
// cache must never block answer generation.
func (m *CacheManager) findReusable(ctx context.Context, lawID, hash string, now time.Time) *domain.CacheSession {
	session, err := m.registry.Find(ctx, lawID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Cache registry lookup for %s failed: %v (treating as miss)", lawID, err)
		}
		return nil
	}
	if !session.Valid(now, hash) {
		logger.Debug("Tracked cache for %s is stale (expired=%t)", lawID, session.Expired(now))
		return nil
	}

	remotes, err := m.api.List(ctx)
	if err != nil {
		logger.Warn("Remote cache listing failed: %v (treating as miss)", err)
		return nil
	}
	for _, remote := range remotes {
		if remote.CacheID == session.CacheID && now.Before(remote.ExpiresAt) {
			return session
		}
	}
	logger.Debug("Cache %s for %s no longer live remotely", session.CacheID, lawID)
	return nil
}

// create uploads a fresh cache entry and records it in the registry,
// retiring any stale entry tracked for the same law.
func (m *CacheManager) create(
	ctx context.Context, doc domain.LawDocument, content, hash string, now time.Time,
) (domain.CacheSession, error) {
	// Retire the superseded entry first so the remote side does not
	// accumulate one cache per content revision.
	if stale, err := m.registry.Find(ctx, doc.ID); err == nil {
		if err := m.api.Delete(ctx, stale.CacheID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Could not delete stale cache %s: %v", stale.CacheID, err)
		}
		if err := m.registry.Remove(ctx, stale.CacheID); err != nil {
			logger.Warn("Could not untrack stale cache %s: %v", stale.CacheID, err)
		}
	}

	session := domain.CacheSession{
		LawID:       doc.ID,
		ContentHash: hash,
		ExpiresAt:   now.Add(m.ttl),
		Model:       m.model,
	}

	cacheID, err := m.api.Create(ctx, driven.CreateCacheRequest{
		Model:       m.model,
		DisplayName: doc.ID + "--" + session.HashPrefix(),
		System:      loadPrompt(m.prompts, driven.PromptSystem),
		Content:     buildContextBlock(doc, content),
		TTL:         m.ttl,
	})
	if err != nil {
		return domain.CacheSession{}, fmt.Errorf("%w: create cache for %s: %v", domain.ErrCache, doc.ID, err)
	}
	session.CacheID = cacheID

	if err := m.registry.Put(ctx, session); err != nil {
		// The remote entry exists and is usable for this call; only
		// reuse across calls is lost.
		logger.Warn("Could not track cache %s: %v", cacheID, err)
	}
	return session, nil
}

// Generate answers a query against a cached context.
func (m *CacheManager) Generate(ctx context.Context, session domain.CacheSession, query string) (string, error) {
	prompt := fmt.Sprintf(loadPrompt(m.prompts, driven.PromptTaskCached), query)
	answer, err := m.generator.Generate(ctx, driven.GenerateRequest{
		Prompt:  prompt,
		CacheID: session.CacheID,
	})
	if err != nil {
		return "", fmt.Errorf("generate with cache %s: %w", session.CacheID, err)
	}
	return answer, nil
}

// ListActive returns the tracked sessions that have not expired.
// Expired entries are not purged here; they simply become invisible.
func (m *CacheManager) ListActive(ctx context.Context) ([]domain.CacheSession, error) {
	sessions, err := m.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %v", domain.ErrCache, err)
	}

	now := m.now()
	active := make([]domain.CacheSession, 0, len(sessions))
	for _, s := range sessions {
		if !s.Expired(now) {
			active = append(active, s)
		}
	}
	return active, nil
}

// Delete removes a cache entry remotely and locally. It is idempotent:
// deleting an unknown or already-removed entry returns false.
func (m *CacheManager) Delete(ctx context.Context, cacheID string) bool {
	deleted := true
	if err := m.api.Delete(ctx, cacheID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Remote cache delete %s failed: %v", cacheID, err)
		}
		deleted = false
	}
	if err := m.registry.Remove(ctx, cacheID); err != nil {
		logger.Warn("Cache registry remove %s failed: %v", cacheID, err)
	}
	return deleted
}
