package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	embedding []float32
	embedErr  error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockIndex implements driven.VectorIndex for testing.
type mockIndex struct {
	results   []domain.LawDocument
	byID      map[string]domain.LawDocument
	searchErr error
	saved     []domain.LawDocument
}

func (m *mockIndex) Save(_ context.Context, doc domain.LawDocument, _ []float32) error {
	m.saved = append(m.saved, doc)
	return nil
}

func (m *mockIndex) Search(_ context.Context, _ []float32, k int) ([]domain.LawDocument, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.results) {
		return m.results, nil
	}
	return m.results[:k], nil
}

func (m *mockIndex) GetByID(_ context.Context, id string) (*domain.LawDocument, error) {
	if doc, ok := m.byID[id]; ok {
		return &doc, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockIndex) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := m.byID[id]; ok {
		delete(m.byID, id)
		return true, nil
	}
	return false, nil
}

func (m *mockIndex) ListIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockIndex) Count(_ context.Context) (int, error) { return len(m.byID), nil }
func (m *mockIndex) Close() error                         { return nil }

// mockGenerator implements driven.Generator for testing.
type mockGenerator struct {
	answer      string
	err         error
	lastRequest driven.GenerateRequest
	calls       int
}

func (m *mockGenerator) Generate(_ context.Context, req driven.GenerateRequest) (string, error) {
	m.calls++
	m.lastRequest = req
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockGenerator) ModelName() string            { return "mock-llm" }
func (m *mockGenerator) Ping(_ context.Context) error { return nil }
func (m *mockGenerator) Close() error                 { return nil }

// mockReader implements driven.DocumentReader backed by a path→content map.
type mockReader struct {
	files map[string]string
}

func (m *mockReader) Read(path string) (string, error) {
	if content, ok := m.files[path]; ok {
		return content, nil
	}
	return "", domain.ErrNotFound
}

// mockCacheAPI implements driven.ContextCacheAPI for testing.
type mockCacheAPI struct {
	mu        sync.Mutex
	entries   map[string]driven.RemoteCache
	nextID    int
	createErr error
	listErr   error
	created   int
}

func newMockCacheAPI() *mockCacheAPI {
	return &mockCacheAPI{entries: make(map[string]driven.RemoteCache)}
}

func (m *mockCacheAPI) Create(_ context.Context, req driven.CreateCacheRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	m.nextID++
	m.created++
	id := fmt.Sprintf("cachedContents/%s-%d", req.DisplayName, m.nextID)
	m.entries[id] = driven.RemoteCache{
		CacheID:     id,
		DisplayName: req.DisplayName,
		ExpiresAt:   time.Now().Add(req.TTL),
	}
	return id, nil
}

func (m *mockCacheAPI) List(_ context.Context) ([]driven.RemoteCache, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	list := make([]driven.RemoteCache, 0, len(m.entries))
	for _, e := range m.entries {
		list = append(list, e)
	}
	return list, nil
}

func (m *mockCacheAPI) Delete(_ context.Context, cacheID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[cacheID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.entries, cacheID)
	return nil
}

// mockRegistry implements driven.CacheRegistry in memory.
type mockRegistry struct {
	mu       sync.Mutex
	sessions map[string]domain.CacheSession // keyed by law id
	findErr  error
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{sessions: make(map[string]domain.CacheSession)}
}

func (m *mockRegistry) Put(_ context.Context, session domain.CacheSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.LawID] = session
	return nil
}

func (m *mockRegistry) Find(_ context.Context, lawID string) (*domain.CacheSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	if session, ok := m.sessions[lawID]; ok {
		return &session, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockRegistry) List(_ context.Context) ([]domain.CacheSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]domain.CacheSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	return list, nil
}

func (m *mockRegistry) Remove(_ context.Context, cacheID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for lawID, s := range m.sessions {
		if s.CacheID == cacheID {
			delete(m.sessions, lawID)
		}
	}
	return nil
}

// mockProcessor implements driven.DocumentProcessor for testing.
type mockProcessor struct {
	filePath string
	markdown string
	err      error
	failURL  string
}

func (m *mockProcessor) Process(_ context.Context, url, _ string) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	if m.failURL != "" && url == m.failURL {
		return "", "", domain.ErrNotFound
	}
	return m.filePath, m.markdown, nil
}
