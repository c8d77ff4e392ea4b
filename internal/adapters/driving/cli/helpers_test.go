package cli

import (
	"context"
	"time"

	"github.com/leyrag-labs/leyrag/internal/adapters/driven/vector/memory"
	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driving"
	"github.com/leyrag-labs/leyrag/internal/core/services"
)

// stubQueryService records calls and returns a fixed result.
type stubQueryService struct {
	result    domain.QueryResult
	lastQuery string
	lastTopK  int
	lastLawID string
}

func (s *stubQueryService) Query(_ context.Context, query string, topK int) domain.QueryResult {
	s.lastQuery = query
	s.lastTopK = topK
	return s.result
}

func (s *stubQueryService) QueryLaw(_ context.Context, query, lawID string) domain.QueryResult {
	s.lastQuery = query
	s.lastLawID = lawID
	return s.result
}

// stubIngestionService records calls and returns canned documents.
type stubIngestionService struct {
	doc            *domain.LawDocument
	batch          []domain.LawDocument
	err            error
	lastLaw        driving.LawConfig
	lastConfigPath string
}

func (s *stubIngestionService) IngestLaw(_ context.Context, cfg driving.LawConfig) (*domain.LawDocument, error) {
	s.lastLaw = cfg
	return s.doc, s.err
}

func (s *stubIngestionService) IngestFromConfig(_ context.Context, configPath string) ([]domain.LawDocument, error) {
	s.lastConfigPath = configPath
	return s.batch, s.err
}

// stubConfigStore is an in-memory ConfigStore.
type stubConfigStore struct {
	values map[string]any
}

func newStubConfigStore() *stubConfigStore {
	return &stubConfigStore{values: make(map[string]any)}
}

func (s *stubConfigStore) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *stubConfigStore) GetString(key string) string {
	if v, ok := s.values[key].(string); ok {
		return v
	}
	return ""
}

func (s *stubConfigStore) GetInt(key string) int {
	if v, ok := s.values[key].(int); ok {
		return v
	}
	return 0
}

func (s *stubConfigStore) Set(key string, value any) error {
	s.values[key] = value
	return nil
}

func (s *stubConfigStore) Delete(key string) error {
	delete(s.values, key)
	return nil
}

// setupTestDeps installs stub dependencies and returns the query stub
// plus a cleanup restoring the previous state.
func setupTestDeps(result domain.QueryResult) (*stubQueryService, func()) {
	previous := deps

	query := &stubQueryService{result: result}
	index := memory.NewIndex()
	deps = Dependencies{
		Query:    query,
		Removal:  services.NewRemovalService(index),
		Sessions: services.NewSessionStore(30 * time.Minute),
		Index:    index,
		Config:   newStubConfigStore(),
	}
	return query, func() { deps = previous }
}
