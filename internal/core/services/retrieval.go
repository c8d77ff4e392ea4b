package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driving"
	"github.com/leyrag-labs/leyrag/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.QueryService = (*RetrievalService)(nil)

// rerankOverfetch is how many extra candidates are requested from the
// vector index so the reranker can promote the anchor law without
// losing slots.
const rerankOverfetch = 2

// DefaultAnchorLawID is the framework law for Argentine family
// allowances. It anchors every answer in the default deployment.
const DefaultAnchorLawID = "ley_24714"

// RetrievalConfig holds the tunables of the query pipeline.
type RetrievalConfig struct {
	// AnchorLawID is promoted to the first context position whenever it
	// appears among the retrieved candidates.
	AnchorLawID string

	// DefaultTopK is used when a caller passes topK <= 0.
	DefaultTopK int

	// RequestTimeout bounds each external call (embed, search,
	// generate). Zero disables the per-call timeout.
	RequestTimeout time.Duration
}

// RetrievalService orchestrates the query pipeline:
// Embed → Search → Rerank → (Cache) → Generate → Result.
type RetrievalService struct {
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	generator driven.Generator
	reader    driven.DocumentReader
	cache     *CacheManager
	prompts   driven.PromptStore
	cfg       RetrievalConfig
}

// NewRetrievalService creates the query pipeline.
// The cache manager is optional (can be nil): without it every query
// generates against inline context.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	generator driven.Generator,
	reader driven.DocumentReader,
	cache *CacheManager,
	cfg RetrievalConfig,
) *RetrievalService {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 3
	}
	return &RetrievalService{
		embedder:  embedder,
		index:     index,
		generator: generator,
		reader:    reader,
		cache:     cache,
		cfg:       cfg,
	}
}

// SetPromptStore sets the store for customisable prompt templates.
// Without it, the embedded default prompts are used.
func (s *RetrievalService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Query runs the full pipeline for a user question.
// It never returns an error: every failure degrades to a QueryResult
// with Confidence 0 and a localized Answer.
func (s *RetrievalService) Query(ctx context.Context, query string, topK int) domain.QueryResult {
	logger.Section("Query Execution")
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		// Client error, not a system fault.
		return domain.QueryResult{
			Answer:         domain.MsgEmptyQuery,
			Documents:      []domain.LawDocument{},
			Confidence:     0.0,
			ResponseTimeMs: elapsedMs(start),
			Failure:        domain.FailureValidation,
		}
	}
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	logger.Debug("Query: %q, topK=%d", query, topK)

	if s.embedder == nil || s.index == nil || s.generator == nil {
		logger.Error("Query pipeline misconfigured: embedder=%t index=%t generator=%t",
			s.embedder != nil, s.index != nil, s.generator != nil)
		return s.errorResult(domain.ErrRetrieval, start)
	}

	logger.Debug("Step 1: embedding query")
	embedding, err := s.embedQuery(ctx, query)
	if err != nil {
		logger.Error("Query embedding failed: %v", err)
		return s.errorResult(fmt.Errorf("%w: %v", domain.ErrRetrieval, err), start)
	}

	// Over-fetch so the reranker can promote the anchor law without
	// losing slots.
	logger.Debug("Step 2: vector search for %d candidates", topK+rerankOverfetch)
	candidates, err := s.searchIndex(ctx, embedding, topK+rerankOverfetch)
	if err != nil {
		logger.Error("Vector search failed: %v", err)
		return s.errorResult(fmt.Errorf("%w: %v", domain.ErrRetrieval, err), start)
	}

	if len(candidates) == 0 {
		logger.Warn("No relevant laws found for query")
		return domain.QueryResult{
			Answer:         domain.MsgNoResults,
			Documents:      []domain.LawDocument{},
			Confidence:     0.0,
			ResponseTimeMs: elapsedMs(start),
			Failure:        domain.FailureNoResults,
		}
	}

	logger.Debug("Step 2b: reranking %d candidates", len(candidates))
	docs := Rerank(candidates, s.cfg.AnchorLawID, topK)
	logger.Info("Final context: %d law(s): %s", len(docs), titles(docs))

	logger.Debug("Step 3: generating answer")
	return s.answer(ctx, query, docs, start)
}

// QueryLaw answers against a single law looked up by id.
func (s *RetrievalService) QueryLaw(ctx context.Context, query, lawID string) domain.QueryResult {
	logger.Section("Single-Law Query")
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return domain.QueryResult{
			Answer:         domain.MsgEmptyQuery,
			Documents:      []domain.LawDocument{},
			Confidence:     0.0,
			ResponseTimeMs: elapsedMs(start),
			Failure:        domain.FailureValidation,
		}
	}

	if s.index == nil || s.generator == nil {
		return s.errorResult(domain.ErrRetrieval, start)
	}

	doc, err := s.index.GetByID(ctx, lawID)
	if err != nil || doc == nil {
		logger.Warn("Law %s not found", lawID)
		return domain.QueryResult{
			Answer:         fmt.Sprintf("Ley %s no encontrada en la base de datos", lawID),
			Documents:      []domain.LawDocument{},
			Confidence:     0.0,
			ResponseTimeMs: elapsedMs(start),
			Failure:        domain.FailureNoResults,
		}
	}

	return s.answer(ctx, query, []domain.LawDocument{*doc}, start)
}

// answer builds the model context and generates the final result.
func (s *RetrievalService) answer(
	ctx context.Context, query string, docs []domain.LawDocument, start time.Time,
) domain.QueryResult {
	// A single-document context is eligible for the server-side cache.
	if s.cache != nil && len(docs) == 1 {
		if result, ok := s.answerFromCache(ctx, query, docs[0], start); ok {
			return result
		}
	}

	contextText, used, err := s.buildContext(docs)
	if err != nil {
		logger.Error("Context build failed: %v", err)
		return s.errorResult(err, start)
	}

	system := loadPrompt(s.prompts, driven.PromptSystem)
	task := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptTask), query, contextText)

	answer, err := s.generate(ctx, driven.GenerateRequest{System: system, Prompt: task})
	if err != nil {
		logger.Error("Answer generation failed: %v", err)
		return s.errorResult(fmt.Errorf("%w: %v", domain.ErrGeneration, err), start)
	}

	return domain.QueryResult{
		Answer:         linkifyCitations(answer, used),
		Documents:      used,
		Confidence:     1.0,
		ResponseTimeMs: elapsedMs(start),
	}
}

// answerFromCache tries the cached-context path for a single law.
// Cache bookkeeping failures fail open to the inline path (ok=false);
// a generation failure against a live cache session is final.
func (s *RetrievalService) answerFromCache(
	ctx context.Context, query string, doc domain.LawDocument, start time.Time,
) (domain.QueryResult, bool) {
	session, reused, err := s.cache.GetOrCreate(ctx, doc)
	if err != nil {
		logger.Warn("Context cache unavailable for %s: %v (falling back to inline context)", doc.ID, err)
		return domain.QueryResult{}, false
	}
	logger.Info("Context cache for %s: reused=%t id=%s", doc.ID, reused, session.CacheID)

	answer, err := s.cache.Generate(ctx, session, query)
	if err != nil {
		logger.Error("Cached-context generation failed: %v", err)
		return s.errorResult(fmt.Errorf("%w: %v", domain.ErrGeneration, err), start), true
	}

	docs := []domain.LawDocument{doc}
	return domain.QueryResult{
		Answer:         linkifyCitations(answer, docs),
		Documents:      docs,
		Confidence:     1.0,
		ResponseTimeMs: elapsedMs(start),
		CacheUsed:      reused,
		CacheID:        session.CacheID,
	}, true
}

// buildContext reads every document's processed content and formats the
// context block. Documents whose file is missing are skipped and
// logged; if none remain the context is unavailable.
func (s *RetrievalService) buildContext(docs []domain.LawDocument) (string, []domain.LawDocument, error) {
	if s.reader == nil {
		return "", nil, domain.ErrContextUnavailable
	}

	parts := make([]string, 0, len(docs))
	used := make([]domain.LawDocument, 0, len(docs))
	for _, doc := range docs {
		if doc.FilePath == "" {
			logger.Warn("Document %s has no processed file, skipping", doc.ID)
			continue
		}
		text, err := s.reader.Read(doc.FilePath)
		if err != nil {
			logger.Warn("Could not read %s (%s): %v, skipping", doc.ID, doc.FilePath, err)
			continue
		}
		parts = append(parts, buildContextBlock(doc, text))
		used = append(used, doc)
	}

	if len(parts) == 0 {
		return "", nil, domain.ErrContextUnavailable
	}
	return strings.Join(parts, "\n\n"), used, nil
}

func (s *RetrievalService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.embedder.Embed(ctx, query)
}

func (s *RetrievalService) searchIndex(ctx context.Context, embedding []float32, k int) ([]domain.LawDocument, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.index.Search(ctx, embedding, k)
}

func (s *RetrievalService) generate(ctx context.Context, req driven.GenerateRequest) (string, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.generator.Generate(ctx, req)
}

// callContext bounds one external call with the configured timeout.
func (s *RetrievalService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.RequestTimeout)
}

// errorResult converts an internal failure into the uniform degraded
// QueryResult. The caller boundary never sees a raised error.
func (s *RetrievalService) errorResult(err error, start time.Time) domain.QueryResult {
	return domain.QueryResult{
		Answer:         domain.MsgQueryErrorPrefix + err.Error(),
		Documents:      []domain.LawDocument{},
		Confidence:     0.0,
		ResponseTimeMs: elapsedMs(start),
		Failure:        domain.ClassifyFailure(err),
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

func titles(docs []domain.LawDocument) string {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Titulo
	}
	return strings.Join(names, ", ")
}
