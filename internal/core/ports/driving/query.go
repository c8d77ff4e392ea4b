package driving

import (
	"context"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
)

// QueryService answers natural-language legal questions.
//
// Both operations uphold the "always return a result" contract: every
// failure mode degrades to a well-formed QueryResult with Confidence 0
// and a localized Answer, so the serving boundary has one uniform
// contract to render.
type QueryService interface {
	// Query retrieves the topK most relevant laws and generates a
	// grounded answer.
	Query(ctx context.Context, query string, topK int) domain.QueryResult

	// QueryLaw answers against a single law looked up by id, without
	// retrieval or reranking.
	QueryLaw(ctx context.Context, query, lawID string) domain.QueryResult
}
