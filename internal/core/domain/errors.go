package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuery indicates an empty or malformed user query.
	// It is a client error, never a system fault.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrRetrieval indicates the embedding or vector search step failed.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrContextUnavailable indicates none of the candidate documents
	// had readable processed content.
	ErrContextUnavailable = errors.New("context unavailable")

	// ErrCache indicates a context cache operation failed.
	// Cache failures degrade to a cache miss and never abort generation.
	ErrCache = errors.New("cache error")

	// ErrGeneration indicates the language model call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrGeneratorUnavailable indicates the answer generator is not configured.
	ErrGeneratorUnavailable = errors.New("answer generator unavailable")
)

// FailureKind classifies why a query degraded to an error result.
// It is carried on QueryResult so the serving boundary can render a
// uniform contract without inspecting wrapped errors.
type FailureKind string

// Failure kinds mirror the error taxonomy above.
const (
	FailureNone               FailureKind = ""
	FailureValidation         FailureKind = "validation"
	FailureRetrieval          FailureKind = "retrieval"
	FailureNoResults          FailureKind = "no_results"
	FailureContextUnavailable FailureKind = "context_unavailable"
	FailureGeneration         FailureKind = "generation"
	FailureInternal           FailureKind = "internal"
)

// ClassifyFailure maps a pipeline error to its failure kind.
func ClassifyFailure(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrInvalidQuery):
		return FailureValidation
	case errors.Is(err, ErrContextUnavailable):
		return FailureContextUnavailable
	case errors.Is(err, ErrGeneration):
		return FailureGeneration
	case errors.Is(err, ErrRetrieval), errors.Is(err, ErrEmbeddingUnavailable),
		errors.Is(err, ErrVectorIndexUnavailable):
		return FailureRetrieval
	default:
		return FailureInternal
	}
}
