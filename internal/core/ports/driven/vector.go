package driven

import (
	"context"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
)

// VectorIndex stores one embedding per law document together with its
// metadata and supports similarity search and point lookup.
// The index exclusively owns persisted LawDocument records.
type VectorIndex interface {
	// Save stores a document with its embedding. Saving an existing ID
	// replaces the previous record.
	Save(ctx context.Context, doc domain.LawDocument, embedding []float32) error

	// Search returns the topK most similar documents, best first.
	Search(ctx context.Context, embedding []float32, topK int) ([]domain.LawDocument, error)

	// GetByID retrieves one document. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*domain.LawDocument, error)

	// Delete removes a document. Returns false if it was not present.
	Delete(ctx context.Context, id string) (bool, error)

	// ListIDs returns the ids of all stored documents.
	ListIDs(ctx context.Context) ([]string, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
