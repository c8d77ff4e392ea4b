package driving

import (
	"context"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
)

// LawConfig is one entry of the laws configuration file.
type LawConfig struct {
	Numero      string `json:"numero"`
	Nombre      string `json:"nombre"`
	URL         string `json:"url"`
	Año         int    `json:"año,omitempty"`
	Categoria   string `json:"categoria,omitempty"`
	Descripcion string `json:"descripcion_breve,omitempty"`
}

// IngestionService loads laws into the vector index:
// source URL → processed markdown → embedding → index.
type IngestionService interface {
	// IngestLaw processes and indexes a single law.
	IngestLaw(ctx context.Context, cfg LawConfig) (*domain.LawDocument, error)

	// IngestFromConfig processes every law in the configuration file,
	// isolating per-law failures, and returns the successfully
	// ingested documents.
	IngestFromConfig(ctx context.Context, configPath string) ([]domain.LawDocument, error)
}

// RemovalService deletes laws from the vector index and their
// processed files from disk.
type RemovalService interface {
	// Remove deletes one document and its processed file.
	// Returns false if the document was not present.
	Remove(ctx context.Context, lawID string) bool

	// RemoveAll deletes every document and associated file, returning
	// the number of documents removed.
	RemoveAll(ctx context.Context) (int, error)

	// ListIDs returns all document ids in the index.
	ListIDs(ctx context.Context) []string

	// Count returns the number of indexed documents.
	Count(ctx context.Context) int
}
