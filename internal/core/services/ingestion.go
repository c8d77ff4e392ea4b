package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driving"
	"github.com/leyrag-labs/leyrag/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// summaryMaxChars bounds the extracted document summary.
const summaryMaxChars = 500

// lawsConfigFile mirrors the laws configuration file layout.
type lawsConfigFile struct {
	Leyes []driving.LawConfig `json:"leyes"`
}

// IngestionService loads laws into the vector index:
// source URL → processed markdown → embedding → index.
type IngestionService struct {
	processor driven.DocumentProcessor
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(
	processor driven.DocumentProcessor,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
) *IngestionService {
	return &IngestionService{
		processor: processor,
		embedder:  embedder,
		index:     index,
	}
}

// IngestFromConfig processes every law in the configuration file.
// Per-law failures are logged and skipped so one broken source does not
// abort the batch.
func (s *IngestionService) IngestFromConfig(ctx context.Context, configPath string) ([]domain.LawDocument, error) {
	logger.Section("Ingestion")
	logger.Info("Loading configuration from %s", configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read laws config: %w", err)
	}

	var cfg lawsConfigFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse laws config: %w", err)
	}
	logger.Info("Found %d laws to process", len(cfg.Leyes))

	ingested := make([]domain.LawDocument, 0, len(cfg.Leyes))
	for _, law := range cfg.Leyes {
		doc, err := s.IngestLaw(ctx, law)
		if err != nil {
			logger.Error("Failed to ingest law %s: %v", law.Numero, err)
			continue
		}
		ingested = append(ingested, *doc)
		logger.Info("Ingested law %s", doc.ID)
	}

	logger.Info("Ingestion complete: %d/%d laws processed", len(ingested), len(cfg.Leyes))
	return ingested, nil
}

// IngestLaw processes and indexes a single law.
func (s *IngestionService) IngestLaw(ctx context.Context, cfg driving.LawConfig) (*domain.LawDocument, error) {
	lawID := "ley_" + cfg.Numero
	logger.Info("Processing law %s: %s", lawID, cfg.Nombre)

	filePath, markdown, err := s.processor.Process(ctx, cfg.URL, lawID)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", cfg.URL, err)
	}

	doc := domain.LawDocument{
		ID:       lawID,
		Titulo:   cfg.Nombre,
		URL:      cfg.URL,
		FilePath: filePath,
		Summary:  extractSummary(markdown, cfg.Nombre),
		Metadata: map[string]any{
			"numero":            cfg.Numero,
			"año":               cfg.Año,
			"categoria":         cfg.Categoria,
			"descripcion_breve": cfg.Descripcion,
		},
	}

	embedding, err := s.embedder.Embed(ctx, doc.SearchableText())
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", lawID, err)
	}

	if err := s.index.Save(ctx, doc, embedding); err != nil {
		return nil, fmt.Errorf("save %s: %w", lawID, err)
	}
	return &doc, nil
}

// extractSummary takes the first ~500 characters of body text, skipping
// blank lines and headings, with the title as fallback for very short
// documents.
func extractSummary(markdown, title string) string {
	var parts []string
	count := 0
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts = append(parts, line)
		count += len(line)
		if count >= summaryMaxChars {
			break
		}
	}

	summary := strings.Join(parts, " ")
	if len(summary) > summaryMaxChars {
		summary = summary[:summaryMaxChars]
	}
	if len(summary) < 50 {
		summary = "Texto completo de la " + title
	}
	return summary
}
