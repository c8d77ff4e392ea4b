package services

import (
	"context"
	"os"

	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driving"
	"github.com/leyrag-labs/leyrag/internal/logger"
)

// Ensure RemovalService implements the interface.
var _ driving.RemovalService = (*RemovalService)(nil)

// RemovalService deletes laws from the vector index together with
// their processed markdown files.
type RemovalService struct {
	index driven.VectorIndex
}

// NewRemovalService creates a removal service.
func NewRemovalService(index driven.VectorIndex) *RemovalService {
	return &RemovalService{index: index}
}

// Remove deletes one document and its processed file.
// Returns false if the document was not present or deletion failed.
func (s *RemovalService) Remove(ctx context.Context, lawID string) bool {
	logger.Info("Removing document %s", lawID)

	// Fetch before deleting to learn the processed file path.
	doc, err := s.index.GetByID(ctx, lawID)
	if err != nil {
		logger.Warn("Document %s not found: %v", lawID, err)
	}

	deleted, err := s.index.Delete(ctx, lawID)
	if err != nil {
		logger.Error("Error deleting %s: %v", lawID, err)
		return false
	}
	if !deleted {
		logger.Warn("Document %s was not in the index", lawID)
		return false
	}

	if doc != nil && doc.FilePath != "" {
		s.deleteFile(doc.FilePath)
	}
	logger.Info("Removed document %s", lawID)
	return true
}

// RemoveAll deletes every document and its processed file, returning
// the number of documents removed.
func (s *RemovalService) RemoveAll(ctx context.Context) (int, error) {
	logger.Section("Reset")

	ids, err := s.index.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info("Found %d documents to remove", len(ids))

	removed := 0
	for _, id := range ids {
		doc, err := s.index.GetByID(ctx, id)
		if err != nil {
			logger.Warn("Could not load %s before delete: %v", id, err)
		}

		deleted, err := s.index.Delete(ctx, id)
		if err != nil {
			logger.Error("Error deleting %s: %v", id, err)
			continue
		}
		if deleted {
			removed++
			if doc != nil && doc.FilePath != "" {
				s.deleteFile(doc.FilePath)
			}
		}
	}

	if remaining, err := s.index.Count(ctx); err == nil && remaining != 0 {
		logger.Warn("Some documents may remain: %d still in the index", remaining)
	}
	logger.Info("Removed %d documents", removed)
	return removed, nil
}

// ListIDs returns all document ids in the index.
func (s *RemovalService) ListIDs(ctx context.Context) []string {
	ids, err := s.index.ListIDs(ctx)
	if err != nil {
		logger.Error("Error listing documents: %v", err)
		return nil
	}
	return ids
}

// Count returns the number of indexed documents.
func (s *RemovalService) Count(ctx context.Context) int {
	count, err := s.index.Count(ctx)
	if err != nil {
		logger.Error("Error counting documents: %v", err)
		return 0
	}
	return count
}

func (s *RemovalService) deleteFile(path string) {
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Could not delete file %s: %v", path, err)
		}
		return
	}
	logger.Debug("Deleted file %s", path)
}
