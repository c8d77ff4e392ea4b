package services

import (
	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/logger"
)

// Rerank applies the anchor-promotion policy to vector-search candidates
// and truncates to topK.
//
// One foundational legal text (the anchor) must open the generation
// context whenever it appears among the retrieved candidates, regardless
// of its raw similarity rank. All other candidates keep their original
// relative order; when the anchor is absent the input order is preserved
// unchanged. The function is pure and deterministic.
func Rerank(candidates []domain.LawDocument, anchorID string, topK int) []domain.LawDocument {
	if topK <= 0 {
		return []domain.LawDocument{}
	}

	reranked := candidates
	if anchorID != "" {
		anchorIdx := -1
		for i := range candidates {
			if candidates[i].ID == anchorID {
				anchorIdx = i
				break
			}
		}

		if anchorIdx >= 0 {
			reranked = make([]domain.LawDocument, 0, len(candidates))
			reranked = append(reranked, candidates[anchorIdx])
			reranked = append(reranked, candidates[:anchorIdx]...)
			reranked = append(reranked, candidates[anchorIdx+1:]...)
			logger.Info("Rerank: promoted %s to position 1", anchorID)
		} else {
			logger.Debug("Rerank: %s not in candidates, keeping original order", anchorID)
		}
	}

	if topK > len(reranked) {
		topK = len(reranked)
	}
	return reranked[:topK]
}
