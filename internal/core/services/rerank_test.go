package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
)

const anchorID = "ley_24714"

func laws(ids ...string) []domain.LawDocument {
	docs := make([]domain.LawDocument, len(ids))
	for i, id := range ids {
		docs[i] = domain.LawDocument{ID: id, Titulo: "Ley " + id}
	}
	return docs
}

func ids(docs []domain.LawDocument) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestRerank_PromotesAnchorToFront(t *testing.T) {
	candidates := laws("ley_24013", "ley_24714", "ley_19587")

	result := Rerank(candidates, anchorID, 3)

	assert.Equal(t, []string{"ley_24714", "ley_24013", "ley_19587"}, ids(result))
}

func TestRerank_AnchorAlreadyFirst(t *testing.T) {
	candidates := laws("ley_24714", "ley_24013", "ley_19587")

	result := Rerank(candidates, anchorID, 3)

	assert.Equal(t, []string{"ley_24714", "ley_24013", "ley_19587"}, ids(result))
}

func TestRerank_AnchorLast_PreservesRelativeOrderOfOthers(t *testing.T) {
	candidates := laws("ley_24013", "ley_19587", "ley_26425", "ley_24714")

	result := Rerank(candidates, anchorID, 4)

	assert.Equal(t, []string{"ley_24714", "ley_24013", "ley_19587", "ley_26425"}, ids(result))
}

func TestRerank_AnchorAbsent_IsIdentityUpToTruncation(t *testing.T) {
	candidates := laws("ley_24013", "ley_19587", "ley_26425")

	result := Rerank(candidates, anchorID, 2)

	assert.Equal(t, []string{"ley_24013", "ley_19587"}, ids(result))
}

func TestRerank_PromotionKeepsAnchorWithinTopK(t *testing.T) {
	// The anchor sits past the topK cut; promotion must not lose it.
	candidates := laws("ley_24013", "ley_19587", "ley_26425", "ley_20744", "ley_24714")

	result := Rerank(candidates, anchorID, 3)

	require.Len(t, result, 3)
	assert.Equal(t, "ley_24714", result[0].ID)
	assert.Equal(t, []string{"ley_24714", "ley_24013", "ley_19587"}, ids(result))
}

func TestRerank_TruncatesToTopK(t *testing.T) {
	candidates := laws("ley_24013", "ley_19587", "ley_26425")

	for topK := 0; topK <= 5; topK++ {
		result := Rerank(candidates, anchorID, topK)
		expected := topK
		if expected > len(candidates) {
			expected = len(candidates)
		}
		assert.Len(t, result, expected, "topK=%d", topK)
	}
}

func TestRerank_EmptyCandidates(t *testing.T) {
	assert.Empty(t, Rerank(nil, anchorID, 3))
}

func TestRerank_NoAnchorConfigured(t *testing.T) {
	candidates := laws("ley_24013", "ley_24714")

	result := Rerank(candidates, "", 2)

	assert.Equal(t, []string{"ley_24013", "ley_24714"}, ids(result))
}

func TestRerank_DoesNotMutateInput(t *testing.T) {
	candidates := laws("ley_24013", "ley_24714", "ley_19587")

	Rerank(candidates, anchorID, 3)

	assert.Equal(t, []string{"ley_24013", "ley_24714", "ley_19587"}, ids(candidates))
}
