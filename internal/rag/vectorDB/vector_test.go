package vectorDB

import (
	"testing"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
)

func TestFilterRanked(t *testing.T) {
	hits := []commonModels.RetrievedChunk{
		{ChunkId: "low", SimilarityScore: 0.59},
		{ChunkId: "mid", SimilarityScore: 0.7},
		{ChunkId: "edge", SimilarityScore: 0.6},
		{ChunkId: "top", SimilarityScore: 0.95},
	}

	got := FilterRanked(hits, 0.6, 2)

	assert.Len(t, got, 2)
	assert.Equal(t, "top", got[0].ChunkId)
	assert.Equal(t, "mid", got[1].ChunkId)

	all := FilterRanked(hits, 0.6, 10)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].SimilarityScore, all[i].SimilarityScore)
	}
	for _, h := range all {
		assert.NotEqual(t, "low", h.ChunkId)
	}
	assert.Empty(t, FilterRanked(hits, 0.99, 5))
}
