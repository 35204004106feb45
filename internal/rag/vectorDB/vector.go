package vectorDB

import (
	"context"
	"sort"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
)

// ChunkRepository stores chunk embeddings and answers similarity queries.
// Every call is scoped to one startup.
type ChunkRepository interface {
	// ReplaceDocumentChunks drops any existing chunks of doc and stores chunks in their given order.
	ReplaceDocumentChunks(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk) error
	DeleteDocumentChunks(ctx context.Context, startupId string, documentId string) error
	Search(ctx context.Context, startupId string, vector []float32, minSimilarity float64, limit int) ([]commonModels.RetrievedChunk, error)
}

// FilterRanked keeps hits at or above minSimilarity, sorted by descending
// similarity and capped at limit.
func FilterRanked(hits []commonModels.RetrievedChunk, minSimilarity float64, limit int) []commonModels.RetrievedChunk {
	out := make([]commonModels.RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		if h.SimilarityScore >= minSimilarity {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SimilarityScore > out[j].SimilarityScore })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
