package memory

import (
	"context"
	"math"
	"sync"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/rag/vectorDB"
)

type storedChunk struct {
	chunk        commonModels.DocChunk
	documentName string
}

// ChunkStore is a brute-force cosine index over chunks held in memory.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string][]storedChunk // by document id
}

func NewChunkStore() *ChunkStore {
	return &ChunkStore{chunks: make(map[string][]storedChunk)}
}

var _ vectorDB.ChunkRepository = (*ChunkStore)(nil)

func (s *ChunkStore) ReplaceDocumentChunks(_ context.Context, doc commonModels.Document, chunks []commonModels.DocChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]storedChunk, len(chunks))
	for i, c := range chunks {
		c.DocumentId, c.StartupId, c.ChunkIndex = doc.Id, doc.StartupId, i
		stored[i] = storedChunk{chunk: c, documentName: doc.FileName}
	}
	s.chunks[doc.Id] = stored
	return nil
}

func (s *ChunkStore) DeleteDocumentChunks(_ context.Context, startupId string, documentId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.chunks[documentId]
	if len(existing) > 0 && existing[0].chunk.StartupId != startupId {
		return nil
	}
	delete(s.chunks, documentId)
	return nil
}

// Count returns how many chunks a document has.
func (s *ChunkStore) Count(documentId string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[documentId])
}

func (s *ChunkStore) Search(_ context.Context, startupId string, vector []float32, minSimilarity float64, limit int) ([]commonModels.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var hits []commonModels.RetrievedChunk
	for _, doc := range s.chunks {
		for _, sc := range doc {
			if sc.chunk.StartupId != startupId {
				continue
			}
			hits = append(hits, commonModels.RetrievedChunk{
				ChunkId:         sc.chunk.Id,
				ChunkContent:    sc.chunk.Content,
				DocumentId:      sc.chunk.DocumentId,
				DocumentName:    sc.documentName,
				SimilarityScore: CosineSimilarity(vector, sc.chunk.Embedding),
			})
		}
	}
	return vectorDB.FilterRanked(hits, minSimilarity, limit), nil
}

func CosineSimilarity(a []float32, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
