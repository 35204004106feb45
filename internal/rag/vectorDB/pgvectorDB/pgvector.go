package pgvectorDB

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/GrantAgent/internal/data/postgres"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/internal/rag/vectorDB"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type ChunkStore struct {
	pool *pgxpool.Pool
}

func NewChunkStore(pool *pgxpool.Pool) *ChunkStore {
	return &ChunkStore{pool: pool}
}

var _ vectorDB.ChunkRepository = (*ChunkStore)(nil)

func (s *ChunkStore) ReplaceDocumentChunks(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk) error {
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1::uuid AND startup_id = $2::uuid`,
			doc.Id, doc.StartupId); err != nil {
			return fmt.Errorf("%w: clear chunks: %w", commonModels.ErrPersistence, err)
		}
		if len(chunks) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i, c := range chunks {
			batch.Queue(`INSERT INTO document_chunks (document_id, startup_id, chunk_index, content, embedding)
				VALUES ($1::uuid, $2::uuid, $3, $4, $5)`,
				doc.Id, doc.StartupId, i, c.Content, pgvector.NewVector(c.Embedding))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("%w: insert chunks: %w", commonModels.ErrPersistence, err)
		}
		return nil
	})
}

func (s *ChunkStore) DeleteDocumentChunks(ctx context.Context, startupId string, documentId string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1::uuid AND startup_id = $2::uuid`,
		documentId, startupId)
	if err != nil {
		return fmt.Errorf("%w: delete chunks: %w", commonModels.ErrPersistence, err)
	}
	return nil
}

// Search ranks the startup's chunks by cosine similarity to vector.
func (s *ChunkStore) Search(ctx context.Context, startupId string, vector []float32, minSimilarity float64, limit int) ([]commonModels.RetrievedChunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	rows, err := s.pool.Query(ctx, `
		SELECT c.id::text, c.content, c.document_id::text, d.file_name,
			1 - (c.embedding <=> $2) AS similarity
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id AND d.startup_id = c.startup_id
		WHERE c.startup_id = $1::uuid AND 1 - (c.embedding <=> $2) >= $3
		ORDER BY c.embedding <=> $2
		LIMIT $4`,
		startupId, pgvector.NewVector(vector), minSimilarity, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity search: %w", commonModels.ErrPersistence, err)
	}
	defer rows.Close()

	hits := []commonModels.RetrievedChunk{}
	for rows.Next() {
		var h commonModels.RetrievedChunk
		if err := rows.Scan(&h.ChunkId, &h.ChunkContent, &h.DocumentId, &h.DocumentName, &h.SimilarityScore); err != nil {
			return nil, fmt.Errorf("%w: scan hit: %w", commonModels.ErrPersistence, err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: similarity search: %w", commonModels.ErrPersistence, err)
	}
	return hits, nil
}
