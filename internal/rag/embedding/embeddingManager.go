package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

// Embedder is one embedding provider. BatchEmbedding must return one vector per
// input in input order.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}

var logger = logger_i.NewLogger("Embedding")

// Manager batches requests to a provider and checks what comes back.
type Manager struct {
	provider  Embedder
	batchSize int
	dimension int
}

func NewManager(provider Embedder, dimension int) *Manager {
	return &Manager{
		provider:  provider,
		batchSize: config.EmbeddingBatchSize,
		dimension: dimension,
	}
}

func (m *Manager) Dimension() int {
	return m.dimension
}

// Embed converts texts into vectors positionally. An empty input gives an empty result.
func (m *Manager) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.FromContext(ctx)
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += m.batchSize {
		end := start + m.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		startTime := time.Now()
		out, err := m.provider.BatchEmbedding(ctx, batch)
		metrics.CaptureExecutionMetrics("embedding", time.Since(startTime))
		if err != nil {
			log.Error("Embedding batch failed", "batchStart", start, "batchSize", len(batch), "error", err)
			return nil, fmt.Errorf("%w: batch %d-%d: %w", commonModels.ErrEmbeddingService, start, end, err)
		}
		if len(out) != len(batch) {
			return nil, fmt.Errorf("%w: expected %d vectors, got %d", commonModels.ErrEmbeddingService, len(batch), len(out))
		}
		for i, v := range out {
			if err := m.checkDimension(v); err != nil {
				return nil, fmt.Errorf("vector %d: %w", start+i, err)
			}
		}
		vectors = append(vectors, out...)
	}

	log.Debug("Embedded texts", "count", len(vectors))
	return vectors, nil
}

// EmbedQuery embeds a single search query.
func (m *Manager) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	startTime := time.Now()
	v, err := m.provider.GetEmbedding(ctx, text)
	metrics.CaptureExecutionMetrics("embedding_query", time.Since(startTime))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", commonModels.ErrEmbeddingService, err)
	}
	if err := m.checkDimension(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (m *Manager) checkDimension(v []float32) error {
	if m.dimension > 0 && len(v) != m.dimension {
		return fmt.Errorf("%w: vector has %d dimensions, expected %d", commonModels.ErrEmbeddingService, len(v), m.dimension)
	}
	return nil
}
