package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, query string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
	batchSizes       []int
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return m.OnGetEmbedding(ctx, query)
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	m.batchSizes = append(m.batchSizes, len(chunks))
	return m.OnBatchEmbedding(ctx, chunks)
}

// lengthVectors encodes each text's length so order can be checked.
func lengthVectors(_ context.Context, chunks []string) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = []float32{float32(len(c)), 1}
	}
	return out, nil
}

func TestEmbed_PreservesOrderAcrossBatches(t *testing.T) {
	mock := &mockEmbedder{OnBatchEmbedding: lengthVectors}
	m := NewManager(mock, 2)

	texts := make([]string, 45)
	for i := range texts {
		texts[i] = fmt.Sprintf("%0*d", i+1, 0)
	}

	vectors, err := m.Embed(context.Background(), texts)

	require.NoError(t, err)
	require.Len(t, vectors, 45)
	for i, v := range vectors {
		assert.Equal(t, float32(i+1), v[0], "vector %d out of place", i)
	}
	assert.Equal(t, []int{20, 20, 5}, mock.batchSizes)
}

func TestEmbed_EmptyInput(t *testing.T) {
	mock := &mockEmbedder{OnBatchEmbedding: lengthVectors}
	vectors, err := NewManager(mock, 2).Embed(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Empty(t, mock.batchSizes, "provider must not be called for empty input")
}

func TestEmbed_ProviderFailureIsEmbeddingServiceError(t *testing.T) {
	mock := &mockEmbedder{OnBatchEmbedding: func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("quota exceeded")
	}}

	_, err := NewManager(mock, 2).Embed(context.Background(), []string{"a"})

	assert.ErrorIs(t, err, commonModels.ErrEmbeddingService)
}

func TestEmbed_RejectsWrongDimensionAndCount(t *testing.T) {
	wrongDim := &mockEmbedder{OnBatchEmbedding: func(_ context.Context, c []string) ([][]float32, error) {
		return [][]float32{{1, 2, 3}}, nil
	}}
	_, err := NewManager(wrongDim, 2).Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, commonModels.ErrEmbeddingService)

	short := &mockEmbedder{OnBatchEmbedding: func(_ context.Context, c []string) ([][]float32, error) {
		return [][]float32{{1, 2}}, nil
	}}
	_, err = NewManager(short, 2).Embed(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, commonModels.ErrEmbeddingService)
}

func TestEmbedQuery(t *testing.T) {
	mock := &mockEmbedder{OnGetEmbedding: func(_ context.Context, q string) ([]float32, error) {
		if q == "fail" {
			return nil, errors.New("boom")
		}
		return []float32{0.1, 0.2}, nil
	}}
	m := NewManager(mock, 2)

	v, err := m.EmbedQuery(context.Background(), "What is your traction?")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, v)

	_, err = m.EmbedQuery(context.Background(), "fail")
	assert.ErrorIs(t, err, commonModels.ErrEmbeddingService)
}
