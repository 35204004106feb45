package openaiEmbedding

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger = logger_i.NewLogger("openai_embedding")

type Client struct {
	client    openai.Client
	model     string
	dimension int
}

// NewOpenAIEmbedder builds an embedder; baseURL may be empty for the public API.
func NewOpenAIEmbedder(apiKey string, baseURL string, model string, dimension int, httpClient *http.Client) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	logger.Info("OpenAI embedding client created", "model", model, "dimension", dimension)
	return &Client{
		client:    openai.NewClient(opts...),
		model:     model,
		dimension: dimension,
	}, nil
}

func (c *Client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	out, err := c.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("openai returned no embedding")
	}
	return out[0], nil
}

func (c *Client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: chunks},
	}
	if c.dimension > 0 {
		params.Dimensions = openai.Int(int64(c.dimension))
	}

	resp, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		logger.FromContext(ctx).Error("OpenAI embedding call failed", "error", err)
		return nil, err
	}

	// the API tags each vector with its input position
	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float32, 0, len(data))
	for _, d := range data {
		v := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}
