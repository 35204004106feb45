package googleEmbedding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger = logger_i.NewLogger("google_embedding")

type Client struct {
	genAi     *genai.Client
	model     string
	dimension int32
}

func NewGoogleEmbedder(ctx context.Context, modelName string, apiKey string, dimension int) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("GOOGLE_API_KEY is not set")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Embedding client created", "model", modelName)
	return &Client{genAi: c, model: modelName, dimension: int32(dimension)}, nil
}

func (c *Client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	res, err := c.doCall(ctx, genai.Text(query), "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, errors.New("google returned no embedding")
	}
	return res.Embeddings[0].Values, nil
}

// BatchEmbedding sends the chunks in one request. A rate-limited call is retried once after a delay.
func (c *Client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.FromContext(ctx)
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}

	res, err := c.doCall(ctx, getContent(chunks), "RETRIEVAL_DOCUMENT")
	if err != nil && doRetry(err, log) {
		log.Debug("Retrying after rate limit", "delay", config.EmbeddingRetryDelay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(config.EmbeddingRetryDelay):
		}
		res, err = c.doCall(ctx, getContent(chunks), "RETRIEVAL_DOCUMENT")
	}
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, err
	}

	results := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		if r == nil {
			return nil, errors.New("google returned an empty embedding in batch")
		}
		results = append(results, r.Values)
	}
	return results, nil
}

func (c *Client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             taskType,
	})
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

func doRetry(err error, log *logger_i.Logger) bool {
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		log.Warn("Rate limit hit", "error", err)
		return true
	}
	msg := err.Error()
	if strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "429") {
		log.Warn("Rate limit hit", "error", err)
		return true
	}
	return false
}
