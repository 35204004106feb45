package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/rag/llm"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"google.golang.org/genai"
)

var logger = logger_i.NewLogger("llm_gemini")

type llmClient struct {
	client    *genai.Client
	modelName string
}

func NewGeminiClient(ctx context.Context, modelName string, apiKey string) (llm.Provider, error) {
	if apiKey == "" {
		return nil, errors.New("GOOGLE_API_KEY is not set")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName}, nil
}

func (c *llmClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.LLMConnectionTimeout)
	defer cancel()

	contentConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.System != "" {
		contentConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.MaxTokens > 0 {
		contentConfig.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSON {
		contentConfig.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(req.User), contentConfig)
	if err != nil {
		logger.FromContext(ctx).Error("Gemini call failed", "error", err, "elapsed", time.Since(start))
		return "", fmt.Errorf("%w: gemini call failed: %w", commonModels.ErrGenerationFailed, err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", commonModels.ErrGenerationFailed)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", commonModels.ErrGenerationFailed)
	}
	return text, nil
}
