package openaiLLM

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/rag/llm"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

var logger = logger_i.NewLogger("llm_openai")

type Client struct {
	client      openai.Client
	model       string
	timeout     time.Duration
	baseBackoff time.Duration
}

func NewOpenAIClient(apiKey string, baseURL string, model string, httpClient *http.Client) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	logger.Info("OpenAI chat client created", "model", model)
	return &Client{
		client:      openai.NewClient(opts...),
		model:       model,
		timeout:     config.LLMConnectionTimeout,
		baseBackoff: config.LLMBaseBackoff,
	}, nil
}

// Generate runs one chat completion, backing off on 429 responses.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= config.LLMMaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.baseBackoff
			if backoff > config.LLMMaxBackoff {
				backoff = config.LLMMaxBackoff
			}
			log.Warn("Rate limited, backing off", "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %w", commonModels.ErrGenerationFailed, ctx.Err())
			case <-time.After(backoff):
			}
		}

		completion, err := c.client.Chat.Completions.New(ctx, c.params(req))
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				continue
			}
			return "", fmt.Errorf("%w: openai call failed: %w", commonModels.ErrGenerationFailed, err)
		}

		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("%w: no completion choices returned", commonModels.ErrGenerationFailed)
		}
		content := strings.TrimSpace(completion.Choices[0].Message.Content)
		if content == "" {
			return "", fmt.Errorf("%w: empty completion", commonModels.ErrGenerationFailed)
		}
		log.Debug("Completion received", "tokens", completion.Usage.TotalTokens)
		return content, nil
	}

	return "", fmt.Errorf("%w: max retries exceeded: %v", commonModels.ErrGenerationFailed, lastErr)
}

func (c *Client) params(req llm.Request) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		}
	}
	return params
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
