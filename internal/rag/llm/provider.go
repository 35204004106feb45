package llm

import "context"

// Request is one single-turn completion.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	// JSON asks the model for a JSON object response.
	JSON bool
}

type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}
