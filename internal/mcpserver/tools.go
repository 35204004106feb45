package mcpserver

import (
	"context"
	"errors"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/matching"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var errMissingArgument = errors.New("missing required argument")

type RetrieveInput struct {
	StartupId     string  `json:"startup_id" jsonschema:"the startup whose knowledge base is searched"`
	Question      string  `json:"question" jsonschema:"the question to find supporting passages for"`
	TopK          int     `json:"top_k,omitempty" jsonschema:"maximum number of passages (default 5)"`
	MinSimilarity *float64 `json:"min_similarity,omitempty" jsonschema:"minimum cosine similarity between 0 and 1 (default 0.6)"`
}

type Passage struct {
	Content      string  `json:"content"`
	DocumentId   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Similarity   float64 `json:"similarity"`
}

type RetrieveOutput struct {
	Passages []Passage `json:"passages"`
	Count    int       `json:"count"`
}

type MatchInput struct {
	StartupId string `json:"startup_id" jsonschema:"the startup profile to score"`
	GrantId   string `json:"grant_id" jsonschema:"the grant to score against"`
}

type MatchOutput struct {
	GrantName string   `json:"grant_name"`
	Score     int      `json:"score"`
	Reasons   []string `json:"reasons"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_knowledge",
		Description: "Find passages from a startup's uploaded documents relevant to a question",
	}, s.handleRetrieve)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "score_grant_match",
		Description: "Score how well a startup fits a grant's eligibility rules, from 0 to 100",
	}, s.handleMatch)
}

func (s *Server) handleRetrieve(ctx context.Context, _ *mcp.CallToolRequest, input RetrieveInput) (*mcp.CallToolResult, RetrieveOutput, error) {
	if input.StartupId == "" || input.Question == "" {
		return nil, RetrieveOutput{}, errMissingArgument
	}
	topK := input.TopK
	if topK <= 0 {
		topK = config.RetrievalTopK
	}
	minSimilarity := config.RetrievalMinSimilarity
	if input.MinSimilarity != nil {
		minSimilarity = *input.MinSimilarity
	}

	hits, err := s.retriever.Retrieve(ctx, input.StartupId, input.Question, topK, minSimilarity)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}
	out := RetrieveOutput{Passages: make([]Passage, len(hits)), Count: len(hits)}
	for i, h := range hits {
		out.Passages[i] = Passage{
			Content:      h.ChunkContent,
			DocumentId:   h.DocumentId,
			DocumentName: h.DocumentName,
			Similarity:   h.SimilarityScore,
		}
	}
	return nil, out, nil
}

func (s *Server) handleMatch(ctx context.Context, _ *mcp.CallToolRequest, input MatchInput) (*mcp.CallToolResult, MatchOutput, error) {
	if input.StartupId == "" || input.GrantId == "" {
		return nil, MatchOutput{}, errMissingArgument
	}
	startup, err := s.startups.Get(ctx, input.StartupId)
	if err != nil {
		return nil, MatchOutput{}, err
	}
	grant, err := s.grants.Get(ctx, input.GrantId)
	if err != nil {
		return nil, MatchOutput{}, err
	}
	match := matching.Score(startup, grant, s.now())
	return nil, MatchOutput{GrantName: grant.Name, Score: match.Score, Reasons: match.Reasons}, nil
}
