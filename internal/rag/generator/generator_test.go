package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/rag/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLLM struct {
	OnGenerate func(ctx context.Context, req llm.Request) (string, error)
	last       llm.Request
}

func (m *mockLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.last = req
	return m.OnGenerate(ctx, req)
}

func reply(s string) func(context.Context, llm.Request) (string, error) {
	return func(context.Context, llm.Request) (string, error) { return s, nil }
}

func TestGenerateAnswer_LabelsContext(t *testing.T) {
	mock := &mockLLM{OnGenerate: reply("We serve 10,000 farmers.")}
	g := NewGenerator(mock)

	answer, err := g.GenerateAnswer(context.Background(), AnswerRequest{
		Question:    "What is your traction?",
		StartupName: "Acme Agritech",
		Context: []commonModels.RetrievedChunk{
			{DocumentName: "deck.pdf", ChunkContent: "10,000 farmers onboarded", SimilarityScore: 0.8},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "We serve 10,000 farmers.", answer)
	assert.Contains(t, mock.last.User, "[From deck.pdf]: 10,000 farmers onboarded")
	assert.Contains(t, mock.last.User, "Acme Agritech")
	assert.Contains(t, mock.last.User, "professional tone")
	assert.Contains(t, mock.last.User, "under 500 words")
	assert.Contains(t, mock.last.System, "meta-commentary")
}

func TestGenerateAnswer_NamesGrant(t *testing.T) {
	mock := &mockLLM{OnGenerate: reply("We fit the seed fund.")}
	g := NewGenerator(mock)

	_, err := g.GenerateAnswer(context.Background(), AnswerRequest{Question: "Why us?", GrantName: "Startup India Seed Fund"})
	require.NoError(t, err)
	assert.Contains(t, mock.last.User, "Grant: Startup India Seed Fund\n")

	_, err = g.GenerateAnswer(context.Background(), AnswerRequest{Question: "Why us?"})
	require.NoError(t, err)
	assert.NotContains(t, mock.last.User, "Grant:")
}

func TestGenerateAnswer_NoContextUsesStartupName(t *testing.T) {
	mock := &mockLLM{OnGenerate: reply("Acme Agritech is building affordable irrigation.")}

	answer, err := NewGenerator(mock).GenerateAnswer(context.Background(), AnswerRequest{
		Question:    "What is your traction?",
		StartupName: "Acme Agritech",
		Tone:        "enthusiastic",
		MaxLength:   150,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.Contains(t, mock.last.User, "No document excerpts are available")
	assert.Contains(t, mock.last.User, "Acme Agritech")
	assert.Contains(t, mock.last.User, "enthusiastic tone")
	assert.NotContains(t, mock.last.User, "[From")
}

func TestGenerateAnswer_Failures(t *testing.T) {
	blank := &mockLLM{OnGenerate: reply("   ")}
	_, err := NewGenerator(blank).GenerateAnswer(context.Background(), AnswerRequest{Question: "q"})
	assert.ErrorIs(t, err, commonModels.ErrGenerationFailed)

	failing := &mockLLM{OnGenerate: func(context.Context, llm.Request) (string, error) {
		return "", errors.Join(commonModels.ErrGenerationFailed, errors.New("upstream"))
	}}
	_, err = NewGenerator(failing).GenerateAnswer(context.Background(), AnswerRequest{Question: "q"})
	assert.ErrorIs(t, err, commonModels.ErrGenerationFailed)
}

func TestGenerateAnswer_TrimsContextToBudget(t *testing.T) {
	mock := &mockLLM{OnGenerate: reply("ok")}
	g := NewGenerator(mock)
	g.contextTokens = 50

	chunks := []commonModels.RetrievedChunk{
		{DocumentName: "a.txt", ChunkContent: strings.Repeat("alpha ", 30)},
		{DocumentName: "b.txt", ChunkContent: strings.Repeat("beta ", 30)},
	}
	_, err := g.GenerateAnswer(context.Background(), AnswerRequest{Question: "q", Context: chunks})

	require.NoError(t, err)
	assert.Contains(t, mock.last.User, "[From a.txt]")
	assert.NotContains(t, mock.last.User, "[From b.txt]")
}

func TestGenerateFollowUpEmail(t *testing.T) {
	mock := &mockLLM{OnGenerate: reply("```json\n{\"subject\":\"Following up on Startup India Seed Fund\",\"body\":\"Dear Program Officer, ...\"}\n```")}

	email, err := NewGenerator(mock).GenerateFollowUpEmail(context.Background(), FollowUpRequest{
		GrantName:    "Startup India Seed Fund",
		StartupName:  "Acme Agritech",
		Achievements: []string{"10k farmers", "Pilot with state govt"},
		SenderName:   "Priya",
	})

	require.NoError(t, err)
	assert.Equal(t, "Following up on Startup India Seed Fund", email.Subject)
	assert.True(t, mock.last.JSON)
	assert.Contains(t, mock.last.User, "- Pilot with state govt")
	assert.Contains(t, mock.last.User, "Recipient: Program Officer")
}

func TestGenerateFollowUpEmail_InvalidJSON(t *testing.T) {
	for _, r := range []string{"Dear officer, thanks!", `{"subject": "only subject"}`} {
		_, err := NewGenerator(&mockLLM{OnGenerate: reply(r)}).GenerateFollowUpEmail(context.Background(), FollowUpRequest{GrantName: "g"})
		assert.ErrorIs(t, err, commonModels.ErrGenerationFailed, r)
	}
}
