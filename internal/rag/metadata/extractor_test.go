package metadata

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/rag/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLLM struct {
	OnGenerate func(ctx context.Context, req llm.Request) (string, error)
}

func (m *mockLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	return m.OnGenerate(ctx, req)
}

func TestExtractMetadata_ParsesFencedJSON(t *testing.T) {
	mock := &mockLLM{OnGenerate: func(_ context.Context, req llm.Request) (string, error) {
		assert.True(t, req.JSON)
		return "```json\n{\"company_name\":\"Acme Agritech\",\"sector\":\"agritech\",\"key_achievements\":[\"10k farmers\"],\"traction\":\"\"}\n```", nil
	}}

	meta := NewExtractor(mock).ExtractMetadata(context.Background(), "Acme Agritech builds pumps.")

	require.NotNil(t, meta.CompanyName)
	assert.Equal(t, "Acme Agritech", *meta.CompanyName)
	assert.Equal(t, []string{"10k farmers"}, meta.KeyAchievements)
	assert.Nil(t, meta.Traction, "blank strings are treated as unknown")
	assert.Nil(t, meta.FundingRaised)
}

func TestExtractMetadata_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"provider error", "", errors.New("timeout")},
		{"prose reply", "I could not find anything useful.", nil},
		{"truncated json", `{"company_name": "Acme"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockLLM{OnGenerate: func(context.Context, llm.Request) (string, error) { return tt.reply, tt.err }}

			meta := NewExtractor(mock).ExtractMetadata(context.Background(), "some text")

			assert.Equal(t, commonModels.EmptyMetadata(), meta)
		})
	}
}

func TestExtractMetadata_TruncatesInput(t *testing.T) {
	var sent string
	mock := &mockLLM{OnGenerate: func(_ context.Context, req llm.Request) (string, error) {
		sent = req.User
		return `{}`, nil
	}}

	NewExtractor(mock).ExtractMetadata(context.Background(), strings.Repeat("é", 20000))

	assert.Equal(t, 15000, strings.Count(sent, "é"))
	assert.True(t, utf8.ValidString(sent))
}

func TestExtractMetadata_EmptyTextSkipsProvider(t *testing.T) {
	mock := &mockLLM{OnGenerate: func(context.Context, llm.Request) (string, error) {
		t.Fatal("provider must not be called for empty text")
		return "", nil
	}}
	assert.Equal(t, commonModels.EmptyMetadata(), NewExtractor(mock).ExtractMetadata(context.Background(), "  "))
}
