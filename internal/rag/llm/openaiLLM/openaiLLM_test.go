package openaiLLM

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/rag/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [%s],
	"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewOpenAIClient("test-key", srv.URL+"/", "gpt-4o-mini", srv.Client())
	require.NoError(t, err)
	c.baseBackoff = time.Millisecond
	return c
}

func writeCompletion(w http.ResponseWriter, choices string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(strings.Replace(completionBody, "%s", choices, 1)))
}

func TestGenerate_SendsSystemAndJSONMode(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeCompletion(w, `{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" {\"subject\":\"s\"} "}}`)
	})

	out, err := c.Generate(t.Context(), llm.Request{System: "sys", User: "hi", JSON: true, Temperature: 0.1})

	require.NoError(t, err)
	assert.Equal(t, `{"subject":"s"}`, out)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "json_object", body["response_format"].(map[string]any)["type"])
}

func TestGenerate_EmptyChoicesIsGenerationFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, ``)
	})

	_, err := c.Generate(t.Context(), llm.Request{User: "hi"})

	assert.ErrorIs(t, err, commonModels.ErrGenerationFailed)
}

func TestGenerate_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit","code":"rate_limit_exceeded"}}`))
			return
		}
		writeCompletion(w, `{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"answer"}}`)
	})

	out, err := c.Generate(t.Context(), llm.Request{User: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, int32(2), calls.Load())
}
