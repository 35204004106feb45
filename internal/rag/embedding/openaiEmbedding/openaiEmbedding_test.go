package openaiEmbedding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchEmbedding_SortsByIndex(t *testing.T) {
	var gotInput []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/embeddings"), r.URL.Path)
		var body struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotInput = body.Input

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [
				{"object": "embedding", "index": 1, "embedding": [0.3, 0.4]},
				{"object": "embedding", "index": 0, "embedding": [0.1, 0.2]}
			],
			"usage": {"prompt_tokens": 4, "total_tokens": 4}
		}`))
	}))
	defer srv.Close()

	c, err := NewOpenAIEmbedder("test-key", srv.URL+"/", "text-embedding-3-small", 2, srv.Client())
	require.NoError(t, err)

	vectors, err := c.BatchEmbedding(t.Context(), []string{"first", "second"})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, gotInput)
	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, vectors)
}

func TestNewOpenAIEmbedder_RequiresKey(t *testing.T) {
	_, err := NewOpenAIEmbedder("", "", "m", 2, nil)
	assert.Error(t, err)
}
