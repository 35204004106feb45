package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("VECTOR_BACKEND", "")
	t.Setenv("PROCESSING_MODE", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("EMBEDDING_DIMENSION", "")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", s.LLMProvider)
	assert.Equal(t, "pgvector", s.VectorBackend)
	assert.Equal(t, "async", s.ProcessingMode)
	assert.Equal(t, "local", s.StorageBackend)
	assert.Equal(t, 1536, s.EmbeddingDimension)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GRANT_TEST_ONLY_KEY=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("GRANT_TEST_ONLY_KEY") })

	_, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-file", os.Getenv("GRANT_TEST_ONLY_KEY"))
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("VECTOR_BACKEND", "faiss")
	_, err := Load("")
	assert.Error(t, err)
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("GRANT_INT", "abc")
	assert.Equal(t, 7, getEnvAsInt("GRANT_INT", 7))
	t.Setenv("GRANT_INT", "12")
	assert.Equal(t, 12, getEnvAsInt("GRANT_INT", 7))
}

func TestLoadGrantSources_Default(t *testing.T) {
	sources, err := LoadGrantSources("")
	require.NoError(t, err)
	assert.Len(t, sources, 5)
	assert.Equal(t, "aggregator", sources[4].Type)
}

func TestParseGrantSources(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    string
	}{
		{name: "type defaults to government", input: "sources:\n  - name: a\n    url: https://a\n", want: "government"},
		{name: "empty list", input: "sources: []\n", wantErr: true},
		{name: "missing url", input: "sources:\n  - name: a\n", wantErr: true},
		{name: "bad yaml", input: "sources: [", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGrantSources([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got[0].Type)
		})
	}
}
