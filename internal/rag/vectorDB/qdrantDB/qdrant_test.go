package qdrantDB

import (
	"testing"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPoints(t *testing.T) {
	doc := commonModels.Document{Id: "doc-1", StartupId: "startup-1", FileName: "deck.pdf"}
	chunks := []commonModels.DocChunk{
		{Id: "6f1c9c1e-3b0a-4a53-9a36-1f1d1f0f0a01", Content: "first", Embedding: []float32{0.1, 0.2}},
		{Content: "second", Embedding: []float32{0.3, 0.4}},
	}

	points := buildPoints(doc, chunks)

	require.Len(t, points, 2)
	assert.Equal(t, "6f1c9c1e-3b0a-4a53-9a36-1f1d1f0f0a01", points[0].Id.GetUuid())
	assert.NotEmpty(t, points[1].Id.GetUuid(), "missing chunk ids are generated")
	assert.Equal(t, "startup-1", points[1].Payload["startup_id"].GetStringValue())
	assert.Equal(t, "deck.pdf", points[0].Payload["doc_name"].GetStringValue())
	assert.Equal(t, int64(1), points[1].Payload["chunk_index"].GetIntegerValue())
}
