package rag_test

import (
	"context"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/internal/rag/generator"
)

// MockChunks implements vectorDB.ChunkRepository
type MockChunks struct {
	OnSearch func(ctx context.Context, startupId string, vector []float32, minSimilarity float64, limit int) ([]commonModels.RetrievedChunk, error)
}

func (m *MockChunks) ReplaceDocumentChunks(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk) error {
	return nil
}

func (m *MockChunks) DeleteDocumentChunks(ctx context.Context, startupId string, documentId string) error {
	return nil
}

func (m *MockChunks) Search(ctx context.Context, startupId string, vector []float32, minSimilarity float64, limit int) ([]commonModels.RetrievedChunk, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, startupId, vector, minSimilarity, limit)
	}
	return []commonModels.RetrievedChunk{}, nil
}

type MockEmbedder struct {
	OnEmbedQuery func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbedQuery != nil {
		return m.OnEmbedQuery(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

// MockGenerator implements rag.AnswerGenerator
type MockGenerator struct {
	OnGenerateAnswer   func(ctx context.Context, req generator.AnswerRequest) (string, error)
	OnGenerateFollowUp func(ctx context.Context, req generator.FollowUpRequest) (generator.FollowUpEmail, error)
}

func (m *MockGenerator) GenerateAnswer(ctx context.Context, req generator.AnswerRequest) (string, error) {
	if m.OnGenerateAnswer != nil {
		return m.OnGenerateAnswer(ctx, req)
	}
	return "mocked answer", nil
}

func (m *MockGenerator) GenerateFollowUpEmail(ctx context.Context, req generator.FollowUpRequest) (generator.FollowUpEmail, error) {
	if m.OnGenerateFollowUp != nil {
		return m.OnGenerateFollowUp(ctx, req)
	}
	return generator.FollowUpEmail{Subject: "Following up", Body: "Hello"}, nil
}

type MockWorkflow struct {
	OnRun func(ctx context.Context, job jobModel.Job) (jobModel.Job, error)
}

func (m *MockWorkflow) Run(ctx context.Context, job jobModel.Job) (jobModel.Job, error) {
	if m.OnRun != nil {
		return m.OnRun(ctx, job)
	}
	return job, nil
}
