package rag

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/internal/rag/generator"
	"github.com/akolanti/GrantAgent/internal/rag/ingest"
)

func (s *service) jobError(ctx context.Context, job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.FromContext(ctx).Error(message, "jobId", job.Id, "step", job.CurrentStep, "error", err)

	job.Error = jobModel.JobError{
		Code:    errorCode(err),
		Message: ingest.FailureMessage(err),
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, commonModels.ErrUnsupportedFileType), errors.Is(err, commonModels.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, commonModels.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, commonModels.ErrEmbeddingService), errors.Is(err, commonModels.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *service) executeEmbeddingStep(ctx context.Context, question string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("query_embedding", time.Since(start)) }()
	return s.embedder.EmbedQuery(ctx, question)
}

func (s *service) executeVectorSearchStep(ctx context.Context, startupId string, vector []float32, minSimilarity float64, topK int) ([]commonModels.RetrievedChunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()
	return s.chunks.Search(ctx, startupId, vector, minSimilarity, topK)
}

func (s *service) executeGenerationStep(ctx context.Context, req generator.AnswerRequest) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("answer_generation", time.Since(start)) }()
	return s.generator.GenerateAnswer(ctx, req)
}

// sourceNames lists each cited document once, in ranking order.
func sourceNames(hits []commonModels.RetrievedChunk) []string {
	seen := make(map[string]bool, len(hits))
	names := []string{}
	for _, h := range hits {
		if seen[h.DocumentName] {
			continue
		}
		seen[h.DocumentName] = true
		names = append(names, h.DocumentName)
	}
	return names
}
