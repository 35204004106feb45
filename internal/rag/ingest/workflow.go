package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/internal/rag/vectorDB"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/google/uuid"
)

type DocumentSource interface {
	Download(ctx context.Context, path string) ([]byte, error)
}

type MetadataExtractor interface {
	ExtractMetadata(ctx context.Context, text string) commonModels.DocumentMetadata
}

type ChunkEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Workflow turns one uploaded document into stored, embedded chunks.
// Each finished step's output is kept in the step store so a retried job resumes
// after the last step that succeeded.
type Workflow struct {
	documents commonModels.DocumentRepository
	source    DocumentSource
	metadata  MetadataExtractor
	embedder  ChunkEmbedder
	chunks    vectorDB.ChunkRepository
	steps     jobModel.StepStore

	chunkSize int
	overlap   int
	threshold float64
}

func NewWorkflow(documents commonModels.DocumentRepository, source DocumentSource, metadata MetadataExtractor,
	embedder ChunkEmbedder, chunks vectorDB.ChunkRepository, steps jobModel.StepStore) *Workflow {
	return &Workflow{
		documents: documents,
		source:    source,
		metadata:  metadata,
		embedder:  embedder,
		chunks:    chunks,
		steps:     steps,
		chunkSize: config.ChunkTargetSize,
		overlap:   config.ChunkOverlap,
		threshold: config.ChunkBoundaryThreshold,
	}
}

// Run executes the pipeline for job. A document already completed or failed is
// left untouched. On error the document is marked failed only when the error is
// final for this job (not retryable, or no attempts left).
func (w *Workflow) Run(ctx context.Context, job jobModel.Job) (jobModel.Job, error) {
	p := job.JobPayload
	log := logger.FromContext(ctx).With("jobId", job.Id, "documentId", p.DocumentId, "attempt", job.Attempt)

	doc, err := w.documents.Get(ctx, p.StartupId, p.DocumentId)
	if err != nil {
		log.Error("Could not load document", "error", err)
		return job, err
	}
	if doc.Status.IsTerminal() {
		log.Info("Document already terminal, skipping", "status", doc.Status)
		job.CurrentStep = jobModel.StepSkippedTerminated
		return job, nil
	}

	err = w.run(ctx, log, &job, doc)
	if err == nil {
		if clearErr := w.steps.ClearSteps(ctx, job.Id); clearErr != nil {
			log.Warn("Could not clear step memo", "error", clearErr)
		}
		metrics.CaptureDocumentOutcome(string(commonModels.DocStatusCompleted))
		return job, nil
	}

	if !commonModels.IsRetryable(err) || job.IsLastAttempt() {
		w.markFailed(ctx, log, &job, doc, err)
	} else {
		log.Warn("Step failed, job will be retried", "step", job.CurrentStep, "error", err)
	}
	return job, err
}

func (w *Workflow) run(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, doc commonModels.Document) error {
	if err := w.markProcessing(ctx, log, job, doc); err != nil {
		return err
	}

	var text string
	if err := w.step(ctx, log, job, jobModel.StepExtractText, &text, func() (any, error) {
		content, err := w.source.Download(ctx, doc.StoragePath)
		if err != nil {
			return nil, err
		}
		extracted, err := Extract(content, doc.FileType)
		if err != nil {
			return nil, err
		}
		return extracted, nil
	}); err != nil {
		return err
	}

	var meta commonModels.DocumentMetadata
	if err := w.step(ctx, log, job, jobModel.StepExtractMetadata, &meta, func() (any, error) {
		return w.metadata.ExtractMetadata(ctx, text), nil
	}); err != nil {
		return err
	}

	var pieces []string
	if err := w.step(ctx, log, job, jobModel.StepChunk, &pieces, func() (any, error) {
		out := Chunk(text, w.chunkSize, w.overlap, w.threshold)
		if len(out) == 0 {
			return nil, fmt.Errorf("%w: document contains no readable text", commonModels.ErrExtractionFailed)
		}
		return out, nil
	}); err != nil {
		return err
	}
	job.JobPayload.ChunkCount = len(pieces)

	var vectors [][]float32
	if err := w.step(ctx, log, job, jobModel.StepEmbed, &vectors, func() (any, error) {
		out, err := w.embedder.Embed(ctx, pieces)
		if err != nil {
			return nil, err
		}
		if len(out) != len(pieces) {
			return nil, fmt.Errorf("%w: %d chunks but %d vectors", commonModels.ErrEmbeddingService, len(pieces), len(out))
		}
		return out, nil
	}); err != nil {
		return err
	}

	var persisted int
	if err := w.step(ctx, log, job, jobModel.StepPersistChunks, &persisted, func() (any, error) {
		records := make([]commonModels.DocChunk, len(pieces))
		for i, content := range pieces {
			records[i] = commonModels.DocChunk{
				Id:         uuid.NewString(),
				DocumentId: doc.Id,
				StartupId:  doc.StartupId,
				ChunkIndex: i,
				Content:    content,
				Embedding:  vectors[i],
			}
		}
		if err := w.chunks.ReplaceDocumentChunks(ctx, doc, records); err != nil {
			return nil, err
		}
		return len(records), nil
	}); err != nil {
		return err
	}

	setStep(log, job, jobModel.StepMarkCompleted)
	if err := w.documents.Complete(ctx, doc.StartupId, doc.Id, meta); err != nil {
		return err
	}
	job.MarkCompleted(jobModel.StepMarkCompleted)
	log.Info("Document processed", "chunks", persisted)
	return nil
}

func (w *Workflow) markProcessing(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, doc commonModels.Document) error {
	setStep(log, job, jobModel.StepMarkProcessing)
	if doc.Status == commonModels.DocStatusProcessing {
		job.MarkCompleted(jobModel.StepMarkProcessing)
		return nil
	}
	if err := w.documents.UpdateStatus(ctx, doc.StartupId, doc.Id, commonModels.DocStatusProcessing, nil); err != nil {
		return err
	}
	job.MarkCompleted(jobModel.StepMarkProcessing)
	return nil
}

// step returns the memoized output of name into out, or runs fn and memoizes its result.
func (w *Workflow) step(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, name jobModel.InternalStatus, out any, fn func() (any, error)) error {
	setStep(log, job, name)

	cached, found, err := w.steps.GetStep(ctx, job.Id, name)
	if err != nil {
		log.Warn("Step memo unavailable, recomputing", "step", name, "error", err)
	}
	if found {
		if err := json.Unmarshal(cached, out); err == nil {
			log.Debug("Reusing memoized step", "step", name)
			job.MarkCompleted(name)
			return nil
		}
	}

	start := time.Now()
	result, err := fn()
	metrics.CaptureExecutionMetrics("workflow_"+string(name), time.Since(start))
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode %s output: %w", name, err)
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return fmt.Errorf("decode %s output: %w", name, err)
	}
	if err := w.steps.SaveStep(ctx, job.Id, name, encoded); err != nil {
		log.Warn("Could not memoize step", "step", name, "error", err)
	}
	job.MarkCompleted(name)
	return nil
}

func (w *Workflow) markFailed(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, doc commonModels.Document, cause error) {
	failedAt := job.CurrentStep
	setStep(log, job, jobModel.StepMarkFailed)
	message := FailureMessage(cause)
	log.Error("Document processing failed", "failedStep", failedAt, "error", cause)

	// the job context may be the one that timed out or was cancelled
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.MarkFailedTimeout)
	defer cancel()
	if err := w.documents.UpdateStatus(writeCtx, doc.StartupId, doc.Id, commonModels.DocStatusFailed, &message); err != nil {
		log.Error("Could not mark document failed", "error", err)
		return
	}
	metrics.CaptureDocumentOutcome(string(commonModels.DocStatusFailed))
}

// FailureMessage is the text shown to the founder for a failed document.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, commonModels.ErrUnsupportedFileType):
		return "This file type is not supported. Upload a PDF, DOCX, TXT or CSV file."
	case errors.Is(err, commonModels.ErrExtractionFailed):
		return "We could not read text from this file. It may be encrypted, scanned or damaged."
	case errors.Is(err, commonModels.ErrEmbeddingService):
		return "The embedding service was unavailable. Retry processing in a few minutes."
	case errors.Is(err, commonModels.ErrStorage):
		return "The uploaded file could not be read from storage. Retry processing later."
	case errors.Is(err, context.DeadlineExceeded):
		return "Processing took too long and was stopped. Retry processing later."
	default:
		return "Document processing failed. Retry processing later."
	}
}

func setStep(log *logger_i.Logger, job *jobModel.Job, step jobModel.InternalStatus) {
	job.CurrentStep = step
	log.Debug("ProcessDocument", "Current Status", step)
}
