package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/data/objectStorage"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/internal/job"
	"github.com/akolanti/GrantAgent/internal/rag/ingest"
	"github.com/akolanti/GrantAgent/internal/rag/vectorDB"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

var logger = logger_i.NewLogger("Documents")

var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file too large")
	ErrNotRetryable = errors.New("document is not in a retryable state")
)

var contentTypes = map[commonModels.DocType]string{
	commonModels.PDF:  "application/pdf",
	commonModels.DOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	commonModels.TXT:  "text/plain; charset=utf-8",
	commonModels.CSV:  "text/csv; charset=utf-8",
}

type Upload struct {
	StartupId string
	FileName  string
	Content   []byte
}

// UploadResult always carries the created document. Warning is set when
// processing could not be started or failed in the request.
type UploadResult struct {
	Document commonModels.Document `json:"document"`
	JobId    string                `json:"job_id,omitempty"`
	Warning  string                `json:"warning,omitempty"`
}

type Service struct {
	documents  commonModels.DocumentRepository
	chunks     vectorDB.ChunkRepository
	storage    objectStorage.Storage
	dispatcher job.ProcessingDispatcher
	maxSize    int
	stuckAfter time.Duration
	now        func() time.Time
}

func NewService(documents commonModels.DocumentRepository, chunks vectorDB.ChunkRepository,
	storage objectStorage.Storage, dispatcher job.ProcessingDispatcher) *Service {
	return &Service{
		documents:  documents,
		chunks:     chunks,
		storage:    storage,
		dispatcher: dispatcher,
		maxSize:    config.MaxUploadSize,
		stuckAfter: config.StuckDocumentAfter,
		now:        time.Now,
	}
}

// Upload stores the file, records a pending document and starts processing.
// Once the document row exists the call succeeds; dispatch problems become a warning.
func (s *Service) Upload(ctx context.Context, in Upload) (UploadResult, error) {
	fileType := ingest.DetectFileType(in.FileName)
	if fileType == commonModels.ERR {
		return UploadResult{}, fmt.Errorf("%w: %s", commonModels.ErrUnsupportedFileType, in.FileName)
	}
	if len(in.Content) == 0 {
		return UploadResult{}, ErrEmptyFile
	}
	if len(in.Content) > s.maxSize {
		return UploadResult{}, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(in.Content))
	}

	log := logger.FromContext(ctx).With("startupId", in.StartupId, "fileName", in.FileName)
	path := objectStorage.BuildPath(in.StartupId, s.now(), in.FileName)
	if err := s.storage.Upload(ctx, path, in.Content, contentTypes[fileType]); err != nil {
		log.Error("Upload to storage failed", "path", path, "error", err)
		return UploadResult{}, err
	}

	doc, err := s.documents.Create(ctx, commonModels.Document{
		StartupId:   in.StartupId,
		FileName:    in.FileName,
		FileType:    fileType,
		FileSize:    int64(len(in.Content)),
		StoragePath: path,
		Status:      commonModels.DocStatusPending,
	})
	if err != nil {
		log.Error("Could not record document", "error", err)
		s.removeObject(ctx, path)
		return UploadResult{}, err
	}

	return s.dispatch(ctx, doc), nil
}

func (s *Service) List(ctx context.Context, startupId string) ([]commonModels.Document, error) {
	docs, err := s.documents.ListByStartup(ctx, startupId)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []commonModels.Document{}
	}
	return docs, nil
}

func (s *Service) Get(ctx context.Context, startupId string, id string) (commonModels.Document, error) {
	return s.documents.Get(ctx, startupId, id)
}

// Delete removes chunks, then the row, then the stored file. A storage failure
// at the end is only logged.
func (s *Service) Delete(ctx context.Context, startupId string, id string) error {
	doc, err := s.documents.Get(ctx, startupId, id)
	if err != nil {
		return err
	}
	if err := s.chunks.DeleteDocumentChunks(ctx, startupId, id); err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, startupId, id); err != nil {
		return err
	}
	s.removeObject(ctx, doc.StoragePath)
	return nil
}

// Retry reprocesses a failed document, or one stuck before reaching a terminal state.
func (s *Service) Retry(ctx context.Context, startupId string, id string) (UploadResult, error) {
	doc, err := s.documents.Get(ctx, startupId, id)
	if err != nil {
		return UploadResult{}, err
	}
	if !s.retryable(doc) {
		return UploadResult{}, fmt.Errorf("%w: status %s", ErrNotRetryable, doc.Status)
	}
	if err := s.chunks.DeleteDocumentChunks(ctx, startupId, id); err != nil {
		return UploadResult{}, err
	}
	if err := s.documents.UpdateStatus(ctx, startupId, id, commonModels.DocStatusPending, nil); err != nil {
		return UploadResult{}, err
	}
	doc.Status = commonModels.DocStatusPending
	doc.Metadata, doc.ErrorMessage = nil, nil

	logger.FromContext(ctx).Info("Retrying document", "documentId", id)
	return s.dispatch(ctx, doc), nil
}

func (s *Service) retryable(doc commonModels.Document) bool {
	switch doc.Status {
	case commonModels.DocStatusFailed:
		return true
	case commonModels.DocStatusPending, commonModels.DocStatusProcessing:
		return s.now().Sub(doc.UpdatedAt) >= s.stuckAfter
	}
	return false
}

func (s *Service) dispatch(ctx context.Context, doc commonModels.Document) UploadResult {
	log := logger.FromContext(ctx).With("documentId", doc.Id)
	result := UploadResult{Document: doc}

	out, err := s.dispatcher.Dispatch(ctx, job.NewDocumentJob(logger_i.TraceID(ctx), doc))
	result.JobId = out.Id
	if err != nil {
		log.Warn("Could not start processing", "error", err)
		result.Warning = "Document uploaded but processing could not be started. Use retry to process it."
		return result
	}

	if out.Status == jobModel.JobStatusError {
		result.Warning = "Document uploaded but processing failed: " + out.Error.Message + ". Use retry to process it again."
	}
	if current, err := s.documents.Get(ctx, doc.StartupId, doc.Id); err == nil {
		result.Document = current
	}
	return result
}

func (s *Service) removeObject(ctx context.Context, path string) {
	if err := s.storage.Remove(ctx, []string{path}); err != nil {
		logger.FromContext(ctx).Warn("Could not remove stored file", "path", path, "error", err)
	}
}
