package documents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/akolanti/GrantAgent/internal/data/memory"
	"github.com/akolanti/GrantAgent/internal/data/objectStorage"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockDispatcher struct {
	OnDispatch func(ctx context.Context, job jobModel.Job) (jobModel.Job, error)
	jobs       []jobModel.Job
}

func (m *MockDispatcher) Dispatch(ctx context.Context, job jobModel.Job) (jobModel.Job, error) {
	m.jobs = append(m.jobs, job)
	if m.OnDispatch != nil {
		return m.OnDispatch(ctx, job)
	}
	return job, nil
}

type fixture struct {
	svc        *Service
	docs       *memory.DocumentStore
	chunks     *memory.ChunkStore
	root       string
	dispatcher *MockDispatcher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	storage, err := objectStorage.NewLocalStorage(root)
	require.NoError(t, err)
	f := fixture{
		docs:       memory.NewDocumentStore(),
		chunks:     memory.NewChunkStore(),
		root:       root,
		dispatcher: &MockDispatcher{},
	}
	f.svc = NewService(f.docs, f.chunks, storage, f.dispatcher)
	return f
}

func (f fixture) storedFile(doc commonModels.Document) string {
	return filepath.Join(f.root, filepath.FromSlash(doc.StoragePath))
}

func (f fixture) failedDocument(t *testing.T) commonModels.Document {
	t.Helper()
	ctx := context.Background()
	res, err := f.svc.Upload(ctx, Upload{StartupId: "s1", FileName: "deck.txt", Content: []byte("hello")})
	require.NoError(t, err)
	id := res.Document.Id
	msg := "boom"
	require.NoError(t, f.docs.UpdateStatus(ctx, "s1", id, commonModels.DocStatusProcessing, nil))
	require.NoError(t, f.docs.UpdateStatus(ctx, "s1", id, commonModels.DocStatusFailed, &msg))
	require.NoError(t, f.chunks.ReplaceDocumentChunks(ctx, res.Document, []commonModels.DocChunk{{Content: "a"}, {Content: "b"}}))
	doc, err := f.docs.Get(ctx, "s1", id)
	require.NoError(t, err)
	return doc
}

func TestUpload_CreatesPendingDocumentAndDispatches(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Upload(context.Background(), Upload{StartupId: "s1", FileName: "Pitch Deck.pdf", Content: []byte("%PDF-1.4")})
	require.NoError(t, err)

	assert.Empty(t, res.Warning)
	assert.Equal(t, commonModels.DocStatusPending, res.Document.Status)
	assert.Equal(t, commonModels.PDF, res.Document.FileType)
	assert.EqualValues(t, 8, res.Document.FileSize)
	assert.Regexp(t, `^s1/\d+-Pitch_Deck\.pdf$`, res.Document.StoragePath)
	assert.FileExists(t, f.storedFile(res.Document))

	require.Len(t, f.dispatcher.jobs, 1)
	assert.Equal(t, res.JobId, f.dispatcher.jobs[0].Id)
	assert.Equal(t, res.Document.Id, f.dispatcher.jobs[0].JobPayload.DocumentId)
}

func TestUpload_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, Upload{StartupId: "s1", FileName: "image.png", Content: []byte("x")})
	assert.ErrorIs(t, err, commonModels.ErrUnsupportedFileType)

	_, err = f.svc.Upload(ctx, Upload{StartupId: "s1", FileName: "notes.txt"})
	assert.ErrorIs(t, err, ErrEmptyFile)

	f.svc.maxSize = 4
	_, err = f.svc.Upload(ctx, Upload{StartupId: "s1", FileName: "notes.txt", Content: []byte("12345")})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	assert.Empty(t, f.dispatcher.jobs)
	docs, err := f.svc.List(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestUpload_DispatchFailureIsAWarning(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.OnDispatch = func(_ context.Context, job jobModel.Job) (jobModel.Job, error) {
		return job, errors.New("queue full")
	}

	res, err := f.svc.Upload(context.Background(), Upload{StartupId: "s1", FileName: "a.txt", Content: []byte("hi")})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Document.Id)
	assert.Contains(t, res.Warning, "could not be started")
}

func TestUpload_InlineFailureReturnsFailedDocument(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.OnDispatch = func(ctx context.Context, job jobModel.Job) (jobModel.Job, error) {
		p := job.JobPayload
		msg := "Could not read the document"
		_ = f.docs.UpdateStatus(ctx, p.StartupId, p.DocumentId, commonModels.DocStatusProcessing, nil)
		_ = f.docs.UpdateStatus(ctx, p.StartupId, p.DocumentId, commonModels.DocStatusFailed, &msg)
		job.Status = jobModel.JobStatusError
		job.Error = jobModel.JobError{Code: 422, Message: msg}
		return job, nil
	}

	res, err := f.svc.Upload(context.Background(), Upload{StartupId: "s1", FileName: "a.txt", Content: []byte("hi")})
	require.NoError(t, err)
	assert.Equal(t, commonModels.DocStatusFailed, res.Document.Status)
	assert.Contains(t, res.Warning, "Could not read the document")
}

func TestDelete_RemovesChunksRowAndFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.failedDocument(t)

	assert.ErrorIs(t, f.svc.Delete(ctx, "other-startup", doc.Id), commonModels.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, "s1", doc.Id))
	assert.Zero(t, f.chunks.Count(doc.Id))
	_, err := f.svc.Get(ctx, "s1", doc.Id)
	assert.ErrorIs(t, err, commonModels.ErrNotFound)
	_, err = os.Stat(f.storedFile(doc))
	assert.True(t, os.IsNotExist(err))
}

func TestDelete_MissingFileStillSucceeds(t *testing.T) {
	f := newFixture(t)
	doc := f.failedDocument(t)
	require.NoError(t, os.Remove(f.storedFile(doc)))

	assert.NoError(t, f.svc.Delete(context.Background(), "s1", doc.Id))
}

func TestRetry_FailedDocument(t *testing.T) {
	f := newFixture(t)
	doc := f.failedDocument(t)

	res, err := f.svc.Retry(context.Background(), "s1", doc.Id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.DocStatusPending, res.Document.Status)
	assert.Nil(t, res.Document.ErrorMessage)
	assert.Zero(t, f.chunks.Count(doc.Id))
	assert.Len(t, f.dispatcher.jobs, 2)
}

func TestRetry_OnlyFailedOrStuck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Upload(ctx, Upload{StartupId: "s1", FileName: "a.txt", Content: []byte("hi")})
	require.NoError(t, err)
	id := res.Document.Id
	require.NoError(t, f.docs.UpdateStatus(ctx, "s1", id, commonModels.DocStatusProcessing, nil))

	_, err = f.svc.Retry(ctx, "s1", id)
	assert.ErrorIs(t, err, ErrNotRetryable)

	f.svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	res, err = f.svc.Retry(ctx, "s1", id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.DocStatusPending, res.Document.Status)

	require.NoError(t, f.docs.UpdateStatus(ctx, "s1", id, commonModels.DocStatusProcessing, nil))
	require.NoError(t, f.docs.Complete(ctx, "s1", id, commonModels.EmptyMetadata()))
	_, err = f.svc.Retry(ctx, "s1", id)
	assert.ErrorIs(t, err, ErrNotRetryable)

	_, err = f.svc.Retry(ctx, "s1", "missing")
	assert.ErrorIs(t, err, commonModels.ErrNotFound)
}
