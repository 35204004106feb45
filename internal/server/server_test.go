package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akolanti/GrantAgent/internal/data/memory"
	"github.com/akolanti/GrantAgent/internal/data/objectStorage"
	"github.com/akolanti/GrantAgent/internal/data/store"
	"github.com/akolanti/GrantAgent/internal/documents"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/internal/handlers"
	"github.com/akolanti/GrantAgent/internal/middleware"
	"github.com/akolanti/GrantAgent/internal/rag"
	"github.com/akolanti/GrantAgent/internal/rag/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const token = "test-token"

type MockRag struct {
	OnAnswer func(ctx context.Context, q rag.AnswerQuery) (rag.AnswerResult, error)
}

func (m *MockRag) ProcessDocument(_ context.Context, job jobModel.Job) jobModel.Job { return job }
func (m *MockRag) Retrieve(context.Context, string, string, int, float64) ([]commonModels.RetrievedChunk, error) {
	return nil, nil
}
func (m *MockRag) Answer(ctx context.Context, q rag.AnswerQuery) (rag.AnswerResult, error) {
	return m.OnAnswer(ctx, q)
}
func (m *MockRag) GenerateApplication(context.Context, string, string) (rag.ApplicationResult, error) {
	return rag.ApplicationResult{}, nil
}
func (m *MockRag) EditAnswer(context.Context, string, string, string, string) (grantModel.ApplicationAnswer, error) {
	return grantModel.ApplicationAnswer{}, nil
}
func (m *MockRag) FollowUpEmail(context.Context, generator.FollowUpRequest) (generator.FollowUpEmail, error) {
	return generator.FollowUpEmail{Subject: "s", Body: "b"}, nil
}

type dispatchFunc func(ctx context.Context, job jobModel.Job) (jobModel.Job, error)

func (f dispatchFunc) Dispatch(ctx context.Context, job jobModel.Job) (jobModel.Job, error) {
	return f(ctx, job)
}

type testAPI struct {
	handler http.Handler
	rag     *MockRag
	jobs    *store.InMemoryJobStore
}

func newTestAPI(t *testing.T) testAPI {
	t.Helper()
	grants := memory.NewGrantStore()
	grants.PutStartup(grantModel.StartupProfile{Id: "s1", Name: "Acme", Sector: "fintech", Stage: grantModel.StageMVP})
	grants.PutGrant(grantModel.Grant{Id: "g1", Name: "Seed Fund", Sectors: []string{"fintech"}, IsActive: true})

	storage, err := objectStorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	jobs := store.InitInMemoryJobStore()
	dispatcher := dispatchFunc(func(ctx context.Context, job jobModel.Job) (jobModel.Job, error) {
		return job, jobs.SaveJob(ctx, job)
	})
	docs := documents.NewService(memory.NewDocumentStore(), memory.NewChunkStore(), storage, dispatcher)

	api := testAPI{rag: &MockRag{}, jobs: jobs}
	h := handlers.New(handlers.Dependencies{
		Documents: docs,
		Rag:       api.rag,
		Jobs:      jobs,
		Startups:  memory.Startups{GrantStore: grants},
		Grants:    memory.Grants{GrantStore: grants},
		AdminJobs: map[string]handlers.AdminJob{
			"digest": func(context.Context) (any, error) { return map[string]int{"emails_sent": 2}, nil },
		},
	})
	api.handler = Routes(h, middleware.NewChain(token), nil)
	return api
}

func (a testAPI) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, fileName string, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/startups/s1/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthzNeedsNoToken(t *testing.T) {
	api := newTestAPI(t)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	api := newTestAPI(t)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/startups/s1/documents", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadThenFetch(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, uploadRequest(t, "notes.txt", "We grew revenue 3x."))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	up := decode[struct {
		Document  commonModels.Document `json:"document"`
		JobId     string                `json:"job_id"`
		StatusURL string                `json:"status_url"`
	}](t, rec)
	assert.Equal(t, commonModels.DocStatusPending, up.Document.Status)
	assert.Equal(t, "/jobs/"+up.JobId, up.StatusURL)

	rec = api.do(t, httptest.NewRequest(http.MethodGet, "/startups/s1/documents/"+up.Document.Id, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, httptest.NewRequest(http.MethodGet, up.StatusURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"QUEUED"`)

	rec = api.do(t, httptest.NewRequest(http.MethodGet, "/startups/other/documents/"+up.Document.Id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, uploadRequest(t, "logo.png", "png bytes"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRetryCompletedDocumentConflicts(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, httptest.NewRequest(http.MethodPost, "/startups/s1/documents/missing/retry", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnswerErrors(t *testing.T) {
	api := newTestAPI(t)
	api.rag.OnAnswer = func(context.Context, rag.AnswerQuery) (rag.AnswerResult, error) {
		return rag.AnswerResult{}, fmt.Errorf("%w: model timeout", commonModels.ErrGenerationFailed)
	}

	rec := api.do(t, httptest.NewRequest(http.MethodPost, "/startups/s1/answers", strings.NewReader(`{"question":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, httptest.NewRequest(http.MethodPost, "/startups/s1/answers", strings.NewReader(`{"question":"traction?"}`)))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"can_retry":true`)
}

func TestAnswerPassesStartupFromPath(t *testing.T) {
	api := newTestAPI(t)
	api.rag.OnAnswer = func(_ context.Context, q rag.AnswerQuery) (rag.AnswerResult, error) {
		return rag.AnswerResult{Answer: "for " + q.StartupId + " at " + q.GrantName, Sources: []commonModels.RetrievedChunk{}}, nil
	}
	rec := api.do(t, httptest.NewRequest(http.MethodPost, "/startups/s1/answers",
		strings.NewReader(`{"question":"q","tone":"casual","grant_name":"Seed Fund"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"answer":"for s1 at Seed Fund"`)
}

func TestMatchAndRecommendations(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, httptest.NewRequest(http.MethodGet, "/startups/s1/grants/g1/match", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"grant_id":"g1"`)

	rec = api.do(t, httptest.NewRequest(http.MethodGet, "/startups/s1/grants/nope/match", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, httptest.NewRequest(http.MethodGet, "/startups/s1/recommendations?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, httptest.NewRequest(http.MethodGet, "/startups/s1/recommendations?limit=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Seed Fund")
}

func TestAdminJobs(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, httptest.NewRequest(http.MethodPost, "/admin/jobs/digest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"emails_sent":2`)

	rec = api.do(t, httptest.NewRequest(http.MethodPost, "/admin/jobs/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
