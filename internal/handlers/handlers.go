package handlers

import (
	"context"
	"net/http"

	"github.com/akolanti/GrantAgent/internal/api"
	"github.com/akolanti/GrantAgent/internal/documents"
	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/internal/rag"
)

type JobLookup interface {
	GetJob(ctx context.Context, id string) (jobModel.Job, bool)
}

// AdminJob runs one scheduled job on demand and returns its report.
type AdminJob func(ctx context.Context) (any, error)

type Dependencies struct {
	Documents *documents.Service
	Rag       rag.Service
	Jobs      JobLookup
	Startups  grantModel.StartupRepository
	Grants    grantModel.GrantRepository
	AdminJobs map[string]AdminJob
}

type Handlers struct {
	documents *documents.Service
	rag       rag.Service
	jobs      JobLookup
	startups  grantModel.StartupRepository
	grants    grantModel.GrantRepository
	adminJobs map[string]AdminJob
}

func New(deps Dependencies) *Handlers {
	return &Handlers{
		documents: deps.Documents,
		rag:       deps.Rag,
		jobs:      deps.Jobs,
		startups:  deps.Startups,
		grants:    deps.Grants,
		adminJobs: deps.AdminJobs,
	}
}

// HealthHandler godoc
// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /healthz [get]
func (h *Handlers) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}
