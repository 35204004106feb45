package handlers

import (
	"net/http"

	"github.com/akolanti/GrantAgent/internal/adapter"
	"github.com/akolanti/GrantAgent/internal/adapter/utils"
)

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a document processing job.
// @Tags         Jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /jobs/{id} [get]
func (h *Handlers) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	if id == "" {
		WriteErrorResponse(w, http.StatusBadRequest, id, "job id is required")
		return
	}
	job, found := h.jobs.GetJob(r.Context(), id)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, id, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(job))
}
