package handlers

import (
	"net/http"

	"github.com/akolanti/GrantAgent/internal/adapter/utils"
	"github.com/akolanti/GrantAgent/internal/api"
)

// RunAdminJobHandler godoc
// @Summary      Run a scheduled job now
// @Description  Triggers reminders, digest or scrape immediately and returns the run report.
// @Tags         Admin
// @Produce      json
// @Param        name  path  string  true  "reminders | digest | scrape"
// @Success      200  {object}  api.AdminRunResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /admin/jobs/{name} [post]
func (h *Handlers) RunAdminJobHandler(w http.ResponseWriter, r *http.Request) {
	name := utils.GetChiURLParam(r, "name")
	run, ok := h.adminJobs[name]
	if !ok {
		WriteErrorResponse(w, http.StatusNotFound, name, "Unknown job")
		return
	}
	logRH.FromContext(r.Context()).Info("Running job on demand", "job", name)
	report, err := run(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, name, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.AdminRunResponse{Job: name, Report: report})
}
