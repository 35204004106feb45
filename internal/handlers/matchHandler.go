package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/akolanti/GrantAgent/internal/adapter/utils"
	"github.com/akolanti/GrantAgent/internal/api"
	"github.com/akolanti/GrantAgent/internal/matching"
)

const defaultRecommendations = 10

// MatchHandler godoc
// @Summary      Score a startup against one grant
// @Tags         Matching
// @Produce      json
// @Param        startupId  path  string  true  "Startup ID"
// @Param        grantId    path  string  true  "Grant ID"
// @Success      200  {object}  api.MatchResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /startups/{startupId}/grants/{grantId}/match [get]
func (h *Handlers) MatchHandler(w http.ResponseWriter, r *http.Request) {
	grantId := utils.GetChiURLParam(r, "grantId")
	startup, err := h.startups.Get(r.Context(), utils.GetChiURLParam(r, "startupId"))
	if err != nil {
		writeServiceError(r.Context(), w, grantId, err)
		return
	}
	grant, err := h.grants.Get(r.Context(), grantId)
	if err != nil {
		writeServiceError(r.Context(), w, grantId, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MatchResponse{GrantId: grant.Id, Match: matching.Score(startup, grant, time.Now())})
}

// RecommendationsHandler godoc
// @Summary      Best matching open grants for a startup
// @Tags         Matching
// @Produce      json
// @Param        startupId  path   string  true   "Startup ID"
// @Param        limit      query  int     false  "Maximum results (default 10)"
// @Success      200  {array}   matching.Recommendation
// @Failure      404  {object}  api.ErrorResponse
// @Router       /startups/{startupId}/recommendations [get]
func (h *Handlers) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecommendations
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteErrorResponse(w, http.StatusBadRequest, "", "limit must be a positive integer")
			return
		}
		limit = n
	}
	startup, err := h.startups.Get(r.Context(), utils.GetChiURLParam(r, "startupId"))
	if err != nil {
		writeServiceError(r.Context(), w, "", err)
		return
	}
	grants, err := h.grants.ListActive(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, matching.Recommend(startup, grants, limit, time.Now()))
}
