package handlers

import (
	"net/http"
	"strings"

	"github.com/akolanti/GrantAgent/internal/adapter/utils"
	"github.com/akolanti/GrantAgent/internal/api"
	"github.com/akolanti/GrantAgent/internal/rag"
	"github.com/akolanti/GrantAgent/internal/rag/generator"
)

// AnswerHandler godoc
// @Summary      Answer a question from the knowledge base
// @Description  Retrieves the startup's most relevant passages and drafts an answer grounded in them.
// @Tags         RAG
// @Accept       json
// @Produce      json
// @Param        startupId  path  string             true  "Startup ID"
// @Param        request    body  api.AnswerRequest  true  "Question, optional grant name, tone and word limit"
// @Success      200  {object}  api.AnswerResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      502  {object}  api.ErrorResponse
// @Router       /startups/{startupId}/answers [post]
func (h *Handlers) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	var req api.AnswerRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Question) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "question is required")
		return
	}
	res, err := h.rag.Answer(r.Context(), rag.AnswerQuery{
		StartupId: utils.GetChiURLParam(r, "startupId"),
		Question:  req.Question,
		GrantName: req.GrantName,
		Tone:      req.Tone,
		MaxLength: req.MaxLength,
	})
	if err != nil {
		writeServiceError(r.Context(), w, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.AnswerResponse{Answer: res.Answer, Sources: res.Sources})
}

// GenerateApplicationHandler godoc
// @Summary      Draft answers for every question of a grant
// @Tags         Applications
// @Produce      json
// @Param        startupId  path  string  true  "Startup ID"
// @Param        grantId    path  string  true  "Grant ID"
// @Success      200  {object}  rag.ApplicationResult
// @Failure      404  {object}  api.ErrorResponse
// @Router       /startups/{startupId}/grants/{grantId}/application [post]
func (h *Handlers) GenerateApplicationHandler(w http.ResponseWriter, r *http.Request) {
	grantId := utils.GetChiURLParam(r, "grantId")
	res, err := h.rag.GenerateApplication(r.Context(), utils.GetChiURLParam(r, "startupId"), grantId)
	if err != nil {
		writeServiceError(r.Context(), w, grantId, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, res)
}

// EditAnswerHandler godoc
// @Summary      Save the founder's edit of an answer
// @Tags         Applications
// @Accept       json
// @Produce      json
// @Param        startupId   path  string                 true  "Startup ID"
// @Param        grantId     path  string                 true  "Grant ID"
// @Param        questionId  path  string                 true  "Question ID"
// @Param        request     body  api.EditAnswerRequest  true  "Edited text"
// @Success      200  {object}  grantModel.ApplicationAnswer
// @Failure      404  {object}  api.ErrorResponse
// @Router       /startups/{startupId}/grants/{grantId}/application/answers/{questionId} [put]
func (h *Handlers) EditAnswerHandler(w http.ResponseWriter, r *http.Request) {
	var req api.EditAnswerRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.EditedAnswer) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "edited_answer is required")
		return
	}
	questionId := utils.GetChiURLParam(r, "questionId")
	answer, err := h.rag.EditAnswer(r.Context(), utils.GetChiURLParam(r, "startupId"),
		utils.GetChiURLParam(r, "grantId"), questionId, req.EditedAnswer)
	if err != nil {
		writeServiceError(r.Context(), w, questionId, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, answer)
}

// FollowUpEmailHandler godoc
// @Summary      Draft a follow-up email to a grant provider
// @Tags         RAG
// @Accept       json
// @Produce      json
// @Param        startupId  path  string                    true  "Startup ID"
// @Param        request    body  api.FollowUpEmailRequest  true  "Email context"
// @Success      200  {object}  generator.FollowUpEmail
// @Failure      502  {object}  api.ErrorResponse
// @Router       /startups/{startupId}/follow-up-email [post]
func (h *Handlers) FollowUpEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req api.FollowUpEmailRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.GrantName) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "grant_name is required")
		return
	}
	if req.StartupName == "" {
		if profile, err := h.startups.Get(r.Context(), utils.GetChiURLParam(r, "startupId")); err == nil {
			req.StartupName = profile.Name
		}
	}
	email, err := h.rag.FollowUpEmail(r.Context(), generator.FollowUpRequest{
		GrantName:      req.GrantName,
		StartupName:    req.StartupName,
		Description:    req.Description,
		Achievements:   req.Achievements,
		SenderName:     req.SenderName,
		RecipientTitle: req.RecipientTitle,
	})
	if err != nil {
		writeServiceError(r.Context(), w, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, email)
}
