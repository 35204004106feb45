package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akolanti/GrantAgent/internal/adapter"
	"github.com/akolanti/GrantAgent/internal/documents"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// the status line is already out
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, message, httpCode, false))
}

// writeServiceError maps a domain error onto a status code and a safe message.
func writeServiceError(ctx context.Context, w http.ResponseWriter, id string, err error) {
	code, message, canRetry := http.StatusInternalServerError, "Internal server error", false
	switch {
	case errors.Is(err, commonModels.ErrUnsupportedFileType):
		code, message = http.StatusBadRequest, "Unsupported file type. Upload a PDF, DOCX, TXT or CSV file."
	case errors.Is(err, documents.ErrEmptyFile):
		code, message = http.StatusBadRequest, "The uploaded file is empty"
	case errors.Is(err, documents.ErrFileTooLarge):
		code, message = http.StatusRequestEntityTooLarge, "File too large"
	case errors.Is(err, commonModels.ErrNotFound):
		code, message = http.StatusNotFound, "Not found"
	case errors.Is(err, documents.ErrNotRetryable), errors.Is(err, commonModels.ErrInvalidTransition):
		code, message = http.StatusConflict, "Document cannot be retried in its current state"
	case errors.Is(err, commonModels.ErrGenerationFailed):
		code, message, canRetry = http.StatusBadGateway, "Answer generation failed, please try again", true
	case errors.Is(err, commonModels.ErrEmbeddingService):
		code, message, canRetry = http.StatusBadGateway, "Embedding service unavailable, please try again", true
	}

	log := logRH.FromContext(ctx)
	if code >= http.StatusInternalServerError {
		log.Error("Request failed", "status", code, "error", err)
	} else {
		log.Warn("Request rejected", "status", code, "error", err)
	}
	writeJsonResponse(w, code, adapter.BadRequest(id, message, code, canRetry))
}

func decodeJSON(r *http.Request, into any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(into)
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.FromContext(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}
