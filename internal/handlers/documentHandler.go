package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/akolanti/GrantAgent/internal/adapter"
	"github.com/akolanti/GrantAgent/internal/adapter/utils"
	"github.com/akolanti/GrantAgent/internal/api"
	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/documents"
)

// UploadDocumentHandler godoc
// @Summary      Upload a document to the knowledge base
// @Description  Stores the file and starts processing. The document is returned even when processing could not start.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        startupId  path      string  true  "Startup ID"
// @Param        file       formData  file    true  "PDF, DOCX, TXT or CSV file"
// @Success      201  {object}  api.UploadResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      413  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /startups/{startupId}/documents [post]
func (h *Handlers) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	startupId := utils.GetChiURLParam(r, "startupId")

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "", "File too large")
			return
		}
		WriteErrorResponse(w, http.StatusBadRequest, "", "Expected a multipart form with a file")
		return
	}
	fileReader, header, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "file is required")
		return
	}
	defer fileReader.Close()

	content, err := io.ReadAll(fileReader)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, header.Filename, "Could not read file")
		return
	}

	res, err := h.documents.Upload(r.Context(), documents.Upload{StartupId: startupId, FileName: header.Filename, Content: content})
	if err != nil {
		writeServiceError(r.Context(), w, header.Filename, err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToUploadResponse(res))
}

// ListDocumentsHandler godoc
// @Summary      List documents
// @Tags         Documents
// @Produce      json
// @Param        startupId  path  string  true  "Startup ID"
// @Success      200  {object}  api.DocumentListResponse
// @Router       /startups/{startupId}/documents [get]
func (h *Handlers) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.List(r.Context(), utils.GetChiURLParam(r, "startupId"))
	if err != nil {
		writeServiceError(r.Context(), w, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DocumentListResponse{Documents: docs})
}

// GetDocumentHandler godoc
// @Summary      Get a document
// @Tags         Documents
// @Produce      json
// @Param        startupId   path  string  true  "Startup ID"
// @Param        documentId  path  string  true  "Document ID"
// @Success      200  {object}  commonModels.Document
// @Failure      404  {object}  api.ErrorResponse
// @Router       /startups/{startupId}/documents/{documentId} [get]
func (h *Handlers) GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "documentId")
	doc, err := h.documents.Get(r.Context(), utils.GetChiURLParam(r, "startupId"), id)
	if err != nil {
		writeServiceError(r.Context(), w, id, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, doc)
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document and its chunks
// @Tags         Documents
// @Param        startupId   path  string  true  "Startup ID"
// @Param        documentId  path  string  true  "Document ID"
// @Success      204
// @Failure      404  {object}  api.ErrorResponse
// @Router       /startups/{startupId}/documents/{documentId} [delete]
func (h *Handlers) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "documentId")
	if err := h.documents.Delete(r.Context(), utils.GetChiURLParam(r, "startupId"), id); err != nil {
		writeServiceError(r.Context(), w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RetryDocumentHandler godoc
// @Summary      Reprocess a failed document
// @Tags         Documents
// @Produce      json
// @Param        startupId   path  string  true  "Startup ID"
// @Param        documentId  path  string  true  "Document ID"
// @Success      202  {object}  api.UploadResponse
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /startups/{startupId}/documents/{documentId}/retry [post]
func (h *Handlers) RetryDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "documentId")
	res, err := h.documents.Retry(r.Context(), utils.GetChiURLParam(r, "startupId"), id)
	if err != nil {
		writeServiceError(r.Context(), w, id, err)
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(res))
}
