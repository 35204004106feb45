package adapter

import (
	"fmt"

	"github.com/akolanti/GrantAgent/internal/api"
	"github.com/akolanti/GrantAgent/internal/documents"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
)

func StatusURL(jobId string) string {
	return fmt.Sprintf("/jobs/%s", jobId)
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	return api.JobResponse{
		Id:          job.Id,
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
		DocumentId:  job.JobPayload.DocumentId,
		Attempt:     job.Attempt,
		MaxAttempts: job.MaxAttempts,
		ChunkCount:  job.JobPayload.ChunkCount,
		Error:       errorPtr,
		StartTime:   job.CreatedTime,
		EndTime:     job.EndTime,
	}
}

func ToUploadResponse(res documents.UploadResult) api.UploadResponse {
	out := api.UploadResponse{Document: res.Document, JobId: res.JobId, Warning: res.Warning}
	if res.JobId != "" {
		out.StatusURL = StatusURL(res.JobId)
	}
	return out
}

func BadRequest(id string, message string, code int, canRetry bool) api.ErrorResponse {
	return api.ErrorResponse{
		Id: id,
		Error: api.JobOutgoingError{
			Code:    code,
			Message: message,
			Retry:   canRetry,
		},
	}
}
