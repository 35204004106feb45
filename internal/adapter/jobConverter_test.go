package adapter

import (
	"testing"

	"github.com/akolanti/GrantAgent/internal/documents"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
)

func TestToAPIResponse(t *testing.T) {
	job := jobModel.Job{
		Id:          "j1",
		Status:      jobModel.JobStatusError,
		CurrentStep: jobModel.StepExtractText,
		Attempt:     2,
		MaxAttempts: 3,
		JobPayload:  jobModel.JobPayload{DocumentId: "d1"},
		Error:       jobModel.JobError{Code: 422, Message: "Could not read the document", Retry: false},
	}
	res := ToAPIResponse(job)
	if res.Error == nil || res.Error.Code != 422 || res.Error.Retry {
		t.Fatalf("error not mapped: %+v", res.Error)
	}
	if res.Status != "Error" || res.DocumentId != "d1" || res.CurrentStep != "ExtractText" {
		t.Errorf("unexpected response %+v", res)
	}

	if ToAPIResponse(jobModel.Job{Id: "ok"}).Error != nil {
		t.Error("successful job must not carry an error")
	}
}

func TestToUploadResponse(t *testing.T) {
	if got := ToUploadResponse(documents.UploadResult{JobId: "j1"}).StatusURL; got != "/jobs/j1" {
		t.Errorf("status url = %q", got)
	}
	if got := ToUploadResponse(documents.UploadResult{}).StatusURL; got != "" {
		t.Errorf("status url without job = %q", got)
	}
}
