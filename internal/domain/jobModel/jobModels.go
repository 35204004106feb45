package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	StepInit              InternalStatus = "Init"
	StepMarkProcessing    InternalStatus = "MarkProcessing"
	StepExtractText       InternalStatus = "ExtractText"
	StepExtractMetadata   InternalStatus = "ExtractMetadata"
	StepChunk             InternalStatus = "Chunk"
	StepEmbed             InternalStatus = "Embed"
	StepPersistChunks     InternalStatus = "PersistChunks"
	StepMarkCompleted     InternalStatus = "MarkCompleted"
	StepMarkFailed        InternalStatus = "MarkFailed"
	StepSkippedTerminated InternalStatus = "SkippedTerminal"

	Error    InternalStatus = "Error"
	Complete InternalStatus = "Complete"

	// JobTypeProcessDocument is the event that triggers the document workflow.
	JobTypeProcessDocument JobType = "document/process"
)

type Job struct {
	Id             string           `json:"id"`
	TraceId        string           `json:"trace_id"`
	JobType        JobType          `json:"job_type"`
	JobPayload     JobPayload       `json:"job_payload"`
	Error          JobError         `json:"error,omitempty"`
	CreatedTime    time.Time        `json:"created_time"`
	EndTime        time.Time        `json:"end_time,omitempty"`
	Status         JobStatus        `json:"status"`
	CurrentStep    InternalStatus   `json:"current_step"`
	CompletedSteps []InternalStatus `json:"completed_steps,omitempty"`
	Attempt        int              `json:"attempt"`
	MaxAttempts    int              `json:"max_attempts"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	StartupId   string               `json:"startup_id"`
	DocumentId  string               `json:"document_id"`
	FileName    string               `json:"file_name"`
	FileType    commonModels.DocType `json:"file_type"`
	StoragePath string               `json:"storage_path"`
	ChunkCount  int                  `json:"chunk_count,omitempty"`
}

// HasCompleted reports whether step already ran for this job.
func (j Job) HasCompleted(step InternalStatus) bool {
	for _, s := range j.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}

// MarkCompleted records step once.
func (j *Job) MarkCompleted(step InternalStatus) {
	if !j.HasCompleted(step) {
		j.CompletedSteps = append(j.CompletedSteps, step)
	}
}

// IsLastAttempt reports whether a failure now is final.
func (j Job) IsLastAttempt() bool {
	return j.MaxAttempts <= 0 || j.Attempt >= j.MaxAttempts
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

// StepStore memoizes the output of completed workflow steps so a retried job resumes where it stopped.
type StepStore interface {
	SaveStep(ctx context.Context, jobId string, step InternalStatus, output []byte) error
	GetStep(ctx context.Context, jobId string, step InternalStatus) ([]byte, bool, error)
	ClearSteps(ctx context.Context, jobId string) error
}
