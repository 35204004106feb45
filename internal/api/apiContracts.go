package api

import (
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
)

type JobResponse struct {
	Id          string            `json:"id" example:"8b7e3c1a-4f0e-4d3a-9c55-0c1f7b2a9e10"`
	Status      string            `json:"status" example:"QUEUED"`
	CurrentStep string            `json:"current_step" example:"Embed"`
	DocumentId  string            `json:"document_id,omitempty"`
	Attempt     int               `json:"attempt" example:"1"`
	MaxAttempts int               `json:"max_attempts" example:"3"`
	ChunkCount  int               `json:"chunk_count,omitempty"`
	Error       *JobOutgoingError `json:"error,omitempty"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type ErrorResponse struct {
	Id    string           `json:"id,omitempty"`
	Error JobOutgoingError `json:"error"`
}

type UploadResponse struct {
	Document  commonModels.Document `json:"document"`
	JobId     string                `json:"job_id,omitempty"`
	StatusURL string                `json:"status_url,omitempty"`
	Warning   string                `json:"warning,omitempty"`
}

type DocumentListResponse struct {
	Documents []commonModels.Document `json:"documents"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// requests---------------------

type AnswerRequest struct {
	Question  string `json:"question" validate:"required" example:"What traction does the startup have?"`
	GrantName string `json:"grant_name,omitempty" example:"Startup India Seed Fund"`
	Tone      string `json:"tone,omitempty" example:"professional"`
	MaxLength int    `json:"max_length,omitempty" example:"300"`
}

type AnswerResponse struct {
	Answer  string                        `json:"answer"`
	Sources []commonModels.RetrievedChunk `json:"sources"`
}

type EditAnswerRequest struct {
	EditedAnswer string `json:"edited_answer" validate:"required"`
}

type FollowUpEmailRequest struct {
	GrantName      string   `json:"grant_name" validate:"required" example:"Startup India Seed Fund"`
	StartupName    string   `json:"startup_name,omitempty"`
	Description    string   `json:"description,omitempty"`
	Achievements   []string `json:"achievements,omitempty"`
	SenderName     string   `json:"sender_name,omitempty"`
	RecipientTitle string   `json:"recipient_title,omitempty"`
}

type MatchResponse struct {
	GrantId string                 `json:"grant_id"`
	Match   grantModel.MatchResult `json:"match"`
}

type AdminRunResponse struct {
	Job    string `json:"job" example:"reminders"`
	Report any    `json:"report"`
}
