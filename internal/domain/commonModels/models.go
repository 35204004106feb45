package commonModels

import (
	"context"
	"time"
)

type DocType string

const (
	PDF  DocType = "pdf"
	DOCX DocType = "docx"
	TXT  DocType = "txt"
	CSV  DocType = "csv"
	ERR  DocType = "error"
)

type DocStatus string

const (
	DocStatusPending    DocStatus = "pending"
	DocStatusProcessing DocStatus = "processing"
	DocStatusCompleted  DocStatus = "completed"
	DocStatusFailed     DocStatus = "failed"
)

// IsTerminal reports whether the workflow is done with a document in this state.
func (s DocStatus) IsTerminal() bool {
	return s == DocStatusCompleted || s == DocStatusFailed
}

// CanTransition reports whether a document may move from one status to another.
// Terminal documents only go back to pending through an explicit retry.
func CanTransition(from DocStatus, to DocStatus, isRetry bool) bool {
	switch from {
	case DocStatusPending:
		return to == DocStatusProcessing || to == DocStatusFailed
	case DocStatusProcessing:
		return to == DocStatusCompleted || to == DocStatusFailed || (isRetry && to == DocStatusPending)
	case DocStatusCompleted, DocStatusFailed:
		return isRetry && to == DocStatusPending
	}
	return false
}

type Document struct {
	Id           string            `json:"id"`
	StartupId    string            `json:"startup_id"`
	FileName     string            `json:"file_name"`
	FileType     DocType           `json:"file_type"`
	FileSize     int64             `json:"file_size"`
	StoragePath  string            `json:"storage_path"`
	Status       DocStatus         `json:"status"`
	Metadata     *DocumentMetadata `json:"metadata,omitempty"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// DocumentMetadata is the structured startup profile pulled out of a document.
type DocumentMetadata struct {
	CompanyName        *string  `json:"company_name"`
	Sector             *string  `json:"sector"`
	ProductDescription *string  `json:"product_description"`
	KeyAchievements    []string `json:"key_achievements"`
	TeamInfo           *string  `json:"team_info"`
	Traction           *string  `json:"traction"`
	FundingRaised      *string  `json:"funding_raised"`
}

// EmptyMetadata is the metadata recorded when extraction yields nothing usable.
func EmptyMetadata() DocumentMetadata {
	return DocumentMetadata{KeyAchievements: []string{}}
}

type DocChunk struct {
	Id         string    `json:"id"`
	DocumentId string    `json:"document_id"`
	StartupId  string    `json:"startup_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
}

// RetrievedChunk is one similarity search hit.
type RetrievedChunk struct {
	ChunkId         string  `json:"chunk_id"`
	ChunkContent    string  `json:"chunk_content"`
	DocumentId      string  `json:"document_id"`
	DocumentName    string  `json:"document_name"`
	SimilarityScore float64 `json:"similarity_score"`
}

// DocumentRepository persists documents. Every call is scoped to one startup.
type DocumentRepository interface {
	Create(ctx context.Context, doc Document) (Document, error)
	Get(ctx context.Context, startupId string, id string) (Document, error)
	ListByStartup(ctx context.Context, startupId string) ([]Document, error)
	UpdateStatus(ctx context.Context, startupId string, id string, status DocStatus, errorMessage *string) error
	Complete(ctx context.Context, startupId string, id string, metadata DocumentMetadata) error
	Delete(ctx context.Context, startupId string, id string) error
}
