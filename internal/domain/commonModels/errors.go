package commonModels

import "errors"

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrExtractionFailed    = errors.New("text extraction failed")
	ErrEmbeddingService    = errors.New("embedding service error")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrStorage             = errors.New("storage error")
	ErrPersistence         = errors.New("persistence error")

	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// IsRetryable reports whether a workflow failure may succeed on a later attempt.
// Bad input never gets better by retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrUnsupportedFileType),
		errors.Is(err, ErrExtractionFailed),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidTransition):
		return false
	}
	return true
}
