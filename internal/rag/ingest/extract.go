package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

var logger = logger_i.NewLogger("Ingest")

// DetectFileType maps a filename extension onto a supported document type.
func DetectFileType(fileName string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return commonModels.PDF
	case ".docx":
		return commonModels.DOCX
	case ".txt", ".md":
		return commonModels.TXT
	case ".csv":
		return commonModels.CSV
	default:
		return commonModels.ERR
	}
}

// Extract returns the plain text of a document. Encrypted or malformed input
// comes back as ErrExtractionFailed instead of crashing the caller.
func Extract(content []byte, fileType commonModels.DocType) (string, error) {
	switch fileType {
	case commonModels.PDF:
		return extractPDF(content)
	case commonModels.DOCX:
		return extractDocx(content)
	case commonModels.TXT, commonModels.CSV:
		return strings.ToValidUTF8(string(content), ""), nil
	default:
		return "", fmt.Errorf("%w: %q", commonModels.ErrUnsupportedFileType, fileType)
	}
}

func extractPDF(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pdf parser panicked", "panic", r)
			text, err = "", fmt.Errorf("%w: malformed pdf", commonModels.ErrExtractionFailed)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to open pdf: %w", commonModels.ErrExtractionFailed, err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := protectExtract(page)
		if err != nil {
			logger.Warn("Skipping unreadable pdf page", "page", i, "error", err)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(pageText)
	}

	if numPages > 0 && strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: pdf has no extractable text", commonModels.ErrExtractionFailed)
	}
	return sb.String(), nil
}

// protectExtract reads one page with a timeout; a panicking page is reported as an error.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{"", fmt.Errorf("page parser panicked: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PdfPageTimeout):
		return "", errors.New("page extraction timed out")
	}
}

// extractDocx goes through a temp file because cat detects the format from a path.
func extractDocx(content []byte) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*.docx")
	if err != nil {
		return "", fmt.Errorf("%w: failed to stage docx: %w", commonModels.ErrExtractionFailed, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: failed to stage docx: %w", commonModels.ErrExtractionFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to stage docx: %w", commonModels.ErrExtractionFailed, err)
	}

	text, err := safeCat(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("%w: failed to extract docx: %w", commonModels.ErrExtractionFailed, err)
	}
	return text, nil
}

func safeCat(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("docx parser panicked: %v", r)
		}
	}()
	return cat.File(path)
}
