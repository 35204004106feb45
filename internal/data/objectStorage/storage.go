package objectStorage

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

// Storage holds uploaded document files.
type Storage interface {
	Upload(ctx context.Context, path string, content []byte, contentType string) error
	Download(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, paths []string) error
}

var logger = logger_i.NewLogger("ObjectStorage")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// BuildPath namespaces an upload by startup and upload time: {startupId}/{unixMillis}-{filename}.
func BuildPath(startupId string, now time.Time, fileName string) string {
	return fmt.Sprintf("%s/%d-%s", startupId, now.UnixMilli(), SanitizeFileName(fileName))
}

// SanitizeFileName keeps the base name with only path-safe characters.
func SanitizeFileName(fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	clean := strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "._")
	if clean == "" {
		return "upload"
	}
	return clean
}
