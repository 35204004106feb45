package objectStorage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/metrics"
)

// SupabaseStorage talks to the Supabase Storage REST API with a service role key.
type SupabaseStorage struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

func NewSupabaseStorage(baseURL string, serviceKey string, bucket string, httpClient *http.Client) (*SupabaseStorage, error) {
	if baseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for supabase storage")
	}
	return &SupabaseStorage{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: httpClient,
	}, nil
}

func (s *SupabaseStorage) objectURL(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(s.bucket), strings.Join(segments, "/"))
}

func (s *SupabaseStorage) do(ctx context.Context, method string, target string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", commonModels.ErrStorage, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	metrics.CaptureExecutionMetrics("object_storage", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", commonModels.ErrStorage, method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", commonModels.ErrStorage, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: object %s: %w", commonModels.ErrStorage, target, commonModels.ErrNotFound)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s returned %d: %s", commonModels.ErrStorage, method, target, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func (s *SupabaseStorage) Upload(ctx context.Context, path string, content []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.do(ctx, http.MethodPost, s.objectURL(path), bytes.NewReader(content), contentType)
	return err
}

func (s *SupabaseStorage) Download(ctx context.Context, path string) ([]byte, error) {
	return s.do(ctx, http.MethodGet, s.objectURL(path), nil, "")
}

func (s *SupabaseStorage) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	body, err := json.Marshal(map[string][]string{"prefixes": paths})
	if err != nil {
		return fmt.Errorf("%w: %w", commonModels.ErrStorage, err)
	}
	target := fmt.Sprintf("%s/storage/v1/object/%s", s.baseURL, url.PathEscape(s.bucket))
	_, err = s.do(ctx, http.MethodDelete, target, bytes.NewReader(body), "application/json")
	return err
}
