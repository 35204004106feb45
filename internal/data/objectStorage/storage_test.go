package objectStorage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPath(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "s-1/1700000000123-pitch_deck_v2_.pdf", BuildPath("s-1", now, "pitch deck (v2).pdf"))
	assert.Equal(t, "s-1/1700000000123-passwd", BuildPath("s-1", now, "../../etc/passwd"))
	assert.Equal(t, "s-1/1700000000123-upload", BuildPath("s-1", now, "..."))
}

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "s-1/1-notes.txt", []byte("hello"), "text/plain"))
	data, err := store.Download(ctx, "s-1/1-notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Remove(ctx, []string{"s-1/1-notes.txt", "s-1/missing.txt"}))
	_, err = store.Download(ctx, "s-1/1-notes.txt")
	assert.ErrorIs(t, err, commonModels.ErrNotFound)

	assert.ErrorIs(t, store.Upload(ctx, "../escape.txt", []byte("x"), ""), commonModels.ErrStorage)
}

func TestSupabaseStorage(t *testing.T) {
	var uploaded []byte
	var removed []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/storage/v1/object/documents/s-1/1-deck.pdf":
			uploaded, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && r.URL.Path == "/storage/v1/object/documents/s-1/1-deck.pdf":
			_, _ = w.Write(uploaded)
		case r.Method == http.MethodDelete && r.URL.Path == "/storage/v1/object/documents":
			var body struct {
				Prefixes []string `json:"prefixes"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			removed = body.Prefixes
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	store, err := NewSupabaseStorage(srv.URL+"/", "service-key", "documents", srv.Client())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "s-1/1-deck.pdf", []byte("%PDF"), "application/pdf"))
	data, err := store.Download(ctx, "s-1/1-deck.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	require.NoError(t, store.Remove(ctx, []string{"s-1/1-deck.pdf"}))
	assert.Equal(t, []string{"s-1/1-deck.pdf"}, removed)

	_, err = store.Download(ctx, "s-1/other.pdf")
	assert.ErrorIs(t, err, commonModels.ErrStorage)
	assert.ErrorIs(t, err, commonModels.ErrNotFound)
}
