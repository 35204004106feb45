package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusRecorderCapturesWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &HttpStatusRecorder{ResponseWriter: rec, Status: http.StatusOK}

	sr.WriteHeader(http.StatusTeapot)

	if sr.Status != http.StatusTeapot || rec.Code != http.StatusTeapot {
		t.Fatalf("status not propagated: recorder=%d underlying=%d", sr.Status, rec.Code)
	}
}
