package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/gunitk/testforge/logger"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var seenID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetRequestID(r.Context())
		if !ok {
			t.Error("request ID missing from context")
		}
		seenID = id
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	NewRequestLogger(logger.NewTestLogger()).Handler(inner).ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusTeapot)
	}

	headerID := w.Header().Get("X-Request-ID")
	if headerID == "" {
		t.Fatal("X-Request-ID header not set")
	}
	if headerID != seenID {
		t.Errorf("header request ID = %q, context request ID = %q", headerID, seenID)
	}
	if _, err := uuid.Parse(headerID); err != nil {
		t.Errorf("request ID %q is not a UUID: %v", headerID, err)
	}
}

func TestRequestLogger_DistinctIDs(t *testing.T) {
	t.Parallel()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := NewRequestLogger(logger.NewTestLogger()).Handler(okHandler)

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/test", nil))
	second := httptest.NewRecorder()
	wrapped.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/test", nil))

	if first.Header().Get("X-Request-ID") == second.Header().Get("X-Request-ID") {
		t.Error("consecutive requests share a request ID")
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if _, ok := GetRequestID(req.Context()); ok {
		t.Error("GetRequestID() reported an ID on a bare context")
	}
}
