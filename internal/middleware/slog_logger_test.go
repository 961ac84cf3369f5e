package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripshare/internal/middleware"
)

// serveLogged runs one request through NewSlogLogger and returns the parsed log line.
func serveLogged(t *testing.T, status int, req *http.Request) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := middleware.NewSlogLogger(logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}),
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, status, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSlogLogger_logsRequestFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	// Stand in for chimiddleware.RequestID.
	req = req.WithContext(context.WithValue(req.Context(), chimiddleware.RequestIDKey, "test-req-id"))

	entry := serveLogged(t, http.StatusOK, req)

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/healthz", entry["path"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
	assert.Equal(t, "test-req-id", entry["request_id"])
	assert.NotNil(t, entry["duration_ms"])
	assert.NotContains(t, entry, "user_id")
}

func TestSlogLogger_includesUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/trips", nil)
	req.Header.Set(middleware.UserIDHeader, "3f2b0f5e-8f4c-4c52-9a53-0d0a4b1f9a11")

	entry := serveLogged(t, http.StatusCreated, req)

	assert.Equal(t, "3f2b0f5e-8f4c-4c52-9a53-0d0a4b1f9a11", entry["user_id"])
}

func TestSlogLogger_levelFollowsStatus(t *testing.T) {
	cases := map[int]string{
		http.StatusOK:                  "INFO",
		http.StatusNotFound:            "WARN",
		http.StatusBadRequest:          "WARN",
		http.StatusServiceUnavailable:  "ERROR",
		http.StatusInternalServerError: "ERROR",
	}
	for status, level := range cases {
		t.Run(http.StatusText(status), func(t *testing.T) {
			entry := serveLogged(t, status, httptest.NewRequest(http.MethodGet, "/trips/search", nil))
			assert.Equal(t, level, entry["level"])
		})
	}
}
