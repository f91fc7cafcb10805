package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestAuthMiddleware(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	called := false
	h := AuthMiddleware("secret", log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{"no header", "", http.StatusUnauthorized, "missing bearer token"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "missing bearer token"},
		{"wrong key", "Bearer nope", http.StatusUnauthorized, "invalid api key"},
		{"good key", "Bearer secret", http.StatusOK, ""},
	}
	for _, tc := range cases {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/devis/x/lignes", nil)
		if tc.authHeader != "" {
			req.Header.Set("Authorization", tc.authHeader)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tc.wantStatus {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.wantStatus, rec.Code)
		}
		if tc.wantStatus == http.StatusOK {
			if !called {
				t.Errorf("%s: handler not reached", tc.name)
			}
			continue
		}
		if called {
			t.Errorf("%s: handler reached despite rejection", tc.name)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: expected json error body, got content type %q", tc.name, ct)
		}
		if !strings.Contains(rec.Body.String(), tc.wantBody) {
			t.Errorf("%s: expected body containing %q, got %s", tc.name, tc.wantBody, rec.Body.String())
		}
	}
}

func TestRequestLogger_IncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := middleware.RequestID(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	logged := buf.String()
	if !strings.Contains(logged, `"request_id"`) {
		t.Errorf("log line missing request_id: %s", logged)
	}
	if !strings.Contains(logged, `"status":204`) {
		t.Errorf("log line missing wrapped status: %s", logged)
	}
}
