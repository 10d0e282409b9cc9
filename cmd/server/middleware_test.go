package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testChain(apiKey string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/formats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"formats": {"eml", "pdf"}})
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("exploded")
	})
	return wrap(mux, apiKey)
}

func TestAuthRequired(t *testing.T) {
	h := testChain("secret")

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing token", "/formats", "", http.StatusUnauthorized},
		{"wrong token", "/formats", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "/formats", "Basic secret", http.StatusUnauthorized},
		{"valid token", "/formats", "Bearer secret", http.StatusOK},
		{"health is open", "/health", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAuthDisabledWithoutKey(t *testing.T) {
	h := testChain("")

	req := httptest.NewRequest(http.MethodGet, "/formats", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d with auth disabled", rec.Code, http.StatusOK)
	}
}

func TestRecoveryReturns500(t *testing.T) {
	h := testChain("")

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Errorf("body = %q, want generic error message", rec.Body.String())
	}
}

func TestStatusWriterDefaults(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}

	if sw.status() != http.StatusOK {
		t.Errorf("untouched status = %d, want 200", sw.status())
	}
	if _, err := sw.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if sw.status() != http.StatusOK || sw.written != 5 {
		t.Errorf("after Write: status = %d, written = %d", sw.status(), sw.written)
	}

	rec = httptest.NewRecorder()
	sw = &statusWriter{ResponseWriter: rec}
	sw.WriteHeader(http.StatusTeapot)
	sw.WriteHeader(http.StatusOK) // first write wins
	if sw.status() != http.StatusTeapot {
		t.Errorf("status = %d, want %d", sw.status(), http.StatusTeapot)
	}
}
