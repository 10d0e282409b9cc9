package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/brunobiangulo/docreader"
)

type handler struct {
	reader *docreader.Reader
}

func newHandler(r *docreader.Reader) *handler {
	return &handler{reader: r}
}

// POST /extract
// Accepts a multipart file upload and returns the extracted document.
func (h *handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(100 << 20); err != nil { // 100MB max
		writeError(w, http.StatusBadRequest, "invalid request: expected multipart upload with 'file'")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		slog.Error("reading uploaded file", "error", err)
		return
	}

	// Sanitise filename to prevent path traversal.
	safeName := filepath.Base(header.Filename)

	doc, err := h.reader.Extract(ctx, content, safeName)
	if err != nil {
		status, msg := classifyError(err)
		writeError(w, status, msg)
		slog.Error("extraction failed", "file", safeName, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename": safeName,
		"content":  doc.Content,
		"metadata": doc.Metadata,
	})
}

// GET /formats
func (h *handler) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"formats": h.reader.SupportedFormats(),
	})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// classifyError maps extraction failures onto HTTP statuses without leaking
// internals. Tool failures keep their diagnostics; they are operator-facing.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, docreader.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, err.Error()
	case errors.Is(err, docreader.ErrDecode), errors.Is(err, docreader.ErrMalformedInput):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, docreader.ErrToolNotFound):
		return http.StatusNotImplemented, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
