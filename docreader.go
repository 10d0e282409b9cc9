// Package docreader extracts plain text and lightweight metadata from
// heterogeneous document formats: ebooks, archives, emails, notebooks, and
// office documents. Formats with no practical native route to text are
// delegated to external converters (Calibre, LibreOffice) under bounded
// concurrency with isolated workspaces.
package docreader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/brunobiangulo/docreader/convert"
	"github.com/brunobiangulo/docreader/extractor"
	"github.com/brunobiangulo/docreader/storage"
	"github.com/brunobiangulo/docreader/store"
)

// Document is the extraction result: plain text plus string metadata.
type Document = extractor.Document

// Reader dispatches raw document bytes to the extractor registered for
// their declared format. A Reader is safe for concurrent use; the only
// cross-request shared state is the two converter admission gates.
type Reader struct {
	cfg      Config
	registry *extractor.Registry
	cache    *store.Store
}

// New creates a Reader with every built-in extractor registered, the
// converter-backed routes wired to their admission gates, and the optional
// extraction cache opened.
func New(cfg Config) (*Reader, error) {
	registry := extractor.NewRegistry()

	ebook := convert.NewEbookExtractor(convert.EbookConfig{
		BinaryPath:  cfg.EbookConvertPath,
		Concurrency: cfg.EbookConcurrency,
		Timeout:     cfg.conversionTimeout(),
	})
	for _, f := range ebook.SupportedFormats() {
		registry.Register(f, ebook)
	}

	var artifacts storage.Store = storage.NopStore{}
	if cfg.PreviewDir != "" {
		local, err := storage.NewLocalStore(cfg.PreviewDir)
		if err != nil {
			return nil, fmt.Errorf("docreader: preview store: %w", err)
		}
		artifacts = local
	}

	office := convert.NewOfficeExtractor(convert.OfficeConfig{
		BinaryPath:  cfg.LibreOfficePath,
		Concurrency: cfg.OfficeConcurrency,
		Timeout:     cfg.conversionTimeout(),
	}, &extractor.PDFExtractor{}, artifacts)
	for _, f := range office.SupportedFormats() {
		registry.Register(f, office)
	}

	r := &Reader{cfg: cfg, registry: registry}

	if cfg.CachePath != "" {
		cache, err := store.Open(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("docreader: opening cache: %w", err)
		}
		r.cache = cache
	}

	return r, nil
}

// Extract converts raw document bytes into a Document. The format is taken
// from fileName's extension. The input slice is never mutated and any temp
// files created along the way are gone before Extract returns.
func (r *Reader) Extract(ctx context.Context, content []byte, fileName string) (*Document, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))

	ex, err := r.registry.Get(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	var hash string
	if r.cache != nil {
		hash = store.Hash(content)
		cached, err := r.cache.Get(ctx, hash)
		if err != nil {
			slog.Warn("extraction cache read failed", "error", err)
		} else if cached != nil {
			slog.Debug("extraction cache hit", "hash", hash, "format", format)
			return &Document{Content: cached.Content, Metadata: cached.Metadata}, nil
		}
	}

	slog.Info("extracting document", "file", fileName, "format", format, "bytes", len(content))
	doc, err := ex.Extract(ctx, content, extractor.FileInfo{Name: fileName, Format: format})
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, store.CachedDocument{
			ContentHash: hash,
			FileName:    filepath.Base(fileName),
			Format:      format,
			Content:     doc.Content,
			Metadata:    doc.Metadata,
		}); err != nil {
			slog.Warn("extraction cache write failed", "error", err)
		}
	}

	return doc, nil
}

// ExtractFile reads a file from disk and extracts it.
func (r *Reader) ExtractFile(ctx context.Context, path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docreader: reading %s: %w", path, err)
	}
	return r.Extract(ctx, content, path)
}

// SupportedFormats returns every format the Reader can dispatch, sorted.
func (r *Reader) SupportedFormats() []string {
	return r.registry.Formats()
}

// Register replaces the extractor for a format. Useful for swapping the
// artifact store or a format handler in embedding applications.
func (r *Reader) Register(format string, e extractor.Extractor) {
	r.registry.Register(format, e)
}

// Close releases the extraction cache, if one is open.
func (r *Reader) Close() error {
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}
