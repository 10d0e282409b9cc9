package convert

import (
	"context"
	"log/slog"

	"github.com/brunobiangulo/docreader/extractor"
	"github.com/brunobiangulo/docreader/storage"
)

// OfficeExtractor chains the office converter into the downstream PDF
// extractor: convert to PDF, extract text from the PDF, and publish the
// intermediate PDF to the artifact store for preview. A publish failure is
// logged and swallowed; text extraction succeeding is the contract, the
// preview is best-effort.
type OfficeExtractor struct {
	runner *Runner
	pdf    extractor.Extractor
	store  storage.Store
}

func NewOfficeExtractor(cfg OfficeConfig, pdf extractor.Extractor, store storage.Store) *OfficeExtractor {
	if store == nil {
		store = storage.NopStore{}
	}
	return &OfficeExtractor{runner: NewOfficeRunner(cfg), pdf: pdf, store: store}
}

func (e *OfficeExtractor) SupportedFormats() []string { return OfficeFormats() }

func (e *OfficeExtractor) Extract(ctx context.Context, content []byte, info extractor.FileInfo) (*extractor.Document, error) {
	res, err := e.runner.Run(ctx, Request{Content: content, Extension: info.Format})
	if err != nil {
		// Conversion failed; there is nothing to extract from.
		return nil, err
	}

	doc, err := e.pdf.Extract(ctx, res.Output, extractor.FileInfo{Name: info.Name, Format: "pdf"})
	if err != nil {
		return nil, err
	}

	url, err := e.store.Store(ctx, res.Output, ".pdf")
	switch {
	case err != nil:
		slog.Warn("failed to publish converted PDF preview", "error", err)
	case url == "":
		slog.Warn("artifact store returned empty locator, preview omitted")
	default:
		if doc.Metadata == nil {
			doc.Metadata = make(map[string]string)
		}
		doc.Metadata[extractor.MetaPDFPreview] = url
		slog.Info("published PDF preview", "url", url)
	}

	return doc, nil
}
