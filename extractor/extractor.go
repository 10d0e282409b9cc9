// Package extractor converts raw document bytes of one format into
// normalized plain text plus a small set of string metadata.
package extractor

import (
	"context"
	"errors"
)

// Well-known metadata keys produced by the built-in extractors.
const (
	MetaSubject     = "subject"
	MetaFrom        = "from"
	MetaDate        = "date"
	MetaTitle       = "title"
	MetaKernel      = "kernel"
	MetaPDFPreview  = "pdf_preview_path"
	MetaSheetCount  = "sheet_count"
)

// ErrDecode is returned when the byte stream cannot be parsed as the
// declared container format at all. "No extractable text found" is not an
// error; extractors return an empty Document for that.
var ErrDecode = errors.New("extractor: cannot decode input as declared format")

// Document is the result of one extraction: plain text content plus
// lightweight metadata. It is constructed once per call and owned by the
// caller after return.
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// FileInfo carries what the caller declared about the input.
type FileInfo struct {
	Name   string // original file name, may be empty
	Format string // lowercase extension without the dot, e.g. "eml"
}

// Extractor can extract text from a specific document format family.
// Implementations never mutate the input slice and clean up any transient
// temp files before returning, on every path.
type Extractor interface {
	Extract(ctx context.Context, content []byte, info FileInfo) (*Document, error)
	SupportedFormats() []string
}
