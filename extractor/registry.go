package extractor

import (
	"fmt"
	"sort"
)

// Registry maps declared file formats to extractors. Dispatch is a static
// lookup table built once at construction; there is no dynamic discovery.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry creates a registry with the built-in byte-level extractors
// registered. Converter-backed extractors (ebook, office) are registered by
// the caller since they carry configuration.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}

	eml := &EMLExtractor{}
	msg := &MSGExtractor{}
	mhtml := &MHTMLExtractor{}
	fb2 := &FB2Extractor{}
	enex := &ENEXExtractor{}
	ipynb := &IpynbExtractor{}
	epub := &EpubExtractor{}
	pdf := &PDFExtractor{}
	docx := &DocxExtractor{}
	xlsx := &XlsxExtractor{}
	text := &TextExtractor{}

	for _, e := range []Extractor{eml, msg, mhtml, fb2, enex, ipynb, epub, pdf, docx, xlsx, text} {
		for _, f := range e.SupportedFormats() {
			r.extractors[f] = e
		}
	}
	return r
}

// Get returns the extractor registered for a format.
func (r *Registry) Get(format string) (Extractor, error) {
	e, ok := r.extractors[format]
	if !ok {
		return nil, fmt.Errorf("no extractor for format: %s", format)
	}
	return e, nil
}

// Register adds or replaces the extractor for a format.
func (r *Registry) Register(format string, e Extractor) {
	r.extractors[format] = e
}

// Formats returns all registered formats, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.extractors))
	for f := range r.extractors {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
