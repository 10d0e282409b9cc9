package extractor

import (
	"context"
	"log/slog"
)

// MHTMLExtractor extracts MHTML web archives (RFC 2557). The HTML parts are
// the saved page and take precedence; plain-text parts are only used when no
// HTML part exists.
type MHTMLExtractor struct{}

func (e *MHTMLExtractor) SupportedFormats() []string { return []string{"mht", "mhtml"} }

func (e *MHTMLExtractor) Extract(ctx context.Context, content []byte, info FileInfo) (*Document, error) {
	_, parts, err := readMIME(content)
	if err != nil {
		return nil, err
	}

	text := parts.htmlFirst()
	slog.Debug("parsed MHTML archive", "chars", len(text), "html_parts", len(parts.html))
	return &Document{Content: text, Metadata: map[string]string{}}, nil
}
