package extractor

import (
	"context"
	"strings"
	"unicode/utf8"
)

// TextExtractor passes plain-text formats through unchanged, replacing any
// invalid UTF-8 with the replacement rune.
type TextExtractor struct{}

func (e *TextExtractor) SupportedFormats() []string {
	return []string{"txt", "md", "markdown", "log", "csv"}
}

func (e *TextExtractor) Extract(ctx context.Context, content []byte, info FileInfo) (*Document, error) {
	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	return &Document{Content: text, Metadata: map[string]string{}}, nil
}
