package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brunobiangulo/docreader/safexml"
)

// ENEXExtractor extracts Evernote export files. Each <note> element carries
// a <title> and a <content> child whose CDATA holds XHTML markup; the markup
// is stripped to plain text. A note with only a title still yields the
// title, and vice versa.
type ENEXExtractor struct{}

func (e *ENEXExtractor) SupportedFormats() []string { return []string{"enex"} }

func (e *ENEXExtractor) Extract(ctx context.Context, content []byte, info FileInfo) (*Document, error) {
	root, err := safexml.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	var noteTexts []string
	for _, note := range root.All("note") {
		var parts []string

		if title := note.Child("title"); title != nil {
			if t := strings.TrimSpace(title.Text()); t != "" {
				parts = append(parts, t)
			}
		}
		if body := note.Child("content"); body != nil {
			if t := stripHTML(body.Text()); t != "" {
				parts = append(parts, t)
			}
		}

		if len(parts) > 0 {
			noteTexts = append(noteTexts, strings.Join(parts, "\n"))
		}
	}

	full := strings.Join(noteTexts, "\n\n")
	slog.Debug("parsed ENEX export", "chars", len(full), "notes", len(noteTexts))
	return &Document{Content: full, Metadata: map[string]string{}}, nil
}
