package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brunobiangulo/docreader/safexml"
)

// FictionBook 2.0 XML namespace.
const fb2NS = "http://www.gribuser.ru/xml/fictionbook/2.0"

// FB2Extractor extracts FictionBook 2.0 ebooks. Text is collected from all
// <p> elements inside <body> sections (FB2 files can carry several bodies,
// e.g. the main text plus footnotes), including text nested in inline markup.
type FB2Extractor struct{}

func (e *FB2Extractor) SupportedFormats() []string { return []string{"fb2"} }

func (e *FB2Extractor) Extract(ctx context.Context, content []byte, info FileInfo) (*Document, error) {
	root, err := safexml.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	paragraphs := fb2Paragraphs(root, true)

	// Some real-world FB2 files omit the namespace declaration. When the
	// qualified search comes up empty, retry once ignoring namespaces.
	if len(paragraphs) == 0 {
		slog.Debug("no namespaced FB2 paragraphs found, retrying without namespace")
		paragraphs = fb2Paragraphs(root, false)
	}

	full := strings.Join(paragraphs, "\n")
	slog.Debug("parsed FB2 document", "chars", len(full), "paragraphs", len(paragraphs))
	return &Document{Content: full, Metadata: map[string]string{}}, nil
}

func fb2Paragraphs(root *safexml.Node, namespaced bool) []string {
	bodies := root.All("body")
	if namespaced {
		bodies = root.AllNS(fb2NS, "body")
	}

	var paragraphs []string
	for _, body := range bodies {
		ps := body.All("p")
		if namespaced {
			ps = body.AllNS(fb2NS, "p")
		}
		for _, p := range ps {
			if text := strings.TrimSpace(p.DeepText()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
	}
	return paragraphs
}
