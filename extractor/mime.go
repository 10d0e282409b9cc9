package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"
)

// mimeParts holds the leaf bodies of a MIME message grouped by kind, each
// slice in document order.
type mimeParts struct {
	plain []string
	html  []string
}

// readMIME parses a MIME message and classifies its leaf parts. The part
// tree is walked exactly once; multipart containers are skipped, and each
// leaf body arrives already decoded from its transfer encoding and charset.
func readMIME(content []byte) (*enmime.Envelope, *mimeParts, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	parts := &mimeParts{}
	if env.Root != nil {
		for _, p := range env.Root.DepthMatchAll(func(p *enmime.Part) bool {
			return p.ContentType == "text/plain" || p.ContentType == "text/html"
		}) {
			body := string(p.Content)
			switch p.ContentType {
			case "text/plain":
				if strings.TrimSpace(body) != "" {
					parts.plain = append(parts.plain, strings.TrimSpace(body))
				}
			case "text/html":
				if strings.TrimSpace(body) != "" {
					parts.html = append(parts.html, body)
				}
			}
		}
	}
	return env, parts, nil
}

// plainFirst returns plain-part text when any exists, otherwise stripped
// HTML. Message-style formats use this: plain text in an email is the
// authored content, HTML a rendering of it.
func (m *mimeParts) plainFirst() string {
	if len(m.plain) > 0 {
		return strings.Join(m.plain, "\n\n")
	}
	return m.strippedHTML()
}

// htmlFirst returns stripped HTML when any exists, otherwise plain text.
// Archive-style formats (saved web pages) use this: the HTML is the page,
// plain parts are usually extraneous.
func (m *mimeParts) htmlFirst() string {
	if len(m.html) > 0 {
		return m.strippedHTML()
	}
	return strings.Join(m.plain, "\n\n")
}

func (m *mimeParts) strippedHTML() string {
	var texts []string
	for _, h := range m.html {
		if t := stripHTML(h); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n\n")
}
