package extractor

import (
	"context"
	"log/slog"
	"strings"
)

// EMLExtractor extracts RFC 2822 email messages: a formatted header block
// (Subject, From, To, Date) followed by the body text. Plain-text parts are
// preferred; HTML-only messages are stripped to text.
type EMLExtractor struct{}

func (e *EMLExtractor) SupportedFormats() []string { return []string{"eml"} }

func (e *EMLExtractor) Extract(ctx context.Context, content []byte, info FileInfo) (*Document, error) {
	env, parts, err := readMIME(content)
	if err != nil {
		return nil, err
	}

	subject := env.GetHeader("Subject")
	from := env.GetHeader("From")
	to := env.GetHeader("To")
	date := env.GetHeader("Date")

	var headerLines []string
	if subject != "" {
		headerLines = append(headerLines, "Subject: "+subject)
	}
	if from != "" {
		headerLines = append(headerLines, "From: "+from)
	}
	if to != "" {
		headerLines = append(headerLines, "To: "+to)
	}
	if date != "" {
		headerLines = append(headerLines, "Date: "+date)
	}

	headerBlock := strings.Join(headerLines, "\n")
	body := parts.plainFirst()

	var full string
	switch {
	case headerBlock != "" && body != "":
		full = headerBlock + "\n\n" + body
	case headerBlock != "":
		full = headerBlock
	default:
		full = body
	}

	metadata := make(map[string]string)
	if subject != "" {
		metadata[MetaSubject] = subject
	}
	if from != "" {
		metadata[MetaFrom] = from
	}
	if date != "" {
		metadata[MetaDate] = date
	}

	slog.Debug("parsed EML message", "chars", len(full), "plain_parts", len(parts.plain), "html_parts", len(parts.html))
	return &Document{Content: full, Metadata: metadata}, nil
}
