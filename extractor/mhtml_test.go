package extractor

import (
	"context"
	"strings"
	"testing"
)

func mhtmlFixture(withPlain bool) []byte {
	lines := []string{
		"From: <Saved by Blink>",
		"Subject: Example Page",
		"MIME-Version: 1.0",
		`Content-Type: multipart/related; boundary="----MultipartBoundary--abc"`,
		"",
	}
	if withPlain {
		lines = append(lines,
			"------MultipartBoundary--abc",
			"Content-Type: text/plain",
			"",
			"extraneous plain text",
		)
	}
	lines = append(lines,
		"------MultipartBoundary--abc",
		"Content-Type: text/html",
		"Content-Location: https://example.com/",
		"",
		"<html><head><title>Example Page</title></head><body><h1>Heading</h1><p>Saved page body.</p></body></html>",
		"------MultipartBoundary--abc--",
	)
	return []byte(strings.Join(lines, "\r\n"))
}

func TestMHTMLPrefersHTML(t *testing.T) {
	doc, err := (&MHTMLExtractor{}).Extract(context.Background(), mhtmlFixture(true), FileInfo{Format: "mhtml"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !strings.Contains(doc.Content, "Saved page body.") {
		t.Errorf("content = %q, want HTML-derived text", doc.Content)
	}
	if strings.Contains(doc.Content, "extraneous plain text") {
		t.Errorf("content = %q, plain part must be ignored when HTML exists", doc.Content)
	}
}

func TestMHTMLBlockBoundariesBecomeNewlines(t *testing.T) {
	doc, err := (&MHTMLExtractor{}).Extract(context.Background(), mhtmlFixture(false), FileInfo{Format: "mhtml"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !strings.Contains(doc.Content, "Heading\nSaved page body.") {
		t.Errorf("content = %q, want heading and paragraph on separate lines", doc.Content)
	}
}

func TestMHTMLPlainFallback(t *testing.T) {
	raw := strings.Join([]string{
		"MIME-Version: 1.0",
		"Content-Type: text/plain",
		"",
		"only plain content",
	}, "\r\n")

	doc, err := (&MHTMLExtractor{}).Extract(context.Background(), []byte(raw), FileInfo{Format: "mht"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !strings.Contains(doc.Content, "only plain content") {
		t.Errorf("content = %q, want plain fallback", doc.Content)
	}
}

func TestMHTMLNoTextParts(t *testing.T) {
	raw := strings.Join([]string{
		"MIME-Version: 1.0",
		`Content-Type: multipart/related; boundary="b"`,
		"",
		"--b",
		"Content-Type: image/png",
		"Content-Transfer-Encoding: base64",
		"",
		"iVBORw0KGgo=",
		"--b--",
	}, "\r\n")

	doc, err := (&MHTMLExtractor{}).Extract(context.Background(), []byte(raw), FileInfo{Format: "mhtml"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if doc.Content != "" {
		t.Errorf("content = %q, want empty document for no text parts", doc.Content)
	}
}
