package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

// buildEpub assembles a minimal EPUB zip with chapters in the given spine
// order.
func buildEpub(t *testing.T, title string, chapters map[string]string, spine []string) []byte {
	t.Helper()

	var manifest, spineRefs strings.Builder
	for name := range chapters {
		id := strings.TrimSuffix(name, ".xhtml")
		manifest.WriteString(`<item id="` + id + `" href="` + name + `" media-type="application/xhtml+xml"/>`)
	}
	for _, name := range spine {
		spineRefs.WriteString(`<itemref idref="` + strings.TrimSuffix(name, ".xhtml") + `"/>`)
	}

	opf := `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
 <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>` + title + `</dc:title></metadata>
 <manifest>` + manifest.String() + `</manifest>
 <spine>` + spineRefs.String() + `</spine>
</package>`

	container := `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
 <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": container,
		"OEBPS/content.opf":      opf,
	}
	for name, body := range chapters {
		files["OEBPS/"+name] = body
	}
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestEpubSpineOrder(t *testing.T) {
	chapters := map[string]string{
		"ch1.xhtml": "<html><body><p>Chapter one.</p></body></html>",
		"ch2.xhtml": "<html><body><p>Chapter two.</p></body></html>",
	}
	// Spine reverses the file-name order on purpose.
	raw := buildEpub(t, "My Book", chapters, []string{"ch2.xhtml", "ch1.xhtml"})

	doc, err := (&EpubExtractor{}).Extract(context.Background(), raw, FileInfo{Format: "epub"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	want := "Chapter two.\n\nChapter one."
	if doc.Content != want {
		t.Errorf("content = %q, want %q (spine order)", doc.Content, want)
	}
	if doc.Metadata[MetaTitle] != "My Book" {
		t.Errorf("title metadata = %q, want %q", doc.Metadata[MetaTitle], "My Book")
	}
}

func TestEpubEmptySpineFallsBackToManifest(t *testing.T) {
	chapters := map[string]string{
		"only.xhtml": "<html><body>lone chapter</body></html>",
	}
	raw := buildEpub(t, "", chapters, nil)

	doc, err := (&EpubExtractor{}).Extract(context.Background(), raw, FileInfo{Format: "epub"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if doc.Content != "lone chapter" {
		t.Errorf("content = %q, want manifest fallback", doc.Content)
	}
}

func TestEpubNotAZip(t *testing.T) {
	_, err := (&EpubExtractor{}).Extract(context.Background(), []byte("definitely not a zip"), FileInfo{Format: "epub"})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("invalid zip error = %v, want ErrDecode", err)
	}
}

func TestEpubNoOPF(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("random.txt")
	w.Write([]byte("hello"))
	zw.Close()

	_, err := (&EpubExtractor{}).Extract(context.Background(), buf.Bytes(), FileInfo{Format: "epub"})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("missing OPF error = %v, want ErrDecode", err)
	}
}
