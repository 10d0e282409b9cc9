package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
)

// EpubExtractor extracts EPUB ebooks. The OCF container is a zip archive;
// META-INF/container.xml points at the OPF package document, whose spine
// lists the reading-order chapters. Each chapter's XHTML is stripped to
// plain text and chapters are joined by blank lines.
type EpubExtractor struct{}

func (e *EpubExtractor) SupportedFormats() []string { return []string{"epub"} }

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Metadata struct {
		Title string `xml:"title"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Itemrefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

func (e *EpubExtractor) Extract(ctx context.Context, content []byte, info FileInfo) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip container: %v", ErrDecode, err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	opfPath, err := locateOPF(files)
	if err != nil {
		return nil, err
	}

	opfData, err := readZipFile(files[opfPath])
	if err != nil {
		return nil, fmt.Errorf("%w: reading package document: %v", ErrDecode, err)
	}
	var pkg epubPackage
	if err := xml.Unmarshal(opfData, &pkg); err != nil {
		return nil, fmt.Errorf("%w: invalid package document: %v", ErrDecode, err)
	}

	hrefs := make(map[string]string, len(pkg.Manifest.Items))
	docItems := make(map[string]bool, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		hrefs[item.ID] = item.Href
		if item.MediaType == "application/xhtml+xml" || item.MediaType == "text/html" {
			docItems[item.ID] = true
		}
	}

	// Spine order is reading order. A spine-less (or id-mismatched) package
	// falls back to manifest order.
	var order []string
	for _, ref := range pkg.Spine.Itemrefs {
		if docItems[ref.IDRef] {
			order = append(order, ref.IDRef)
		}
	}
	if len(order) == 0 {
		for _, item := range pkg.Manifest.Items {
			if docItems[item.ID] {
				order = append(order, item.ID)
			}
		}
	}

	base := path.Dir(opfPath)
	var chapters []string
	for _, id := range order {
		href := hrefs[id]
		name := href
		if base != "." {
			name = path.Join(base, href)
		}
		f, ok := files[name]
		if !ok {
			slog.Warn("EPUB spine item missing from archive", "href", name)
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			slog.Warn("failed to read EPUB chapter", "href", name, "error", err)
			continue
		}
		if text := stripHTML(string(data)); text != "" {
			chapters = append(chapters, text)
		}
	}

	full := strings.Join(chapters, "\n\n")

	metadata := make(map[string]string)
	if title := strings.TrimSpace(pkg.Metadata.Title); title != "" {
		metadata[MetaTitle] = title
	}

	slog.Debug("parsed EPUB", "chars", len(full), "chapters", len(chapters))
	return &Document{Content: full, Metadata: metadata}, nil
}

// locateOPF finds the package document, preferring the container.xml
// pointer and falling back to scanning for a .opf entry.
func locateOPF(files map[string]*zip.File) (string, error) {
	if f, ok := files["META-INF/container.xml"]; ok {
		data, err := readZipFile(f)
		if err == nil {
			var c epubContainer
			if xml.Unmarshal(data, &c) == nil {
				for _, rf := range c.Rootfiles {
					if _, ok := files[rf.FullPath]; ok {
						return rf.FullPath, nil
					}
				}
			}
		}
	}
	for name := range files {
		if strings.HasSuffix(name, ".opf") {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: no OPF package document found", ErrDecode)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
