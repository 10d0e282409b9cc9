package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// DocxExtractor extracts Word documents by streaming word/document.xml and
// collecting the <w:t> runs of each paragraph. Paragraphs are joined by
// single newlines.
type DocxExtractor struct{}

func (e *DocxExtractor) SupportedFormats() []string { return []string{"docx"} }

func (e *DocxExtractor) Extract(ctx context.Context, content []byte, info FileInfo) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip container: %v", ErrDecode, err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("%w: opening document.xml: %v", ErrDecode, err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("%w: reading document.xml: %v", ErrDecode, err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("%w: word/document.xml not found", ErrDecode)
	}

	paragraphs, err := docxParagraphs(docXML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	full := strings.Join(paragraphs, "\n")
	slog.Debug("parsed DOCX", "chars", len(full), "paragraphs", len(paragraphs))
	return &Document{Content: full, Metadata: map[string]string{}}, nil
}

// docxParagraphs walks the WordprocessingML token stream, accumulating text
// runs per <w:p> element.
func docxParagraphs(docXML []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(docXML))

	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = inPara
			case "tab":
				if inPara {
					current.WriteString("\t")
				}
			case "br":
				if inPara {
					current.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
