package extractor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XlsxExtractor extracts spreadsheet workbooks. Each sheet becomes a block
// headed by the sheet name with rows rendered as tab-separated lines.
type XlsxExtractor struct{}

func (e *XlsxExtractor) SupportedFormats() []string { return []string{"xlsx", "xlsm"} }

func (e *XlsxExtractor) Extract(ctx context.Context, content []byte, info FileInfo) (*Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var blocks []string
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		var b strings.Builder
		b.WriteString(sheet)
		for _, row := range rows {
			line := strings.TrimRight(strings.Join(row, "\t"), "\t")
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString("\n")
			b.WriteString(line)
		}
		blocks = append(blocks, b.String())
	}

	full := strings.Join(blocks, "\n\n")
	metadata := map[string]string{MetaSheetCount: strconv.Itoa(len(sheets))}

	slog.Debug("parsed workbook", "chars", len(full), "sheets", len(sheets))
	return &Document{Content: full, Metadata: metadata}, nil
}
