package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// IpynbExtractor extracts Jupyter notebooks. Markdown and raw cells are kept
// verbatim, code cells are wrapped in fenced code blocks, and textual cell
// outputs are appended. Both nbformat v4 (cells at top level) and v3 (cells
// under worksheets) are handled.
type IpynbExtractor struct{}

func (e *IpynbExtractor) SupportedFormats() []string { return []string{"ipynb"} }

type notebook struct {
	Cells      []notebookCell `json:"cells"`
	Worksheets []struct {
		Cells []notebookCell `json:"cells"`
	} `json:"worksheets"`
	Metadata struct {
		Kernelspec struct {
			DisplayName string `json:"display_name"`
			Name        string `json:"name"`
			Language    string `json:"language"`
		} `json:"kernelspec"`
	} `json:"metadata"`
}

type notebookCell struct {
	CellType string           `json:"cell_type"`
	Source   multilineText    `json:"source"`
	Outputs  []notebookOutput `json:"outputs"`
}

type notebookOutput struct {
	OutputType string                   `json:"output_type"`
	Text       multilineText            `json:"text"`
	Data       map[string]multilineText `json:"data"`
	Ename      string                   `json:"ename"`
	Evalue     string                   `json:"evalue"`
}

// multilineText accepts both JSON string and array-of-strings source fields.
type multilineText string

func (m *multilineText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = multilineText(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*m = multilineText(strings.Join(lines, ""))
	return nil
}

func (e *IpynbExtractor) Extract(ctx context.Context, content []byte, info FileInfo) (*Document, error) {
	var nb notebook
	if err := json.Unmarshal(content, &nb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	kernel := nb.Metadata.Kernelspec.DisplayName
	if kernel == "" {
		kernel = nb.Metadata.Kernelspec.Name
	}
	lang := nb.Metadata.Kernelspec.Language
	if lang == "" {
		lang = "python"
	}

	cells := nb.Cells
	if cells == nil && len(nb.Worksheets) > 0 {
		cells = nb.Worksheets[0].Cells
	}

	var sections []string
	for _, cell := range cells {
		source := string(cell.Source)
		switch cell.CellType {
		case "markdown", "raw":
			if strings.TrimSpace(source) != "" {
				sections = append(sections, source)
			}
		case "code":
			if strings.TrimSpace(source) != "" {
				sections = append(sections, "```"+lang+"\n"+source+"\n```")
			}
			if out := cellOutputs(cell.Outputs); strings.TrimSpace(out) != "" {
				sections = append(sections, "Output:\n"+out)
			}
		}
	}

	full := strings.Join(sections, "\n\n")

	metadata := make(map[string]string)
	if kernel != "" {
		metadata[MetaKernel] = kernel
	}

	slog.Debug("parsed notebook", "chars", len(full), "cells", len(cells), "kernel", kernel)
	return &Document{Content: full, Metadata: metadata}, nil
}

// cellOutputs collects the textual outputs of a code cell: stream text,
// text/plain results, and error summaries.
func cellOutputs(outputs []notebookOutput) string {
	var parts []string
	for _, out := range outputs {
		switch out.OutputType {
		case "stream":
			if out.Text != "" {
				parts = append(parts, string(out.Text))
			}
		case "execute_result", "display_data":
			if text := out.Data["text/plain"]; text != "" {
				parts = append(parts, string(text))
			}
		case "error":
			if out.Ename != "" || out.Evalue != "" {
				parts = append(parts, out.Ename+": "+out.Evalue)
			}
		}
	}
	return strings.Join(parts, "\n")
}
