package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestIpynbMarkdownAndCode(t *testing.T) {
	nb := `{
 "cells": [
  {"cell_type": "markdown", "source": ["# Title"]},
  {"cell_type": "code", "source": ["x = 1"], "outputs": []}
 ],
 "metadata": {"kernelspec": {"display_name": "Python 3", "name": "python3", "language": "python"}},
 "nbformat": 4
}`
	doc, err := (&IpynbExtractor{}).Extract(context.Background(), []byte(nb), FileInfo{Format: "ipynb"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	want := "# Title\n\n```python\nx = 1\n```"
	if doc.Content != want {
		t.Errorf("content = %q, want %q", doc.Content, want)
	}
	if doc.Metadata[MetaKernel] != "Python 3" {
		t.Errorf("kernel metadata = %q, want %q", doc.Metadata[MetaKernel], "Python 3")
	}
}

func TestIpynbOutputs(t *testing.T) {
	nb := `{
 "cells": [
  {"cell_type": "code", "source": "print('hi')", "outputs": [
    {"output_type": "stream", "text": ["hi\n"]},
    {"output_type": "execute_result", "data": {"text/plain": ["42"]}},
    {"output_type": "error", "ename": "ValueError", "evalue": "bad"}
  ]}
 ],
 "metadata": {}
}`
	doc, err := (&IpynbExtractor{}).Extract(context.Background(), []byte(nb), FileInfo{Format: "ipynb"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !strings.Contains(doc.Content, "Output:\nhi\n\n42\nValueError: bad") {
		t.Errorf("content = %q, want combined outputs block", doc.Content)
	}
}

func TestIpynbV3Worksheets(t *testing.T) {
	nb := `{
 "worksheets": [{"cells": [{"cell_type": "markdown", "source": "legacy cell"}]}],
 "metadata": {}
}`
	doc, err := (&IpynbExtractor{}).Extract(context.Background(), []byte(nb), FileInfo{Format: "ipynb"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if doc.Content != "legacy cell" {
		t.Errorf("content = %q, want v3 worksheet cell", doc.Content)
	}
}

func TestIpynbEmptyCellsSkipped(t *testing.T) {
	nb := `{"cells": [
  {"cell_type": "markdown", "source": "  \n"},
  {"cell_type": "code", "source": "", "outputs": []},
  {"cell_type": "raw", "source": "kept"}
 ], "metadata": {}}`
	doc, err := (&IpynbExtractor{}).Extract(context.Background(), []byte(nb), FileInfo{Format: "ipynb"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if doc.Content != "kept" {
		t.Errorf("content = %q, want only non-blank cells", doc.Content)
	}
}

func TestIpynbInvalidJSON(t *testing.T) {
	_, err := (&IpynbExtractor{}).Extract(context.Background(), []byte("{not json"), FileInfo{Format: "ipynb"})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("invalid JSON error = %v, want ErrDecode", err)
	}
}
