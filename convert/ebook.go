package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brunobiangulo/docreader/extractor"
)

const ebookInstallHint = "Install Calibre (https://calibre-ebook.com/) and ensure ebook-convert is on your PATH, or set EBOOK_CONVERT_PATH."

// Well-known Calibre install locations checked before PATH.
var ebookConvertCandidates = []string{
	"/usr/bin/ebook-convert",
	"/opt/calibre/ebook-convert",
	"/Applications/calibre.app/Contents/MacOS/ebook-convert",
	"C:\\Program Files\\Calibre2\\ebook-convert.exe",
}

// EbookConfig configures the ebook conversion route.
type EbookConfig struct {
	// BinaryPath overrides tool resolution; empty consults
	// EBOOK_CONVERT_PATH, well-known locations, then PATH.
	BinaryPath string

	// Concurrency caps simultaneous ebook-convert processes.
	Concurrency int

	// Timeout bounds one conversion run.
	Timeout time.Duration
}

// NewEbookRunner builds the Runner for Calibre's ebook-convert, which turns
// an ebook into a plain-text file: ebook-convert input.<ext> output.txt.
func NewEbookRunner(cfg EbookConfig) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Runner{
		kind:    "ebook",
		timeout: cfg.Timeout,
		gate:    newGate(cfg.Concurrency),
		resolve: func() (string, error) {
			override := cfg.BinaryPath
			if override == "" {
				override = os.Getenv("EBOOK_CONVERT_PATH")
			}
			return resolveTool(override, "ebook-convert", ebookConvertCandidates, ebookInstallHint)
		},
		plan: func(workspace, inputPath string) ([]string, func() (string, error)) {
			outPath := filepath.Join(workspace, "output.txt")
			args := []string{inputPath, outPath}
			locate := func() (string, error) {
				if !fileExists(outPath) {
					return "", fmt.Errorf("output.txt missing")
				}
				return outPath, nil
			}
			return args, locate
		},
	}
}

// EbookExtractor extracts ebook formats whose only practical route to text
// is Calibre. CHM archives ride the same route; Calibre reads them natively.
type EbookExtractor struct {
	runner *Runner
}

func NewEbookExtractor(cfg EbookConfig) *EbookExtractor {
	return &EbookExtractor{runner: NewEbookRunner(cfg)}
}

func (e *EbookExtractor) SupportedFormats() []string {
	return []string{"mobi", "azw", "azw3", "prc", "chm"}
}

func (e *EbookExtractor) Extract(ctx context.Context, content []byte, info extractor.FileInfo) (*extractor.Document, error) {
	res, err := e.runner.Run(ctx, Request{Content: content, Extension: info.Format})
	if err != nil {
		return nil, err
	}
	text := strings.ToValidUTF8(string(res.Output), "\uFFFD")
	return &extractor.Document{Content: text, Metadata: map[string]string{}}, nil
}
