package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const officeInstallHint = "Install LibreOffice or set the LIBREOFFICE_PATH environment variable."

// Well-known LibreOffice install locations checked before PATH.
var sofficeCandidates = []string{
	"/usr/bin/soffice",
	"/usr/lib/libreoffice/program/soffice",
	"/opt/libreoffice25.2/program/soffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	"C:\\Program Files\\LibreOffice\\program\\soffice.exe",
	"C:\\Program Files (x86)\\LibreOffice\\program\\soffice.exe",
}

// OfficeConfig configures the office conversion route.
type OfficeConfig struct {
	// BinaryPath overrides tool resolution; empty consults
	// LIBREOFFICE_PATH, well-known locations, then PATH.
	BinaryPath string

	// Concurrency caps simultaneous soffice processes.
	Concurrency int

	// Timeout bounds one conversion run.
	Timeout time.Duration
}

// NewOfficeRunner builds the Runner for LibreOffice's headless PDF
// conversion. soffice holds process-wide lock files, so every invocation
// gets its own UserInstallation profile directory; concurrent runs never
// contend on the same lock.
func NewOfficeRunner(cfg OfficeConfig) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Runner{
		kind:    "office",
		timeout: cfg.Timeout,
		gate:    newGate(cfg.Concurrency),
		resolve: func() (string, error) {
			override := cfg.BinaryPath
			if override == "" {
				override = os.Getenv("LIBREOFFICE_PATH")
			}
			return resolveTool(override, "soffice", sofficeCandidates, officeInstallHint)
		},
		plan: func(workspace, inputPath string) ([]string, func() (string, error)) {
			profile := filepath.Join(workspace, "lo_profile_"+uuid.NewString())
			args := []string{
				"--headless",
				"--norestore",
				"-env:UserInstallation=file://" + profile,
				"--convert-to", "pdf",
				"--outdir", workspace,
				inputPath,
			}
			// soffice names the PDF after the input file; glob rather
			// than guess so renamed outputs still match.
			locate := func() (string, error) {
				matches, err := filepath.Glob(filepath.Join(workspace, "*.pdf"))
				if err != nil || len(matches) == 0 {
					return "", fmt.Errorf("no PDF in output directory")
				}
				return matches[0], nil
			}
			return args, locate
		},
	}
}

// OfficeFormats are the formats routed through LibreOffice conversion.
func OfficeFormats() []string {
	return []string{
		"ppt", "pptx", "pptm", "potx", "potm",
		"rtf", "odt", "ods", "odp",
		"wps", "doc", "docm", "dotx", "dotm",
		"xls", "xltx", "xltm",
		"pages", "numbers", "key",
		"vsdx", "vsd", "pub",
		"hwp", "hwpx",
	}
}
