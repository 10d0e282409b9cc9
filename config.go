package docreader

import "time"

// Config holds all configuration for the document reader.
type Config struct {
	// EbookConvertPath overrides Calibre ebook-convert resolution. If
	// empty, the EBOOK_CONVERT_PATH environment variable, well-known
	// install locations, and PATH are consulted in that order.
	EbookConvertPath string `json:"ebook_convert_path" yaml:"ebook_convert_path"`

	// LibreOfficePath overrides soffice resolution (same order, with the
	// LIBREOFFICE_PATH environment variable).
	LibreOfficePath string `json:"libreoffice_path" yaml:"libreoffice_path"`

	// EbookConcurrency caps simultaneous ebook-convert processes.
	// Defaults to 2; the gate is independent of the office gate.
	EbookConcurrency int `json:"ebook_concurrency" yaml:"ebook_concurrency"`

	// OfficeConcurrency caps simultaneous LibreOffice processes.
	// Defaults to 2.
	OfficeConcurrency int `json:"office_concurrency" yaml:"office_concurrency"`

	// ConversionTimeoutSeconds bounds one external conversion run.
	// Defaults to 120.
	ConversionTimeoutSeconds int `json:"conversion_timeout_seconds" yaml:"conversion_timeout_seconds"`

	// PreviewDir is where converted preview PDFs are published. Empty
	// disables preview publication.
	PreviewDir string `json:"preview_dir" yaml:"preview_dir"`

	// CachePath is the SQLite extraction-cache file. Empty disables
	// caching.
	CachePath string `json:"cache_path" yaml:"cache_path"`
}

// DefaultConfig returns a config with sensible defaults: two processes per
// converter kind, a two-minute conversion timeout, no cache, no previews.
func DefaultConfig() Config {
	return Config{
		EbookConcurrency:         2,
		OfficeConcurrency:        2,
		ConversionTimeoutSeconds: 120,
	}
}

func (c Config) conversionTimeout() time.Duration {
	if c.ConversionTimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.ConversionTimeoutSeconds) * time.Second
}
