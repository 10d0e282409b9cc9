package docreader

import (
	"errors"

	"github.com/brunobiangulo/docreader/convert"
	"github.com/brunobiangulo/docreader/extractor"
	"github.com/brunobiangulo/docreader/safexml"
)

var (
	// ErrUnsupportedFormat is returned for unrecognized document formats.
	ErrUnsupportedFormat = errors.New("docreader: unsupported document format")

	// ErrDecode is returned when input cannot be parsed as its declared
	// container format (malformed XML, MIME, JSON, zip, PDF).
	ErrDecode = extractor.ErrDecode

	// ErrMalformedInput is returned when structurally valid XML violates
	// a safety bound (entity bombs, absurd nesting). Always rejected;
	// this is a security control, not a recoverable condition.
	ErrMalformedInput = safexml.ErrMalformedInput

	// ErrToolNotFound is returned when an external conversion binary is
	// missing; the message carries installation guidance.
	ErrToolNotFound = convert.ErrToolNotFound

	// ErrNoOutput is returned when a conversion tool exits cleanly but
	// produces no artifact.
	ErrNoOutput = convert.ErrNoOutput
)
