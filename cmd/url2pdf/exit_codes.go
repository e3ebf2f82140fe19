package main

import (
	"errors"
	"os"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/config"
	"github.com/alnah/go-url2pdf/internal/logging"
	"github.com/alnah/go-url2pdf/internal/publish"
)

// Exit codes for the url2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
// Skipped URLs do not change the exit code unless --strict is set.
const (
	ExitSuccess = 0 // PDF written
	ExitGeneral = 1 // General/unexpected error, or skipped URLs with --strict
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Input missing, output not writable, upload failed
	ExitBrowser = 4 // Browser could not be launched
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, url2pdf.ErrBrowserConnect) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, url2pdf.ErrReadURLs) ||
		errors.Is(err, url2pdf.ErrWritePDF) ||
		errors.Is(err, url2pdf.ErrWriteScreenshot) ||
		errors.Is(err, ErrOutputDirectory) ||
		errors.Is(err, ErrWriteMetrics) ||
		errors.Is(err, publish.ErrUpload) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, logging.ErrInvalidFormat) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, publish.ErrNoBucket) ||
		errors.Is(err, url2pdf.ErrInvalidAttempts) ||
		errors.Is(err, url2pdf.ErrInvalidTimeout) ||
		errors.Is(err, url2pdf.ErrInvalidDPI) ||
		errors.Is(err, url2pdf.ErrInvalidViewport) ||
		errors.Is(err, url2pdf.ErrInvalidEngine) ||
		errors.Is(err, url2pdf.ErrInvalidMissingPolicy) ||
		errors.Is(err, url2pdf.ErrInvalidWatermarkColor) ||
		errors.Is(err, url2pdf.ErrInvalidFontSize) {
		return ExitUsage
	}

	return ExitGeneral
}
