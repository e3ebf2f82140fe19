package url2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyURL          = errors.New("URL cannot be empty")
	ErrEmptyOutputPath   = errors.New("output path cannot be empty")
	ErrBrowserConnect    = errors.New("failed to connect to browser")
	ErrPageCreate        = errors.New("failed to create browser page")
	ErrPageLoad          = errors.New("failed to load page")
	ErrNavigationTimeout = errors.New("navigation timed out")
	ErrScreenshot        = errors.New("screenshot capture failed")
	ErrWriteScreenshot   = errors.New("failed to write screenshot")
	ErrCaptureExhausted  = errors.New("capture attempts exhausted")

	// Assembly errors.
	ErrImageOpen = errors.New("failed to open image")
	ErrPageDraw  = errors.New("failed to draw page")
	ErrWritePDF  = errors.New("failed to write PDF file")

	// Input errors.
	ErrReadURLs = errors.New("failed to read URL list")

	// Option validation errors.
	ErrInvalidAttempts       = errors.New("invalid attempt count")
	ErrInvalidTimeout        = errors.New("invalid navigation timeout")
	ErrInvalidDPI            = errors.New("invalid DPI")
	ErrInvalidViewport       = errors.New("invalid viewport")
	ErrInvalidEngine         = errors.New("invalid browser engine")
	ErrInvalidMissingPolicy  = errors.New("invalid missing-image policy")
	ErrInvalidWatermarkColor = errors.New("invalid watermark color")
	ErrInvalidFontSize       = errors.New("invalid watermark font size")
)
