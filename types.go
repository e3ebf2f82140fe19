package url2pdf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Capture defaults.
const (
	DefaultMaxAttempts       = 5
	DefaultNavigationTimeout = 60 * time.Second
	MaxAttemptsLimit         = 50
)

// Viewport defaults match the laptop profile go-rod emulates out of the box.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
	MaxViewportDimension  = 16384
)

// Geometry constants.
const (
	DefaultDPI    = 96.0
	MinDPI        = 24.0
	MaxDPI        = 1200.0
	mmPerInch     = 25.4
	pointsPerInch = 72.0
)

// Browser engine names.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// Missing-image policies for the assembler.
const (
	// MissingSkip omits the page of an entry whose image cannot be opened.
	MissingSkip = "skip"

	// MissingPlaceholder renders a "screenshot unavailable" page instead.
	MissingPlaceholder = "placeholder"
)

// Watermark defaults.
const (
	DefaultWatermarkColor    = "#0000FF"
	DefaultWatermarkFontSize = 12.0
	DefaultWatermarkOffsetX  = 10.0 // points from the left edge
	DefaultWatermarkOffsetY  = 15.0 // points below the top edge
	MinWatermarkFontSize     = 4.0
	MaxWatermarkFontSize     = 72.0
)

// Viewport is the browser window size used for captures, in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// DefaultViewport returns the 1280x800 viewport.
func DefaultViewport() Viewport {
	return Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
}

// Validate checks that both dimensions are positive and bounded.
func (v Viewport) Validate() error {
	if v.Width <= 0 || v.Height <= 0 || v.Width > MaxViewportDimension || v.Height > MaxViewportDimension {
		return fmt.Errorf("%w: %dx%d (each side must be 1-%d)", ErrInvalidViewport, v.Width, v.Height, MaxViewportDimension)
	}
	return nil
}

// String formats the viewport as WIDTHxHEIGHT.
func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// ParseViewport parses a WIDTHxHEIGHT string such as "1280x800".
func ParseViewport(s string) (Viewport, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Viewport{}, fmt.Errorf("%w: %q (expected WIDTHxHEIGHT)", ErrInvalidViewport, s)
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil {
		return Viewport{}, fmt.Errorf("%w: %q (expected WIDTHxHEIGHT)", ErrInvalidViewport, s)
	}
	v := Viewport{Width: width, Height: height}
	if err := v.Validate(); err != nil {
		return Viewport{}, err
	}
	return v, nil
}

// IsValidEngine reports whether name is a supported browser engine (case-insensitive).
func IsValidEngine(name string) bool {
	switch strings.ToLower(name) {
	case EngineRod, EngineChromedp:
		return true
	}
	return false
}

// IsValidMissingPolicy reports whether policy is a supported missing-image policy.
func IsValidMissingPolicy(policy string) bool {
	switch strings.ToLower(policy) {
	case MissingSkip, MissingPlaceholder:
		return true
	}
	return false
}

// Watermark configures the URL stamp drawn at the top of every page.
type Watermark struct {
	Color    string  // hex color, "#RGB" or "#RRGGBB" (default: "#0000FF")
	FontSize float64 // points (default: 12)
	OffsetX  float64 // text baseline distance from the left edge, in points
	OffsetY  float64 // text baseline distance below the top edge, in points
}

// DefaultWatermark returns the blue 12pt stamp placed 10pt from the left and
// 15pt below the top.
func DefaultWatermark() *Watermark {
	return &Watermark{
		Color:    DefaultWatermarkColor,
		FontSize: DefaultWatermarkFontSize,
		OffsetX:  DefaultWatermarkOffsetX,
		OffsetY:  DefaultWatermarkOffsetY,
	}
}

// hexColorPattern matches #RGB and #RRGGBB.
var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks that watermark settings are valid.
// Returns nil if w is nil (nil means use defaults).
func (w *Watermark) Validate() error {
	if w == nil {
		return nil
	}
	if w.Color != "" && !hexColorPattern.MatchString(w.Color) {
		return fmt.Errorf("%w: %q (must be #RGB or #RRGGBB)", ErrInvalidWatermarkColor, w.Color)
	}
	if w.FontSize != 0 && (w.FontSize < MinWatermarkFontSize || w.FontSize > MaxWatermarkFontSize) {
		return fmt.Errorf("%w: %.1f (must be between %.0f and %.0f)", ErrInvalidFontSize, w.FontSize, MinWatermarkFontSize, MaxWatermarkFontSize)
	}
	return nil
}

// withDefaults returns a copy where zero fields take their default value.
func (w *Watermark) withDefaults() Watermark {
	out := *DefaultWatermark()
	if w == nil {
		return out
	}
	if w.Color != "" {
		out.Color = w.Color
	}
	if w.FontSize != 0 {
		out.FontSize = w.FontSize
	}
	if w.OffsetX != 0 {
		out.OffsetX = w.OffsetX
	}
	if w.OffsetY != 0 {
		out.OffsetY = w.OffsetY
	}
	return out
}

// rgb converts the validated hex color to 0-255 components.
func (w Watermark) rgb() (r, g, b int) {
	hex := strings.TrimPrefix(w.Color, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 255
	}
	return int(v>>16) & 0xff, int(v>>8) & 0xff, int(v) & 0xff
}

// PageGeometry converts image pixels to physical page dimensions.
type PageGeometry struct {
	WidthPx  int
	HeightPx int
	DPI      float64
}

// WidthMM returns the page width in millimeters.
func (g PageGeometry) WidthMM() float64 {
	return float64(g.WidthPx) / g.DPI * mmPerInch
}

// HeightMM returns the page height in millimeters.
func (g PageGeometry) HeightMM() float64 {
	return float64(g.HeightPx) / g.DPI * mmPerInch
}

// WidthPt returns the page width in PDF points.
func (g PageGeometry) WidthPt() float64 {
	return g.WidthMM() * pointsPerInch / mmPerInch
}

// HeightPt returns the page height in PDF points.
func (g PageGeometry) HeightPt() float64 {
	return g.HeightMM() * pointsPerInch / mmPerInch
}

// Entry pairs a source URL with the screenshot path meant for it.
// The file at ImagePath may not exist if the capture was exhausted.
type Entry struct {
	URL       string
	ImagePath string
}

// CaptureResult records the outcome of capturing one URL.
type CaptureResult struct {
	Index     int // 1-based position among non-blank input lines
	URL       string
	ImagePath string
	Attempts  int
	Duration  time.Duration
	Err       error // nil on success, wraps ErrCaptureExhausted on exhaustion
}

// OK reports whether the capture produced an image.
func (r CaptureResult) OK() bool {
	return r.Err == nil
}

// PageFailure describes an entry the assembler could not turn into a page.
type PageFailure struct {
	URL       string
	ImagePath string
	Err       error
}

// AssembleReport summarizes a document assembly.
type AssembleReport struct {
	Path         string
	Pages        int
	Placeholders int
	Failures     []PageFailure
}

// RunReport summarizes a full capture-and-assemble run.
type RunReport struct {
	Captures []CaptureResult
	Document *AssembleReport
}

// Exhausted returns the captures that produced no image.
func (r *RunReport) Exhausted() []CaptureResult {
	var out []CaptureResult
	for _, c := range r.Captures {
		if !c.OK() {
			out = append(out, c)
		}
	}
	return out
}
