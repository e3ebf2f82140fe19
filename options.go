package url2pdf

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Option configures a Capturer, an Assembler or a Runner.
// Options that do not apply to the component being built are ignored.
type Option func(*settings)

// settings holds the configuration shared by all components.
type settings struct {
	maxAttempts int
	navTimeout  time.Duration
	engineName  string
	engineOpts  engineOptions
	dpi         float64
	watermark   *Watermark
	missing     string
	logger      *zap.Logger
	observer    Observer

	// engine overrides engineName when set (tests).
	engine browserEngine
}

// defaultSettings returns the settings used when no option is given.
func defaultSettings() settings {
	return settings{
		maxAttempts: DefaultMaxAttempts,
		navTimeout:  DefaultNavigationTimeout,
		engineName:  EngineRod,
		engineOpts:  defaultEngineOptions(),
		dpi:         DefaultDPI,
		missing:     MissingSkip,
		logger:      zap.NewNop(),
		observer:    nopObserver{},
	}
}

// applyOptions builds settings from defaults and opts, then validates them.
func applyOptions(opts []Option) (settings, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}

// validate checks values that may come from user configuration.
func (s *settings) validate() error {
	if s.engine == nil && !IsValidEngine(s.engineName) {
		return fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidEngine, s.engineName, EngineRod, EngineChromedp)
	}
	if err := s.engineOpts.viewport.Validate(); err != nil {
		return err
	}
	if s.dpi < MinDPI || s.dpi > MaxDPI {
		return fmt.Errorf("%w: %.1f (must be between %.0f and %.0f)", ErrInvalidDPI, s.dpi, MinDPI, MaxDPI)
	}
	if !IsValidMissingPolicy(s.missing) {
		return fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidMissingPolicy, s.missing, MissingSkip, MissingPlaceholder)
	}
	return s.watermark.Validate()
}

// WithMaxAttempts sets how many times a URL is tried before it is skipped.
// Panics if n is outside 1..MaxAttemptsLimit (programmer error).
func WithMaxAttempts(n int) Option {
	if n < 1 || n > MaxAttemptsLimit {
		panic(fmt.Sprintf("url2pdf: WithMaxAttempts(%d) must be between 1 and %d", n, MaxAttemptsLimit))
	}
	return func(s *settings) {
		s.maxAttempts = n
	}
}

// WithNavigationTimeout sets the per-attempt navigation timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithNavigationTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("url2pdf: WithNavigationTimeout duration must be positive")
	}
	return func(s *settings) {
		s.navTimeout = d
	}
}

// WithEngine selects the browser engine: "rod" (default) or "chromedp".
func WithEngine(name string) Option {
	return func(s *settings) {
		s.engineName = strings.ToLower(name)
	}
}

// WithViewport sets the browser viewport used for captures.
func WithViewport(v Viewport) Option {
	return func(s *settings) {
		s.engineOpts.viewport = v
	}
}

// WithBrowserBin uses a pre-installed Chrome binary instead of the managed one.
// The sandbox is disabled, as for ROD_BROWSER_BIN.
func WithBrowserBin(path string) Option {
	return func(s *settings) {
		if path == "" {
			return
		}
		s.engineOpts.browserBin = path
		s.engineOpts.noSandbox = true
	}
}

// WithNoSandbox disables the Chrome sandbox (Docker/CI).
func WithNoSandbox(disabled bool) Option {
	return func(s *settings) {
		s.engineOpts.noSandbox = s.engineOpts.noSandbox || disabled
	}
}

// WithDPI sets the density used to convert image pixels to page size.
func WithDPI(dpi float64) Option {
	return func(s *settings) {
		s.dpi = dpi
	}
}

// WithWatermark overrides the URL stamp settings. Zero fields keep defaults.
func WithWatermark(w *Watermark) Option {
	return func(s *settings) {
		s.watermark = w
	}
}

// WithMissingPolicy selects what the assembler does with an entry whose
// screenshot cannot be opened: MissingSkip (default) or MissingPlaceholder.
func WithMissingPolicy(policy string) Option {
	return func(s *settings) {
		s.missing = strings.ToLower(policy)
	}
}

// WithLogger sets the logger for progress and failure lines.
// A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers callbacks for attempts, captures and pages.
// A nil observer is ignored.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observer = o
		}
	}
}

// withEngine injects a browser engine (tests).
func withEngine(e browserEngine) Option {
	return func(s *settings) {
		s.engine = e
	}
}
