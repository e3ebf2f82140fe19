package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/dateutil"
	"github.com/alnah/go-url2pdf/internal/fileutil"
	"github.com/alnah/go-url2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// Defaults for the file layout of a run.
const (
	DefaultInputFile     = "urls.txt"
	DefaultScreenshotDir = "screenshots"
	DefaultOutputPDF     = "retry_watermarked_output.pdf"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
)

// Field length limits.
const (
	MaxPathLength   = 4096
	MaxBucketLength = 63 // S3 bucket naming rules
	MaxPrefixLength = 1024
	MaxURLLength    = 2048
)

// userConfigSubdir is the directory searched under os.UserConfigDir.
const userConfigSubdir = "url2pdf"

// Config holds every setting of a run. Zero values mean "use the default".
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Capture  CaptureConfig  `yaml:"capture"`
	Document DocumentConfig `yaml:"document"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Publish  PublishConfig  `yaml:"publish"`
	Log      LogConfig      `yaml:"log"`
}

// InputConfig locates the URL list.
type InputConfig struct {
	File string `yaml:"file"` // one URL per line (default: urls.txt)
}

// OutputConfig locates the run artifacts.
type OutputConfig struct {
	ScreenshotDir string `yaml:"screenshotDir"` // default: screenshots
	PDF           string `yaml:"pdf"`           // default: retry_watermarked_output.pdf
}

// CaptureConfig tunes the browser captures.
type CaptureConfig struct {
	Engine     string `yaml:"engine"`     // "rod" or "chromedp" (default: rod)
	Attempts   int    `yaml:"attempts"`   // 1-50 (default: 5)
	Timeout    string `yaml:"timeout"`    // Go duration, e.g. "60s"
	Viewport   string `yaml:"viewport"`   // WIDTHxHEIGHT (default: 1280x800)
	BrowserBin string `yaml:"browserBin"` // custom Chrome binary
	NoSandbox  bool   `yaml:"noSandbox"`
}

// DocumentConfig tunes the assembled PDF.
type DocumentConfig struct {
	DPI       float64         `yaml:"dpi"`     // default: 96
	Missing   string          `yaml:"missing"` // "skip" or "placeholder" (default: skip)
	Watermark WatermarkConfig `yaml:"watermark"`
}

// WatermarkConfig styles the URL stamp.
type WatermarkConfig struct {
	Color    string  `yaml:"color"`    // hex (default: "#0000FF")
	FontSize float64 `yaml:"fontSize"` // points (default: 12)
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	File string `yaml:"file"` // empty = disabled
}

// PublishConfig enables the S3 upload of the run artifacts.
type PublishConfig struct {
	Bucket      string `yaml:"bucket"` // empty = disabled
	Prefix      string `yaml:"prefix"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`  // S3-compatible store (MinIO, R2, ...)
	PathStyle   bool   `yaml:"pathStyle"` // required by most S3-compatible stores
	Screenshots bool   `yaml:"screenshots"`
}

// Enabled reports whether a bucket is configured.
func (p PublishConfig) Enabled() bool {
	return p.Bucket != ""
}

// LogConfig selects the log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: info)
	Format string `yaml:"format"` // console or json (default: console)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{File: DefaultInputFile},
		Output: OutputConfig{
			ScreenshotDir: DefaultScreenshotDir,
			PDF:           DefaultOutputPDF,
		},
		Capture: CaptureConfig{
			Engine:   url2pdf.EngineRod,
			Attempts: url2pdf.DefaultMaxAttempts,
			Timeout:  url2pdf.DefaultNavigationTimeout.String(),
			Viewport: url2pdf.DefaultViewport().String(),
		},
		Document: DocumentConfig{
			DPI:     url2pdf.DefaultDPI,
			Missing: url2pdf.MissingSkip,
			Watermark: WatermarkConfig{
				Color:    url2pdf.DefaultWatermarkColor,
				FontSize: url2pdf.DefaultWatermarkFontSize,
			},
		},
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// NavigationTimeout parses capture.timeout. An empty value yields the
// library default.
func (c *Config) NavigationTimeout() (time.Duration, error) {
	if c.Capture.Timeout == "" {
		return url2pdf.DefaultNavigationTimeout, nil
	}
	d, err := time.ParseDuration(c.Capture.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: capture.timeout %q (expected a positive duration such as 60s)", ErrInvalidValue, c.Capture.Timeout)
	}
	return d, nil
}

// Viewport parses capture.viewport. An empty value yields the default.
func (c *Config) Viewport() (url2pdf.Viewport, error) {
	if c.Capture.Viewport == "" {
		return url2pdf.DefaultViewport(), nil
	}
	v, err := url2pdf.ParseViewport(c.Capture.Viewport)
	if err != nil {
		return url2pdf.Viewport{}, fmt.Errorf("%w: capture.viewport: %v", ErrInvalidValue, err)
	}
	return v, nil
}

// Validate checks every field. Called by LoadConfig, and again by the CLI
// once flags and environment variables have been merged in.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"input.file", c.Input.File, MaxPathLength},
		{"output.screenshotDir", c.Output.ScreenshotDir, MaxPathLength},
		{"output.pdf", c.Output.PDF, MaxPathLength},
		{"capture.browserBin", c.Capture.BrowserBin, MaxPathLength},
		{"metrics.file", c.Metrics.File, MaxPathLength},
		{"publish.bucket", c.Publish.Bucket, MaxBucketLength},
		{"publish.prefix", c.Publish.Prefix, MaxPrefixLength},
		{"publish.endpoint", c.Publish.Endpoint, MaxURLLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Capture.Engine != "" && !url2pdf.IsValidEngine(c.Capture.Engine) {
		return fmt.Errorf("%w: capture.engine %q (must be rod or chromedp)", ErrInvalidValue, c.Capture.Engine)
	}
	if c.Capture.Attempts != 0 && (c.Capture.Attempts < 1 || c.Capture.Attempts > url2pdf.MaxAttemptsLimit) {
		return fmt.Errorf("%w: capture.attempts must be between 1 and %d, got %d", ErrInvalidValue, url2pdf.MaxAttemptsLimit, c.Capture.Attempts)
	}
	if _, err := c.NavigationTimeout(); err != nil {
		return err
	}
	if _, err := c.Viewport(); err != nil {
		return err
	}

	if c.Document.DPI != 0 && (c.Document.DPI < url2pdf.MinDPI || c.Document.DPI > url2pdf.MaxDPI) {
		return fmt.Errorf("%w: document.dpi must be between %.0f and %.0f, got %.2f", ErrInvalidValue, url2pdf.MinDPI, url2pdf.MaxDPI, c.Document.DPI)
	}
	if c.Document.Missing != "" && !url2pdf.IsValidMissingPolicy(c.Document.Missing) {
		return fmt.Errorf("%w: document.missing %q (must be skip or placeholder)", ErrInvalidValue, c.Document.Missing)
	}
	wm := url2pdf.Watermark{Color: c.Document.Watermark.Color, FontSize: c.Document.Watermark.FontSize}
	if err := wm.Validate(); err != nil {
		return fmt.Errorf("%w: document.watermark: %v", ErrInvalidValue, err)
	}

	if c.Publish.Endpoint != "" && !strings.HasPrefix(c.Publish.Endpoint, "http://") && !strings.HasPrefix(c.Publish.Endpoint, "https://") {
		return fmt.Errorf("%w: publish.endpoint %q (must start with http:// or https://)", ErrInvalidValue, c.Publish.Endpoint)
	}
	if _, err := dateutil.ExpandDates(c.Publish.Prefix, time.Time{}); err != nil {
		return fmt.Errorf("%w: publish.prefix: %v", ErrInvalidValue, err)
	}
	if c.Publish.Screenshots && !c.Publish.Enabled() {
		return fmt.Errorf("%w: publish.screenshots requires publish.bucket", ErrInvalidValue)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn or error)", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be console or json)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFileStrict(configPath, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists where LoadConfig looks for a config name, in order:
// current directory then the user config directory, .yaml before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, userConfigSubdir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing SearchPaths entry.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
