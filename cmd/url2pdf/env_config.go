package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/config"
)

// envPrefix namespaces the variables read by the CLI.
const envPrefix = "URL2PDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Files
	ConfigPath    string // URL2PDF_CONFIG: config file name or path
	Input         string // URL2PDF_INPUT: URL list
	ScreenshotDir string // URL2PDF_SCREENSHOTS: screenshot directory
	Output        string // URL2PDF_OUTPUT: PDF path

	// Tier 2 - Capture and document
	Attempts string // URL2PDF_ATTEMPTS: 1-50
	Timeout  string // URL2PDF_TIMEOUT: navigation timeout (e.g. 60s)
	Engine   string // URL2PDF_ENGINE: rod or chromedp
	Viewport string // URL2PDF_VIEWPORT: WIDTHxHEIGHT
	DPI      string // URL2PDF_DPI: page density
	Missing  string // URL2PDF_MISSING: skip or placeholder

	// Tier 3 - Observability and publishing
	MetricsFile string // URL2PDF_METRICS_FILE: Prometheus textfile path
	S3Bucket    string // URL2PDF_S3_BUCKET: upload bucket
	S3Prefix    string // URL2PDF_S3_PREFIX: key prefix
	S3Region    string // URL2PDF_S3_REGION: bucket region
	S3Endpoint  string // URL2PDF_S3_ENDPOINT: S3-compatible endpoint
	LogLevel    string // URL2PDF_LOG_LEVEL: debug, info, warn, error
	LogFormat   string // URL2PDF_LOG_FORMAT: console or json
}

// knownEnvVars lists valid URL2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Files
	"URL2PDF_CONFIG":      true,
	"URL2PDF_INPUT":       true,
	"URL2PDF_SCREENSHOTS": true,
	"URL2PDF_OUTPUT":      true,
	// Tier 2 - Capture and document
	"URL2PDF_ATTEMPTS": true,
	"URL2PDF_TIMEOUT":  true,
	"URL2PDF_ENGINE":   true,
	"URL2PDF_VIEWPORT": true,
	"URL2PDF_DPI":      true,
	"URL2PDF_MISSING":  true,
	// Tier 3 - Observability and publishing
	"URL2PDF_METRICS_FILE": true,
	"URL2PDF_S3_BUCKET":    true,
	"URL2PDF_S3_PREFIX":    true,
	"URL2PDF_S3_REGION":    true,
	"URL2PDF_S3_ENDPOINT":  true,
	"URL2PDF_LOG_LEVEL":    true,
	"URL2PDF_LOG_FORMAT":   true,
}

// loadEnvConfig reads the URL2PDF_* variables through getenv.
func loadEnvConfig(getenv func(string) string) *envConfig {
	return &envConfig{
		ConfigPath:    getenv("URL2PDF_CONFIG"),
		Input:         getenv("URL2PDF_INPUT"),
		ScreenshotDir: getenv("URL2PDF_SCREENSHOTS"),
		Output:        getenv("URL2PDF_OUTPUT"),

		Attempts: getenv("URL2PDF_ATTEMPTS"),
		Timeout:  getenv("URL2PDF_TIMEOUT"),
		Engine:   getenv("URL2PDF_ENGINE"),
		Viewport: getenv("URL2PDF_VIEWPORT"),
		DPI:      getenv("URL2PDF_DPI"),
		Missing:  getenv("URL2PDF_MISSING"),

		MetricsFile: getenv("URL2PDF_METRICS_FILE"),
		S3Bucket:    getenv("URL2PDF_S3_BUCKET"),
		S3Prefix:    getenv("URL2PDF_S3_PREFIX"),
		S3Region:    getenv("URL2PDF_S3_REGION"),
		S3Endpoint:  getenv("URL2PDF_S3_ENDPOINT"),
		LogLevel:    getenv("URL2PDF_LOG_LEVEL"),
		LogFormat:   getenv("URL2PDF_LOG_FORMAT"),
	}
}

// warnUnknownEnvVars writes a warning for each unrecognized URL2PDF_* variable.
// Helps catch typos like URL2PDF_ATTEMPT instead of URL2PDF_ATTEMPTS.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides config values with the variables that are set.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
// Numeric variables that do not parse are usage errors.
func applyEnvConfig(env *envConfig, cfg *config.Config) error {
	setIf(&cfg.Input.File, env.Input)
	setIf(&cfg.Output.ScreenshotDir, env.ScreenshotDir)
	setIf(&cfg.Output.PDF, env.Output)

	if env.Attempts != "" {
		n, err := strconv.Atoi(env.Attempts)
		if err != nil {
			return fmt.Errorf("%w: URL2PDF_ATTEMPTS=%q", url2pdf.ErrInvalidAttempts, env.Attempts)
		}
		cfg.Capture.Attempts = n
	}
	setIf(&cfg.Capture.Timeout, env.Timeout)
	setIf(&cfg.Capture.Engine, env.Engine)
	setIf(&cfg.Capture.Viewport, env.Viewport)
	if env.DPI != "" {
		dpi, err := strconv.ParseFloat(env.DPI, 64)
		if err != nil {
			return fmt.Errorf("%w: URL2PDF_DPI=%q", url2pdf.ErrInvalidDPI, env.DPI)
		}
		cfg.Document.DPI = dpi
	}
	setIf(&cfg.Document.Missing, env.Missing)

	setIf(&cfg.Metrics.File, env.MetricsFile)
	setIf(&cfg.Publish.Bucket, env.S3Bucket)
	setIf(&cfg.Publish.Prefix, env.S3Prefix)
	setIf(&cfg.Publish.Region, env.S3Region)
	setIf(&cfg.Publish.Endpoint, env.S3Endpoint)
	setIf(&cfg.Log.Level, env.LogLevel)
	setIf(&cfg.Log.Format, env.LogFormat)
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
