package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/config"
)

// Sentinel errors for flag handling.
var (
	ErrUsage         = errors.New("invalid usage")
	errHelpRequested = errors.New("help requested")
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// ioFlags holds the file layout flags.
type ioFlags struct {
	input       string
	screenshots string
	output      string
}

// captureFlags holds browser capture flags.
type captureFlags struct {
	attempts   int
	timeout    string
	engine     string
	viewport   string
	browserBin string
	noSandbox  bool
}

// documentFlags holds PDF assembly flags.
type documentFlags struct {
	dpi     float64
	missing string
	wmColor string
	wmSize  float64
}

// publishFlags holds metrics and upload flags.
type publishFlags struct {
	metricsFile   string
	s3Bucket      string
	s3Prefix      string
	s3Endpoint    string
	s3PathStyle   bool
	s3Screenshots bool
}

// runFlags holds all flags for the run command.
type runFlags struct {
	common    commonFlags
	io        ioFlags
	capture   captureFlags
	document  documentFlags
	publish   publishFlags
	logFormat string
	strict    bool
	noSummary bool

	// set reports whether a flag was given on the command line.
	set func(name string) bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show warnings and errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show every attempt")
}

// addIOFlags adds file layout flags to a FlagSet.
func addIOFlags(fs *flag.FlagSet, f *ioFlags) {
	fs.StringVarP(&f.input, "input", "i", "", "URL list, one per line (default: urls.txt)")
	fs.StringVarP(&f.screenshots, "screenshots", "d", "", "screenshot directory (default: screenshots)")
	fs.StringVarP(&f.output, "output", "o", "", "output PDF (default: retry_watermarked_output.pdf)")
}

// addCaptureFlags adds browser capture flags to a FlagSet.
func addCaptureFlags(fs *flag.FlagSet, f *captureFlags) {
	fs.IntVarP(&f.attempts, "attempts", "a", 0, "attempts per URL (1-50, default: 5)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "navigation timeout per attempt (e.g., 30s, 2m)")
	fs.StringVar(&f.engine, "engine", "", "browser engine: rod, chromedp")
	fs.StringVar(&f.viewport, "viewport", "", "browser viewport WIDTHxHEIGHT (default: 1280x800)")
	fs.StringVar(&f.browserBin, "browser", "", "Chrome/Chromium binary")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox (Docker/CI)")
}

// addDocumentFlags adds PDF assembly flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.Float64Var(&f.dpi, "dpi", 0, "pixels per inch for page size (default: 96)")
	fs.StringVar(&f.missing, "missing", "", "missing screenshot policy: skip, placeholder")
	fs.StringVar(&f.wmColor, "wm-color", "", "URL watermark color (hex)")
	fs.Float64Var(&f.wmSize, "wm-size", 0, "URL watermark font size in points")
}

// addPublishFlags adds metrics and upload flags to a FlagSet.
func addPublishFlags(fs *flag.FlagSet, f *publishFlags) {
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	fs.StringVar(&f.s3Bucket, "s3-bucket", "", "upload the PDF to this S3 bucket")
	fs.StringVar(&f.s3Prefix, "s3-prefix", "", "S3 key prefix, may contain {date} or {date:FORMAT}")
	fs.StringVar(&f.s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	fs.BoolVar(&f.s3PathStyle, "s3-path-style", false, "use path-style S3 addressing")
	fs.BoolVar(&f.s3Screenshots, "s3-screenshots", false, "also upload the screenshots")
}

// newRunFlagSet registers every run flag on a new FlagSet bound to f.
// Shell completion reads the same FlagSet.
func newRunFlagSet(f *runFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	addCommonFlags(fs, &f.common)
	addIOFlags(fs, &f.io)
	addCaptureFlags(fs, &f.capture)
	addDocumentFlags(fs, &f.document)
	addPublishFlags(fs, &f.publish)
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")
	fs.BoolVar(&f.strict, "strict", false, "exit 1 if any URL was skipped")
	fs.BoolVar(&f.noSummary, "no-summary", false, "do not print the run summary")
	return fs
}

// parseRunFlags parses run command flags and returns positional args.
func parseRunFlags(args []string, usageOut io.Writer) (*runFlags, []string, error) {
	f := &runFlags{}
	fs := newRunFlagSet(f)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printRunUsage(usageOut)
			return nil, nil, errHelpRequested
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	f.set = func(name string) bool { return fs.Changed(name) }
	return f, fs.Args(), nil
}

// mergeFlags applies explicitly set flags over cfg (CLI wins).
func mergeFlags(f *runFlags, cfg *config.Config) error {
	if f.set("input") {
		cfg.Input.File = f.io.input
	}
	if f.set("screenshots") {
		cfg.Output.ScreenshotDir = f.io.screenshots
	}
	if f.set("output") {
		cfg.Output.PDF = f.io.output
	}

	if f.set("attempts") {
		if f.capture.attempts < 1 || f.capture.attempts > url2pdf.MaxAttemptsLimit {
			return fmt.Errorf("%w: --attempts %d (must be 1-%d)", url2pdf.ErrInvalidAttempts, f.capture.attempts, url2pdf.MaxAttemptsLimit)
		}
		cfg.Capture.Attempts = f.capture.attempts
	}
	if f.set("timeout") {
		if d, err := time.ParseDuration(f.capture.timeout); err != nil || d <= 0 {
			return fmt.Errorf("%w: --timeout %q (e.g., 30s, 2m)", url2pdf.ErrInvalidTimeout, f.capture.timeout)
		}
		cfg.Capture.Timeout = f.capture.timeout
	}
	if f.set("engine") {
		cfg.Capture.Engine = f.capture.engine
	}
	if f.set("viewport") {
		cfg.Capture.Viewport = f.capture.viewport
	}
	if f.set("browser") {
		cfg.Capture.BrowserBin = f.capture.browserBin
	}
	if f.set("no-sandbox") {
		cfg.Capture.NoSandbox = f.capture.noSandbox
	}

	if f.set("dpi") {
		cfg.Document.DPI = f.document.dpi
	}
	if f.set("missing") {
		cfg.Document.Missing = f.document.missing
	}
	if f.set("wm-color") {
		cfg.Document.Watermark.Color = f.document.wmColor
	}
	if f.set("wm-size") {
		cfg.Document.Watermark.FontSize = f.document.wmSize
	}

	if f.set("metrics-file") {
		cfg.Metrics.File = f.publish.metricsFile
	}
	if f.set("s3-bucket") {
		cfg.Publish.Bucket = f.publish.s3Bucket
	}
	if f.set("s3-prefix") {
		cfg.Publish.Prefix = f.publish.s3Prefix
	}
	if f.set("s3-endpoint") {
		cfg.Publish.Endpoint = f.publish.s3Endpoint
	}
	if f.set("s3-path-style") {
		cfg.Publish.PathStyle = f.publish.s3PathStyle
	}
	if f.set("s3-screenshots") {
		cfg.Publish.Screenshots = f.publish.s3Screenshots
	}

	if f.set("log-format") {
		cfg.Log.Format = f.logFormat
	}
	return nil
}
