package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/config"
	"github.com/alnah/go-url2pdf/internal/dateutil"
	"github.com/alnah/go-url2pdf/internal/fileutil"
	"github.com/alnah/go-url2pdf/internal/hints"
	"github.com/alnah/go-url2pdf/internal/logging"
	"github.com/alnah/go-url2pdf/internal/metrics"
	"github.com/alnah/go-url2pdf/internal/publish"
)

// Sentinel errors for the run command.
var (
	ErrCapturesSkipped = errors.New("some URLs were skipped")
	ErrOutputDirectory = errors.New("output directory not writable")
	ErrWriteMetrics    = errors.New("failed to write metrics file")
)

// runCmd executes the run command: load settings, capture every URL,
// assemble the PDF, then export metrics and publish when configured.
func runCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRunFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected at most one input file, got %d", ErrUsage, len(positional))
	}

	cfg, err := resolveConfig(flags, positional, env)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Quiet:   flags.common.quiet,
		Verbose: flags.common.verbose,
		Writer:  env.Stderr,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	urls, err := url2pdf.ReadURLsFile(cfg.Input.File)
	if err != nil {
		return err
	}
	logger.Debug("loaded URLs", zap.String("file", cfg.Input.File), zap.Int("count", len(urls)))

	if dir := filepath.Dir(cfg.Output.PDF); !fileutil.DirWritable(dir) {
		return fmt.Errorf("%w: %s", ErrOutputDirectory, dir)
	}

	m := metrics.New()
	opts, err := buildOptions(cfg, logger, m)
	if err != nil {
		return err
	}
	pipeline, err := env.NewPipeline(opts...)
	if err != nil {
		return err
	}

	report, runErr := pipeline.Run(ctx, urls, cfg.Output.ScreenshotDir, cfg.Output.PDF)

	if cfg.Metrics.File != "" {
		if err := m.WriteTextfile(cfg.Metrics.File, env.Now()); err != nil {
			logger.Error("writing metrics", zap.String("file", cfg.Metrics.File), zap.Error(err))
			if runErr == nil {
				runErr = fmt.Errorf("%w: %v", ErrWriteMetrics, err)
			}
		}
	}
	if runErr != nil {
		return runErr
	}

	if !flags.common.quiet && !flags.noSummary {
		printSummary(env.Stdout, report)
	}

	if err := browserUnavailable(report); err != nil {
		return err
	}

	if cfg.Publish.Enabled() {
		if err := publishRun(ctx, cfg, report, logger, env); err != nil {
			return err
		}
	}

	if flags.strict {
		if skipped := len(report.Exhausted()); skipped > 0 {
			return fmt.Errorf("%w: %d of %d", ErrCapturesSkipped, skipped, len(report.Captures))
		}
	}
	return nil
}

// resolveConfig layers defaults, config file, environment and flags, in
// increasing precedence, then validates the result.
func resolveConfig(flags *runFlags, positional []string, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	cfg := config.DefaultConfig()
	configName := flags.common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	if configName != "" {
		loaded, err := config.LoadConfig(configName)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if err := applyEnvConfig(envCfg, cfg); err != nil {
		return nil, err
	}
	if err := mergeFlags(flags, cfg); err != nil {
		return nil, err
	}
	if len(positional) == 1 {
		cfg.Input.File = positional[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildOptions turns a validated config into library options.
func buildOptions(cfg *config.Config, logger *zap.Logger, observer url2pdf.Observer) ([]url2pdf.Option, error) {
	timeout, err := cfg.NavigationTimeout()
	if err != nil {
		return nil, err
	}
	viewport, err := cfg.Viewport()
	if err != nil {
		return nil, err
	}

	opts := []url2pdf.Option{
		url2pdf.WithNavigationTimeout(timeout),
		url2pdf.WithViewport(viewport),
		url2pdf.WithBrowserBin(cfg.Capture.BrowserBin),
		url2pdf.WithNoSandbox(cfg.Capture.NoSandbox),
		url2pdf.WithWatermark(&url2pdf.Watermark{
			Color:    cfg.Document.Watermark.Color,
			FontSize: cfg.Document.Watermark.FontSize,
		}),
		url2pdf.WithLogger(logger),
		url2pdf.WithObserver(observer),
	}
	if cfg.Capture.Attempts != 0 {
		opts = append(opts, url2pdf.WithMaxAttempts(cfg.Capture.Attempts))
	}
	if cfg.Capture.Engine != "" {
		opts = append(opts, url2pdf.WithEngine(cfg.Capture.Engine))
	}
	if cfg.Document.DPI != 0 {
		opts = append(opts, url2pdf.WithDPI(cfg.Document.DPI))
	}
	if cfg.Document.Missing != "" {
		opts = append(opts, url2pdf.WithMissingPolicy(cfg.Document.Missing))
	}
	return opts, nil
}

// publishRun uploads the PDF, and the screenshots when configured.
func publishRun(ctx context.Context, cfg *config.Config, report *url2pdf.RunReport, logger *zap.Logger, env *Environment) error {
	prefix, err := dateutil.ExpandDates(cfg.Publish.Prefix, env.Now())
	if err != nil {
		return fmt.Errorf("%w: publish.prefix: %v", config.ErrInvalidValue, err)
	}

	pub, err := env.NewPublisher(ctx, publish.Config{
		Bucket:          cfg.Publish.Bucket,
		Prefix:          prefix,
		Region:          cfg.Publish.Region,
		Endpoint:        cfg.Publish.Endpoint,
		AccessKeyID:     env.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: env.Getenv("AWS_SECRET_ACCESS_KEY"),
		UsePathStyle:    cfg.Publish.PathStyle,
	}, logger)
	if err != nil {
		return err
	}

	var screenshots []string
	if cfg.Publish.Screenshots {
		for _, c := range report.Captures {
			if c.OK() {
				screenshots = append(screenshots, c.ImagePath)
			}
		}
	}

	keys, err := pub.PublishRun(ctx, cfg.Output.PDF, screenshots)
	if err != nil {
		return err
	}
	logger.Info("published", zap.String("bucket", cfg.Publish.Bucket), zap.Int("objects", len(keys)))
	return nil
}

// browserUnavailable returns the first capture error when no URL could be
// captured because the browser never started.
func browserUnavailable(r *url2pdf.RunReport) error {
	if len(r.Captures) == 0 {
		return nil
	}
	for _, c := range r.Captures {
		if c.OK() || !errors.Is(c.Err, url2pdf.ErrBrowserConnect) {
			return nil
		}
	}
	return r.Captures[0].Err
}

// printSummary writes a short human-readable report of the run.
func printSummary(w io.Writer, r *url2pdf.RunReport) {
	skipped := r.Exhausted()
	fmt.Fprintf(w, "Captured %d/%d URLs\n", len(r.Captures)-len(skipped), len(r.Captures))
	timedOut := false
	for _, c := range skipped {
		fmt.Fprintf(w, "  skipped %s after %d attempts\n", c.URL, c.Attempts)
		if errors.Is(c.Err, url2pdf.ErrNavigationTimeout) {
			timedOut = true
		}
	}
	if timedOut {
		fmt.Fprintln(w, strings.TrimPrefix(hints.ForTimeout(), "\n"))
	}
	if r.Document != nil {
		fmt.Fprintf(w, "PDF: %s (%d pages", r.Document.Path, r.Document.Pages)
		if r.Document.Placeholders > 0 {
			fmt.Fprintf(w, ", %d placeholders", r.Document.Placeholders)
		}
		fmt.Fprintln(w, ")")
	}
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, env *Environment) string {
	switch {
	case errors.Is(err, url2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect(env.Getenv)
	case errors.Is(err, url2pdf.ErrReadURLs):
		return hints.ForInputFile(config.DefaultInputFile)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths("url2pdf"))
	case errors.Is(err, ErrOutputDirectory):
		return hints.ForOutputDirectory()
	case errors.Is(err, publish.ErrUpload), errors.Is(err, publish.ErrNoBucket):
		return hints.ForPublish()
	case errors.Is(err, ErrCapturesSkipped):
		return hints.ForExhausted()
	}
	return ""
}
