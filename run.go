package url2pdf

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-url2pdf/internal/fileutil"
)

// Runner drives the whole pipeline: sequential captures, then one assembly.
type Runner struct {
	capturer  *Capturer
	assembler *Assembler
	logger    *zap.Logger
}

// NewRunner creates a Runner whose Capturer and Assembler share opts.
func NewRunner(opts ...Option) (*Runner, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	capturer, err := newCapturer(cfg)
	if err != nil {
		return nil, err
	}
	return &Runner{
		capturer:  capturer,
		assembler: newAssembler(cfg),
		logger:    cfg.logger,
	}, nil
}

// Run captures every URL in order into screenshotDir, then assembles all
// entries into pdfPath.
//
// URLs are processed one at a time; an exhausted capture is logged and the
// run continues with the next URL. Every URL still yields an entry, so the
// assembler sees the missing image and applies its missing-image policy.
// Only context cancellation and I/O errors outside capture abort the run;
// the partial report is returned with the error.
func (r *Runner) Run(ctx context.Context, urls []string, screenshotDir, pdfPath string) (*RunReport, error) {
	report := &RunReport{Captures: make([]CaptureResult, 0, len(urls))}

	if err := fileutil.EnsureDir(screenshotDir); err != nil {
		return report, fmt.Errorf("creating screenshot directory: %w", err)
	}

	entries := make([]Entry, 0, len(urls))
	for i, u := range urls {
		index := i + 1
		path := ScreenshotPath(screenshotDir, index)

		start := time.Now()
		attempts, err := r.capturer.Capture(ctx, u, path)
		result := CaptureResult{
			Index:     index,
			URL:       u,
			ImagePath: path,
			Attempts:  attempts,
			Duration:  time.Since(start),
			Err:       err,
		}
		report.Captures = append(report.Captures, result)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}
		if err != nil && !IsExhausted(err) {
			return report, fmt.Errorf("capturing %s: %w", u, err)
		}

		entries = append(entries, Entry{URL: u, ImagePath: path})
	}

	doc, err := r.assembler.Assemble(ctx, pdfPath, entries)
	if err != nil {
		return report, err
	}
	report.Document = doc

	r.logger.Info("run complete",
		zap.Int("urls", len(urls)),
		zap.Int("captured", len(urls)-len(report.Exhausted())),
		zap.Int("pages", doc.Pages),
		zap.String("pdf", pdfPath))
	return report, nil
}
