package url2pdf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-url2pdf/internal/fileutil"
)

// Capturer turns a URL into a full-page screenshot on disk, retrying a
// bounded number of times. Create with NewCapturer.
type Capturer struct {
	cfg      settings
	engine   browserEngine
	logger   *zap.Logger
	observer Observer
}

// NewCapturer creates a Capturer. Use options to customize behavior
// (e.g., WithMaxAttempts, WithNavigationTimeout, WithEngine).
func NewCapturer(opts ...Option) (*Capturer, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newCapturer(cfg)
}

func newCapturer(cfg settings) (*Capturer, error) {
	engine := cfg.engine
	if engine == nil {
		var err error
		engine, err = newEngine(cfg.engineName, cfg.engineOpts)
		if err != nil {
			return nil, err
		}
	}
	return &Capturer{
		cfg:      cfg,
		engine:   engine,
		logger:   cfg.logger,
		observer: cfg.observer,
	}, nil
}

// MaxAttempts returns the configured attempt bound.
func (c *Capturer) MaxAttempts() int {
	return c.cfg.maxAttempts
}

// Capture writes a full-page PNG of url to outputPath.
//
// Each attempt opens a fresh browser session and closes it before returning
// or retrying. Failures are retried immediately until MaxAttempts is
// reached; the error then wraps ErrCaptureExhausted and the last attempt
// error, and no file exists at outputPath. Context cancellation stops the
// loop and is returned unwrapped. Returns the number of attempts made.
func (c *Capturer) Capture(ctx context.Context, url, outputPath string) (int, error) {
	if url == "" {
		return 0, ErrEmptyURL
	}
	if outputPath == "" {
		return 0, ErrEmptyOutputPath
	}

	// A leftover image from an earlier run must not stand in for this one.
	if err := fileutil.RemoveIfExists(outputPath); err != nil {
		return 0, fmt.Errorf("%w: removing previous file: %v", ErrWriteScreenshot, err)
	}

	log := c.logger.With(zap.String("url", url))

	var lastErr error
	for attempt := 1; attempt <= c.cfg.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		log.Info("capturing screenshot", zap.Int("attempt", attempt))
		start := time.Now()
		err := c.attempt(ctx, url, outputPath)
		elapsed := time.Since(start)
		c.observer.AttemptFinished(url, attempt, elapsed, err)

		if err == nil {
			log.Info("screenshot saved",
				zap.String("path", outputPath),
				zap.Int("attempt", attempt),
				zap.Duration("elapsed", elapsed))
			c.observer.CaptureFinished(url, attempt, nil)
			return attempt, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt, ctxErr
		}

		lastErr = err
		log.Warn("capture attempt failed", zap.Int("attempt", attempt), zap.Error(err))
	}

	err := fmt.Errorf("%w: %s after %d attempts: %w", ErrCaptureExhausted, url, c.cfg.maxAttempts, lastErr)
	log.Error("skipping URL", zap.Int("attempts", c.cfg.maxAttempts), zap.Error(lastErr))
	c.observer.CaptureFinished(url, c.cfg.maxAttempts, err)
	return c.cfg.maxAttempts, err
}

// attempt runs one capture inside its own browser session.
// Panics from the browser driver are turned into errors so they are retried
// like any other failure.
func (c *Capturer) attempt(ctx context.Context, url, outputPath string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	session, err := c.engine.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			c.logger.Debug("closing browser session", zap.String("url", url), zap.Error(closeErr))
		}
	}()

	data, err := session.FullPageScreenshot(ctx, url, c.cfg.navTimeout)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty image", ErrScreenshot)
	}

	if err := fileutil.WriteFileAtomic(outputPath, data, fileutil.FilePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteScreenshot, err)
	}
	return nil
}

// IsExhausted reports whether err is a capture exhaustion.
func IsExhausted(err error) bool {
	return errors.Is(err, ErrCaptureExhausted)
}
