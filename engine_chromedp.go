package url2pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// fullScreenshotQuality of 100 makes chromedp emit PNG instead of JPEG.
const fullScreenshotQuality = 100

// chromedpEngine launches Chrome through chromedp's exec allocator.
type chromedpEngine struct {
	opts engineOptions
}

// Open starts a new browser process. The first Run forces the launch so
// connection failures surface here rather than at navigation time.
func (e *chromedpEngine) Open(ctx context.Context) (browserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(e.opts.viewport.Width, e.opts.viewport.Height),
	)
	if e.opts.browserBin != "" {
		opts = append(opts, chromedp.ExecPath(e.opts.browserBin))
	}
	if e.opts.noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(taskCtx); err != nil {
		cancelTask()
		cancelAlloc()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	return &chromedpSession{
		ctx:         taskCtx,
		cancelTask:  cancelTask,
		cancelAlloc: cancelAlloc,
		viewport:    e.opts.viewport,
	}, nil
}

// chromedpSession owns one allocator and its browser tab.
type chromedpSession struct {
	ctx         context.Context
	cancelTask  context.CancelFunc
	cancelAlloc context.CancelFunc
	viewport    Viewport
}

// FullPageScreenshot navigates within navTimeout and captures the full page.
func (s *chromedpSession) FullPageScreenshot(ctx context.Context, url string, navTimeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	navCtx, cancel := context.WithTimeout(s.ctx, navTimeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		emulation.SetDeviceMetricsOverride(int64(s.viewport.Width), int64(s.viewport.Height), 1, false),
		chromedp.Navigate(url),
	)
	if err != nil {
		return nil, loadError(err)
	}

	var buf []byte
	if err := chromedp.Run(s.ctx, chromedp.FullScreenshot(&buf, fullScreenshotQuality)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}
	return buf, nil
}

// Close closes the browser gracefully, then releases the allocator.
func (s *chromedpSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancelTask()
	s.cancelAlloc()
	return err
}
