package url2pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-url2pdf/internal/process"
)

// rodEngine launches Chrome through go-rod.
// Rod downloads a managed Chromium on first run if none is found.
type rodEngine struct {
	opts engineOptions
}

// Open starts a new headless browser process and connects to it.
func (e *rodEngine) Open(ctx context.Context) (browserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().
		Context(ctx).
		Headless(true).
		Leakless(true)

	if e.opts.browserBin != "" {
		l = l.Bin(e.opts.browserBin)
	}
	if e.opts.noSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	return &rodSession{
		launcher: l,
		browser:  browser,
		viewport: e.opts.viewport,
	}, nil
}

// rodSession owns one browser process and its launcher.
type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	viewport Viewport
}

// FullPageScreenshot opens a tab, navigates, waits for the load event and
// captures the full scrollable page as PNG.
func (s *rodSession) FullPageScreenshot(ctx context.Context, url string, navTimeout time.Duration) ([]byte, error) {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.viewport.Width,
		Height:            s.viewport.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	nav := page.Timeout(navTimeout)
	if err := nav.Navigate(url); err != nil {
		return nil, loadError(err)
	}
	if err := nav.WaitLoad(); err != nil {
		return nil, loadError(err)
	}

	data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}
	return data, nil
}

// Close shuts the browser down and kills its process group as a fallback.
func (s *rodSession) Close() error {
	err := s.browser.Close()
	if pid := s.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	s.launcher.Kill()
	s.launcher.Cleanup()
	return err
}
