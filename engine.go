package url2pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// browserEngine launches short-lived browser sessions.
// Every capture attempt opens its own session and closes it before the next.
type browserEngine interface {
	Open(ctx context.Context) (browserSession, error)
}

// browserSession is one running browser process.
type browserSession interface {
	// FullPageScreenshot loads url within navTimeout and returns a PNG of the whole page.
	FullPageScreenshot(ctx context.Context, url string, navTimeout time.Duration) ([]byte, error)
	Close() error
}

// Compile-time interface checks.
var (
	_ browserEngine  = (*rodEngine)(nil)
	_ browserSession = (*rodSession)(nil)
	_ browserEngine  = (*chromedpEngine)(nil)
	_ browserSession = (*chromedpSession)(nil)
)

// engineOptions holds launch settings shared by all engines.
type engineOptions struct {
	viewport   Viewport
	browserBin string
	noSandbox  bool
}

// newEngine builds the named engine. Name matching is case-insensitive.
func newEngine(name string, opts engineOptions) (browserEngine, error) {
	switch strings.ToLower(name) {
	case "", EngineRod:
		return &rodEngine{opts: opts}, nil
	case EngineChromedp:
		return &chromedpEngine{opts: opts}, nil
	default:
		return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidEngine, name, EngineRod, EngineChromedp)
	}
}

// browserEnv reads browser launch overrides from the environment.
// ROD_BROWSER_BIN wins over CHROME_PATH. The sandbox is disabled in CI, when
// ROD_NO_SANDBOX=1, or when a pre-installed binary is used (containers).
func browserEnv(getenv func(string) string) (bin string, noSandbox bool) {
	bin = getenv("ROD_BROWSER_BIN")
	if bin == "" {
		bin = getenv("CHROME_PATH")
	}
	noSandbox = getenv("ROD_NO_SANDBOX") == "1" ||
		getenv("CI") == "true" ||
		bin != ""
	return bin, noSandbox
}

// defaultEngineOptions returns launch settings from the process environment.
func defaultEngineOptions() engineOptions {
	bin, noSandbox := browserEnv(os.Getenv)
	return engineOptions{
		viewport:   DefaultViewport(),
		browserBin: bin,
		noSandbox:  noSandbox,
	}
}

// loadError wraps a navigation failure in ErrPageLoad, adding
// ErrNavigationTimeout when the navigation deadline expired.
func loadError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %v", ErrPageLoad, ErrNavigationTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrPageLoad, err)
}
