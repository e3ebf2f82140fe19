package url2pdf

// Notes:
// - The browser is replaced by fakeEngine; real engines are exercised by the
//   integration tests.
// - Attempts are counted per URL by the fake, Open calls separately, so a
//   launch failure consumes an attempt without reaching the page.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestCapturer(t *testing.T, e *fakeEngine, attempts int, opts ...Option) *Capturer {
	t.Helper()
	c, err := NewCapturer(append([]Option{withEngine(e), WithMaxAttempts(attempts)}, opts...)...)
	if err != nil {
		t.Fatalf("NewCapturer() error: %v", err)
	}
	return c
}

// ---------------------------------------------------------------------------
// TestCapture - Success paths
// ---------------------------------------------------------------------------

func TestCapture_FirstAttempt(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{}
	obs := &recordingObserver{}
	c := newTestCapturer(t, e, 5, WithObserver(obs))
	out := filepath.Join(t.TempDir(), "screenshot_1.png")

	n, err := c.Capture(context.Background(), "https://a.test", out)
	if err != nil {
		t.Fatalf("Capture() error: %v", err)
	}
	if n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("screenshot not written: %v", err)
	}
	if !bytes.Equal(data, defaultShot) {
		t.Error("screenshot content differs from browser output")
	}
	if e.opens != 1 || e.openSessions() != 0 {
		t.Errorf("opens = %d, open sessions = %d; want 1, 0", e.opens, e.openSessions())
	}
	if len(obs.attempts) != 1 || len(obs.captures) != 1 || obs.captures[0] != nil {
		t.Errorf("observer attempts = %v, captures = %v", obs.attempts, obs.captures)
	}
}

func TestCapture_SucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{
		shot: func(_ context.Context, _ string, n int) ([]byte, error) {
			if n < 3 {
				return nil, ErrPageLoad
			}
			return defaultShot, nil
		},
	}
	c := newTestCapturer(t, e, 5)
	out := filepath.Join(t.TempDir(), "shot.png")

	n, err := c.Capture(context.Background(), "https://flaky.test", out)
	if err != nil {
		t.Fatalf("Capture() error: %v", err)
	}
	if n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
	if got := e.attemptsFor("https://flaky.test"); got != 3 {
		t.Errorf("browser saw %d attempts, want 3 (none after success)", got)
	}
	if e.opens != 3 {
		t.Errorf("opens = %d, want a fresh session per attempt", e.opens)
	}
	if e.openSessions() != 0 {
		t.Errorf("%d sessions left open", e.openSessions())
	}
}

// ---------------------------------------------------------------------------
// TestCapture - Exhaustion
// ---------------------------------------------------------------------------

func TestCapture_Exhausted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		engine   *fakeEngine
		attempts int
		wantErr  error
	}{
		{
			name: "navigation always fails",
			engine: &fakeEngine{shot: func(context.Context, string, int) ([]byte, error) {
				return nil, ErrPageLoad
			}},
			attempts: 5,
			wantErr:  ErrPageLoad,
		},
		{
			name: "browser never starts",
			engine: &fakeEngine{openErr: func(int) error {
				return ErrBrowserConnect
			}},
			attempts: 3,
			wantErr:  ErrBrowserConnect,
		},
		{
			name: "empty screenshot",
			engine: &fakeEngine{shot: func(context.Context, string, int) ([]byte, error) {
				return nil, nil
			}},
			attempts: 2,
			wantErr:  ErrScreenshot,
		},
		{
			name: "driver panic",
			engine: &fakeEngine{shot: func(context.Context, string, int) ([]byte, error) {
				panic("target closed")
			}},
			attempts: 2,
			wantErr:  ErrCaptureExhausted,
		},
		{
			name:     "single attempt",
			engine:   &fakeEngine{shot: func(context.Context, string, int) ([]byte, error) { return nil, ErrScreenshot }},
			attempts: 1,
			wantErr:  ErrScreenshot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			obs := &recordingObserver{}
			c := newTestCapturer(t, tt.engine, tt.attempts, WithObserver(obs))
			out := filepath.Join(t.TempDir(), "shot.png")

			n, err := c.Capture(context.Background(), "https://down.test", out)
			if !IsExhausted(err) {
				t.Fatalf("Capture() error = %v, want ErrCaptureExhausted", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Capture() error = %v, want it to wrap %v", err, tt.wantErr)
			}
			if n != tt.attempts {
				t.Errorf("attempts = %d, want %d", n, tt.attempts)
			}
			if tt.engine.opens != tt.attempts {
				t.Errorf("opens = %d, want %d", tt.engine.opens, tt.attempts)
			}
			if tt.engine.openSessions() != 0 {
				t.Errorf("%d sessions left open", tt.engine.openSessions())
			}
			if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
				t.Errorf("exhausted capture left a file: %v", statErr)
			}
			if len(obs.attempts) != tt.attempts || len(obs.captures) != 1 || !IsExhausted(obs.captures[0]) {
				t.Errorf("observer attempts = %d, captures = %v", len(obs.attempts), obs.captures)
			}
		})
	}
}

func TestCapture_RemovesStaleScreenshot(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "screenshot_1.png")
	writePNG(t, out, 10, 10)

	e := &fakeEngine{shot: func(context.Context, string, int) ([]byte, error) {
		return nil, ErrPageLoad
	}}
	c := newTestCapturer(t, e, 2)

	if _, err := c.Capture(context.Background(), "https://down.test", out); !IsExhausted(err) {
		t.Fatalf("Capture() error = %v, want exhaustion", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Error("image from an earlier run survived an exhausted capture")
	}
}

// ---------------------------------------------------------------------------
// TestCapture - Cancellation and input errors
// ---------------------------------------------------------------------------

func TestCapture_ContextCanceledBeforeStart(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{}
	c := newTestCapturer(t, e, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := c.Capture(ctx, "https://a.test", filepath.Join(t.TempDir(), "x.png"))
	if !errors.Is(err, context.Canceled) || IsExhausted(err) {
		t.Errorf("Capture() error = %v, want context.Canceled", err)
	}
	if n != 0 || e.opens != 0 {
		t.Errorf("attempts = %d, opens = %d; want 0, 0", n, e.opens)
	}
}

func TestCapture_ContextCanceledDuringAttempt(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := &fakeEngine{shot: func(ctx context.Context, _ string, _ int) ([]byte, error) {
		cancel()
		return nil, ctx.Err()
	}}
	c := newTestCapturer(t, e, 5)

	n, err := c.Capture(ctx, "https://slow.test", filepath.Join(t.TempDir(), "x.png"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Capture() error = %v, want context.Canceled", err)
	}
	if IsExhausted(err) {
		t.Error("cancellation must not be reported as exhaustion")
	}
	if n != 1 || e.opens != 1 {
		t.Errorf("attempts = %d, opens = %d; want 1, 1", n, e.opens)
	}
	if e.openSessions() != 0 {
		t.Error("session left open after cancellation")
	}
}

func TestCapture_InvalidArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		out     string
		wantErr error
	}{
		{"empty url", "", "x.png", ErrEmptyURL},
		{"empty output", "https://a.test", "", ErrEmptyOutputPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := &fakeEngine{}
			c := newTestCapturer(t, e, 5)
			if _, err := c.Capture(context.Background(), tt.url, tt.out); !errors.Is(err, tt.wantErr) {
				t.Errorf("Capture() error = %v, want %v", err, tt.wantErr)
			}
			if e.opens != 0 {
				t.Error("browser opened for invalid arguments")
			}
		})
	}
}

func TestCapture_OutputIsDirectory(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "screenshot_1.png")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}

	e := &fakeEngine{}
	c := newTestCapturer(t, e, 5)
	_, err := c.Capture(context.Background(), "https://a.test", out)
	if !errors.Is(err, ErrWriteScreenshot) || IsExhausted(err) {
		t.Errorf("Capture() error = %v, want ErrWriteScreenshot", err)
	}
}

// ---------------------------------------------------------------------------
// TestNewCapturer - Construction
// ---------------------------------------------------------------------------

func TestNewCapturer(t *testing.T) {
	t.Parallel()

	c, err := NewCapturer(WithEngine("chromedp"), WithMaxAttempts(7))
	if err != nil {
		t.Fatalf("NewCapturer() error: %v", err)
	}
	if c.MaxAttempts() != 7 {
		t.Errorf("MaxAttempts() = %d, want 7", c.MaxAttempts())
	}
	if _, ok := c.engine.(*chromedpEngine); !ok {
		t.Errorf("engine = %T, want *chromedpEngine", c.engine)
	}

	if _, err := NewCapturer(WithEngine("webkit")); !errors.Is(err, ErrInvalidEngine) {
		t.Errorf("NewCapturer(webkit) error = %v, want ErrInvalidEngine", err)
	}
}

func TestNewCapturer_Defaults(t *testing.T) {
	t.Parallel()

	c, err := NewCapturer()
	if err != nil {
		t.Fatalf("NewCapturer() error: %v", err)
	}
	if c.MaxAttempts() != DefaultMaxAttempts {
		t.Errorf("MaxAttempts() = %d, want %d", c.MaxAttempts(), DefaultMaxAttempts)
	}
	if c.cfg.navTimeout != DefaultNavigationTimeout {
		t.Errorf("navTimeout = %v, want %v", c.cfg.navTimeout, DefaultNavigationTimeout)
	}
	if _, ok := c.engine.(*rodEngine); !ok {
		t.Errorf("engine = %T, want *rodEngine", c.engine)
	}
}
