package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/publish"
)

// fixedNow is the clock used by test environments.
var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// runCall records one Pipeline.Run invocation.
type runCall struct {
	urls          []string
	screenshotDir string
	pdfPath       string
}

// fakePipeline returns a canned report and records its calls.
type fakePipeline struct {
	mu     sync.Mutex
	calls  []runCall
	report func(urls []string, dir, pdf string) *url2pdf.RunReport
	err    error
}

func (f *fakePipeline) Run(_ context.Context, urls []string, dir, pdf string) (*url2pdf.RunReport, error) {
	f.mu.Lock()
	f.calls = append(f.calls, runCall{urls: urls, screenshotDir: dir, pdfPath: pdf})
	f.mu.Unlock()

	var r *url2pdf.RunReport
	if f.report != nil {
		r = f.report(urls, dir, pdf)
	} else {
		r = successReport(urls, dir, pdf)
	}
	return r, f.err
}

// successReport describes a run where every URL was captured.
func successReport(urls []string, dir, pdf string) *url2pdf.RunReport {
	r := &url2pdf.RunReport{Document: &url2pdf.AssembleReport{Path: pdf, Pages: len(urls)}}
	for i, u := range urls {
		r.Captures = append(r.Captures, url2pdf.CaptureResult{
			Index:     i + 1,
			URL:       u,
			ImagePath: url2pdf.ScreenshotPath(dir, i+1),
			Attempts:  1,
		})
	}
	return r
}

// fakePublisher records uploads.
type fakePublisher struct {
	cfg         publish.Config
	pdfPath     string
	screenshots []string
	err         error
}

func (f *fakePublisher) PublishRun(_ context.Context, pdfPath string, screenshots []string) ([]string, error) {
	f.pdfPath = pdfPath
	f.screenshots = screenshots
	if f.err != nil {
		return nil, f.err
	}
	return append([]string{pdfPath}, screenshots...), nil
}

// testHarness bundles an Environment with its fakes and buffers.
type testHarness struct {
	env       *Environment
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	pipeline  *fakePipeline
	publisher *fakePublisher
	vars      map[string]string
	dir       string
}

// newHarness returns an Environment whose process environment is vars and
// whose working files live in a temp dir. urls.txt there holds two URLs.
func newHarness(t *testing.T, vars map[string]string) *testHarness {
	t.Helper()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "urls.txt"), "https://a.test\n\nhttps://b.test\n")

	if vars == nil {
		vars = map[string]string{}
	}
	h := &testHarness{
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
		pipeline:  &fakePipeline{},
		publisher: &fakePublisher{},
		vars:      vars,
		dir:       dir,
	}
	h.env = &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdout: h.stdout,
		Stderr: h.stderr,
		Getenv: func(k string) string { return h.vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(h.vars))
			for k, v := range h.vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		NewPipeline: func(opts ...url2pdf.Option) (Pipeline, error) {
			// Options are validated by a real component; no browser starts.
			if _, err := url2pdf.NewAssembler(opts...); err != nil {
				return nil, err
			}
			return h.pipeline, nil
		},
		NewPublisher: func(_ context.Context, cfg publish.Config, _ *zap.Logger) (Publisher, error) {
			h.publisher.cfg = cfg
			return h.publisher, nil
		},
	}
	return h
}

// path returns name inside the harness directory.
func (h *testHarness) path(name string) string {
	return filepath.Join(h.dir, name)
}

// run invokes runMain with "url2pdf" prepended, pointing the input and
// outputs at the harness directory unless args override them.
func (h *testHarness) run(args ...string) int {
	base := []string{"url2pdf",
		"--input", h.path("urls.txt"),
		"--screenshots", h.path("shots"),
		"--output", h.path("out.pdf"),
	}
	return runMain(context.Background(), append(base, args...), h.env)
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output missing %q\n--- got ---\n%s", want, got)
	}
}
