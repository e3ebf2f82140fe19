package url2pdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ---------------------------------------------------------------------------
// Images
// ---------------------------------------------------------------------------

// pngBytes encodes an opaque w x h PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// writePNG writes a w x h PNG to path.
func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.WriteFile(path, pngBytes(t, w, h), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// ---------------------------------------------------------------------------
// PDF read-back
// ---------------------------------------------------------------------------

// loadPDF parses the PDF at path with pdfcpu and resolves its page tree.
func loadPDF(t *testing.T, path string) *model.Context {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening pdf: %v", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		t.Fatalf("pdfcpu cannot read %s: %v", path, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		t.Fatalf("pdfcpu page count: %v", err)
	}
	return ctx
}

// readPDF returns the page count and per-page dimensions in points of the
// PDF at path.
func readPDF(t *testing.T, path string) (int, []types.Dim) {
	t.Helper()

	ctx := loadPDF(t, path)
	if ctx.PageCount == 0 {
		return 0, nil
	}

	dims, err := ctx.PageDims()
	if err != nil {
		t.Fatalf("pdfcpu page dims: %v", err)
	}
	return ctx.PageCount, dims
}

// pageContent returns the decoded content stream of page n (1-based).
func pageContent(t *testing.T, path string, n int) string {
	t.Helper()

	r, err := pdfcpu.ExtractPageContent(loadPDF(t, path), n)
	if err != nil {
		t.Fatalf("pdfcpu page %d content: %v", n, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading page %d content: %v", n, err)
	}
	return string(data)
}

// linkAnnot is a URI link annotation read back from a page.
type linkAnnot struct {
	rect [4]float64
	uri  string
}

// pageLinks returns the URI link annotations of page n (1-based).
func pageLinks(t *testing.T, path string, n int) []linkAnnot {
	t.Helper()

	d, _, _, err := loadPDF(t, path).PageDict(n, false)
	if err != nil {
		t.Fatalf("pdfcpu page %d dict: %v", n, err)
	}

	var links []linkAnnot
	for _, o := range d.ArrayEntry("Annots") {
		ad, ok := o.(types.Dict)
		if !ok {
			t.Fatalf("page %d annotation is %T, want an inline dict", n, o)
		}
		rect := ad.ArrayEntry("Rect")
		if len(rect) != 4 {
			t.Fatalf("page %d annotation Rect = %v", n, rect)
		}
		var l linkAnnot
		for i, v := range rect {
			switch v := v.(type) {
			case types.Float:
				l.rect[i] = float64(v)
			case types.Integer:
				l.rect[i] = float64(v)
			default:
				t.Fatalf("Rect[%d] is %T", i, v)
			}
		}
		if uri := ad.DictEntry("A").StringLiteralEntry("URI"); uri != nil {
			l.uri = string(*uri)
		}
		links = append(links, l)
	}
	return links
}

// numbers parses every match group of re in s as a float.
func numbers(t *testing.T, re *regexp.Regexp, s string) [][]float64 {
	t.Helper()

	var out [][]float64
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		row := make([]float64, 0, len(m)-1)
		for _, g := range m[1:] {
			v, err := strconv.ParseFloat(g, 64)
			if err != nil {
				t.Fatalf("parsing %q in %q: %v", g, m[0], err)
			}
			row = append(row, v)
		}
		out = append(out, row)
	}
	return out
}

// assertDim checks a page size within half a point (fpdf rounds to 0.01).
func assertDim(t *testing.T, page int, got types.Dim, wantW, wantH float64) {
	t.Helper()
	if abs(got.Width-wantW) > 0.5 || abs(got.Height-wantH) > 0.5 {
		t.Errorf("page %d = %.2fx%.2f pt, want %.2fx%.2f", page, got.Width, got.Height, wantW, wantH)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// ---------------------------------------------------------------------------
// Browser engine fake
// ---------------------------------------------------------------------------

// fakeEngine hands out sessions whose screenshots come from shot.
// Open calls and per-URL screenshot attempts are counted.
type fakeEngine struct {
	mu       sync.Mutex
	opens    int
	attempts map[string]int
	sessions []*fakeSession

	// openErr fails the n-th Open call (1-based) when it returns an error.
	openErr func(n int) error
	// shot returns the screenshot for the n-th attempt (1-based) on url.
	// Nil returns a 64x40 PNG.
	shot func(ctx context.Context, url string, n int) ([]byte, error)
}

func (e *fakeEngine) Open(ctx context.Context) (browserSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opens++
	if e.openErr != nil {
		if err := e.openErr(e.opens); err != nil {
			return nil, err
		}
	}
	s := &fakeSession{engine: e}
	e.sessions = append(e.sessions, s)
	return s, nil
}

// attemptsFor returns how many screenshots were requested for url.
func (e *fakeEngine) attemptsFor(url string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attempts[url]
}

// openSessions returns how many sessions were never closed.
func (e *fakeEngine) openSessions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.sessions {
		if !s.closed {
			n++
		}
	}
	return n
}

type fakeSession struct {
	engine *fakeEngine
	closed bool
}

// defaultShot is an opaque white 64x40 PNG.
var defaultShot = func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 40))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}()

func (s *fakeSession) FullPageScreenshot(ctx context.Context, url string, _ time.Duration) ([]byte, error) {
	e := s.engine
	e.mu.Lock()
	if e.attempts == nil {
		e.attempts = map[string]int{}
	}
	e.attempts[url]++
	n := e.attempts[url]
	shot := e.shot
	e.mu.Unlock()

	if shot == nil {
		return defaultShot, nil
	}
	return shot(ctx, url, n)
}

func (s *fakeSession) Close() error {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	s.closed = true
	return nil
}

// ---------------------------------------------------------------------------
// Observer
// ---------------------------------------------------------------------------

// recordingObserver keeps every event.
type recordingObserver struct {
	mu       sync.Mutex
	attempts []error
	captures []error
	pages    []pageEvent
}

type pageEvent struct {
	url         string
	placeholder bool
	err         error
}

func (o *recordingObserver) AttemptFinished(_ string, _ int, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempts = append(o.attempts, err)
}

func (o *recordingObserver) CaptureFinished(_ string, _ int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.captures = append(o.captures, err)
}

func (o *recordingObserver) PageFinished(url string, placeholder bool, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pages = append(o.pages, pageEvent{url: url, placeholder: placeholder, err: err})
}
