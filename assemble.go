package url2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders for image.DecodeConfig
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/alnah/go-url2pdf/internal/fileutil"
)

// Watermark layout.
const (
	watermarkFont = "Helvetica"
	// linkBandRatio sizes the clickable band relative to the font size:
	// 10pt tall for the default 12pt text.
	linkBandRatio = 10.0 / 12.0
)

// Placeholder page text.
const (
	placeholderText     = "screenshot unavailable"
	placeholderFontSize = 24.0
	placeholderGray     = 240
	placeholderTextGray = 110
)

// documentCreator is written to the PDF metadata.
const documentCreator = "url2pdf"

// Assembler turns ordered (URL, image) entries into a single PDF where every
// page matches its image size. Create with NewAssembler.
type Assembler struct {
	cfg       settings
	watermark Watermark
	logger    *zap.Logger
	observer  Observer
}

// NewAssembler creates an Assembler. Use options to customize behavior
// (e.g., WithDPI, WithWatermark, WithMissingPolicy).
func NewAssembler(opts ...Option) (*Assembler, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newAssembler(cfg), nil
}

func newAssembler(cfg settings) *Assembler {
	return &Assembler{
		cfg:       cfg,
		watermark: cfg.watermark.withDefaults(),
		logger:    cfg.logger,
		observer:  cfg.observer,
	}
}

// Assemble writes one PDF page per entry, in order, to pdfPath.
//
// An entry whose image is missing or unreadable fails with ErrImageOpen: it
// is logged, recorded in the report and skipped (or replaced by a
// placeholder page under MissingPlaceholder). Everything that can reject an
// entry is checked before its page is created, so a skipped entry never
// leaves a page behind. A failure while drawing an already created page
// aborts with ErrPageDraw and no file is written. The file is written once,
// after all entries, and replaces any previous file. Entries that all fail
// yield a valid PDF with zero pages.
func (a *Assembler) Assemble(ctx context.Context, pdfPath string, entries []Entry) (*AssembleReport, error) {
	if pdfPath == "" {
		return nil, ErrEmptyOutputPath
	}

	doc := newDocument()
	report := &AssembleReport{Path: pdfPath}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := a.addImagePage(doc, e)
		if err == nil {
			report.Pages++
			a.observer.PageFinished(e.URL, false, nil)
			continue
		}
		if errors.Is(err, ErrPageDraw) {
			return nil, fmt.Errorf("%s: %w", e.URL, err)
		}

		a.logger.Warn("failed to add image to PDF",
			zap.String("url", e.URL),
			zap.String("image", e.ImagePath),
			zap.Error(err))
		report.Failures = append(report.Failures, PageFailure{URL: e.URL, ImagePath: e.ImagePath, Err: err})

		if a.cfg.missing == MissingPlaceholder {
			if perr := a.addPlaceholderPage(doc, e); perr != nil {
				return nil, fmt.Errorf("%s: %w", e.URL, perr)
			}
			report.Pages++
			report.Placeholders++
			a.observer.PageFinished(e.URL, true, nil)
			continue
		}
		a.observer.PageFinished(e.URL, false, err)
	}

	data, err := doc.bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	if err := fileutil.WriteFileAtomic(pdfPath, data, fileutil.FilePermissions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWritePDF, err)
	}

	a.logger.Info("PDF created",
		zap.String("path", pdfPath),
		zap.Int("pages", report.Pages),
		zap.Int("skipped", len(report.Failures)-report.Placeholders))
	return report, nil
}

// addImagePage adds a page sized to the image, the image itself and the
// URL watermark. The image and the watermark font are loaded before the page
// is created, so an unreadable file fails with ErrImageOpen and adds nothing.
func (a *Assembler) addImagePage(doc *document, e Entry) error {
	geom, imageType, err := ReadImageGeometry(e.ImagePath, a.cfg.dpi)
	if err != nil {
		return err
	}

	opts := fpdf.ImageOptions{ImageType: imageType}
	doc.pdf.RegisterImageOptions(e.ImagePath, opts)
	doc.pdf.SetFont(watermarkFont, "", a.watermark.FontSize)
	if err := doc.takeError(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrImageOpen, e.ImagePath, err)
	}

	w, h := geom.WidthPt(), geom.HeightPt()
	return doc.drawOnNewPage(w, h, func() {
		doc.pdf.ImageOptions(e.ImagePath, 0, 0, w, h, false, opts, 0, "")
		a.drawWatermark(doc, e.URL, w)
	})
}

// addPlaceholderPage adds a viewport-sized page stating that the screenshot
// is unavailable, with the usual watermark.
func (a *Assembler) addPlaceholderPage(doc *document, e Entry) error {
	vp := a.cfg.engineOpts.viewport
	geom := PageGeometry{WidthPx: vp.Width, HeightPx: vp.Height, DPI: a.cfg.dpi}
	w, h := geom.WidthPt(), geom.HeightPt()

	return doc.drawOnNewPage(w, h, func() {
		doc.pdf.SetFillColor(placeholderGray, placeholderGray, placeholderGray)
		doc.pdf.Rect(0, 0, w, h, "F")
		doc.pdf.SetFont(watermarkFont, "", placeholderFontSize)
		doc.pdf.SetTextColor(placeholderTextGray, placeholderTextGray, placeholderTextGray)
		textWidth := doc.pdf.GetStringWidth(placeholderText)
		doc.pdf.Text((w-textWidth)/2, h/2, placeholderText)
		a.drawWatermark(doc, e.URL, w)
	})
}

// drawWatermark writes the URL near the top-left corner and covers a band
// across the top of the page with a link to it.
func (a *Assembler) drawWatermark(doc *document, url string, pageWidth float64) {
	wm := a.watermark
	r, g, b := wm.rgb()

	doc.pdf.SetFont(watermarkFont, "", wm.FontSize)
	doc.pdf.SetTextColor(r, g, b)
	doc.pdf.Text(wm.OffsetX, wm.OffsetY, watermarkText(url))

	band := wm.FontSize * linkBandRatio
	linkWidth := pageWidth - 2*wm.OffsetX
	if linkWidth <= 0 {
		linkWidth = pageWidth
	}
	doc.pdf.LinkString(wm.OffsetX, wm.OffsetY-band, linkWidth, band, url)
}

// watermarkText returns url as printable ASCII. The core Helvetica font only
// covers cp1252, so every non-ASCII rune is shown percent-encoded, the way
// browsers copy such URLs. The link target keeps the original string.
func watermarkText(url string) string {
	var b strings.Builder
	for _, r := range url {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
			continue
		}
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], r)
		for _, c := range buf[:n] {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// ReadImageGeometry decodes the header of the image at path and returns its
// page geometry at dpi together with the fpdf image type.
// Missing, unreadable or unsupported files fail with ErrImageOpen.
func ReadImageGeometry(path string, dpi float64) (PageGeometry, string, error) {
	f, err := os.Open(path) // #nosec G304 -- path built by the driver
	if err != nil {
		return PageGeometry{}, "", fmt.Errorf("%w: %v", ErrImageOpen, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return PageGeometry{}, "", fmt.Errorf("%w: %s: %v", ErrImageOpen, path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return PageGeometry{}, "", fmt.Errorf("%w: %s: empty image", ErrImageOpen, path)
	}

	var imageType string
	switch format {
	case "png":
		imageType = "PNG"
	case "jpeg":
		imageType = "JPG"
	case "gif":
		imageType = "GIF"
	default:
		return PageGeometry{}, "", fmt.Errorf("%w: %s: unsupported format %q", ErrImageOpen, path, format)
	}

	return PageGeometry{WidthPx: cfg.Width, HeightPx: cfg.Height, DPI: dpi}, imageType, nil
}

// document wraps an fpdf document whose pages are sized individually.
type document struct {
	pdf   *fpdf.Fpdf
	pages int
}

func newDocument() *document {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		SizeStr:        "A4",
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator(documentCreator, true)
	pdf.SetProducer(documentCreator, true)

	return &document{pdf: pdf}
}

// addPage starts a page of exactly w x h points.
// Orientation "P" keeps the given width and height as-is.
func (d *document) addPage(w, h float64) {
	d.pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
	d.pages++
}

// drawOnNewPage adds a w x h page and runs draw on it. fpdf cannot remove a
// page, so a failure here leaves the document unusable.
func (d *document) drawOnNewPage(w, h float64, draw func()) error {
	d.addPage(w, h)
	draw()
	if err := d.takeError(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageDraw, err)
	}
	return nil
}

// takeError returns and clears the document error state.
func (d *document) takeError() error {
	if d.pdf.Ok() {
		return nil
	}
	err := d.pdf.Error()
	d.pdf.ClearError()
	return err
}

// bytes renders the document. fpdf always emits at least one page, so a
// document without pages is rendered by writeEmptyPDF instead.
func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if d.pages == 0 {
		if err := writeEmptyPDF(&buf, documentCreator); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
