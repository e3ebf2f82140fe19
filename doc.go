// Package url2pdf captures full-page screenshots of web pages with a headless
// browser and assembles them into a single PDF, one page per screenshot.
//
// # Quick Start
//
// Read a URL list, then run the whole pipeline:
//
//	urls, err := url2pdf.ReadURLsFile("urls.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	runner, err := url2pdf.NewRunner()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := runner.Run(ctx, urls, "screenshots", "output.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, c := range report.Exhausted() {
//	    log.Printf("no screenshot for %s: %v", c.URL, c.Err)
//	}
//
// # Pipeline
//
// The run is linear and sequential:
//
//  1. Each URL is captured to screenshots/screenshot_<i>.png by a Capturer,
//     which opens a fresh browser per attempt and retries immediately up to
//     WithMaxAttempts times (default 5).
//  2. An Assembler turns every (URL, image) entry into a PDF page sized to
//     the image at WithDPI (default 96), with the URL stamped in blue at the
//     top of the page and linked to its source.
//
// A URL whose capture is exhausted is skipped: its entry has no image, so
// the assembler logs it and leaves no page (or a placeholder page with
// WithMissingPolicy(MissingPlaceholder)).
//
// # Configuration
//
// Use functional options to customize the components:
//
//	runner, err := url2pdf.NewRunner(
//	    url2pdf.WithMaxAttempts(3),
//	    url2pdf.WithNavigationTimeout(30 * time.Second),
//	    url2pdf.WithEngine(url2pdf.EngineChromedp),
//	    url2pdf.WithViewport(url2pdf.Viewport{Width: 1440, Height: 900}),
//	    url2pdf.WithLogger(logger),
//	)
//
// # Browser Requirements
//
// Captures require Chrome/Chromium. With the default rod engine a managed
// Chromium is downloaded on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN (or CHROME_PATH) to specify a custom
// Chrome binary.
package url2pdf
