package url2pdf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxLineLength bounds a single input line (long tracking URLs included).
const maxLineLength = 1 << 20

// ReadURLs returns the non-blank lines of r, trimmed, in order.
// No other validation is done: the browser rejects what it cannot load.
func ReadURLs(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var urls []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadURLs, err)
	}
	return urls, nil
}

// ReadURLsFile reads the URL list at path.
func ReadURLsFile(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided input file
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadURLs, err)
	}
	defer f.Close()
	return ReadURLs(f)
}

// ScreenshotPath returns dir/screenshot_<index>.png, index being 1-based.
func ScreenshotPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("screenshot_%d.png", index))
}
