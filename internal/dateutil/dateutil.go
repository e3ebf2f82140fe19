// Package dateutil expands date placeholders in object key templates.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid placeholder or date format.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length to prevent abuse.
const MaxDateFormatLength = 50

// DefaultDateFormat is used by a bare {date} placeholder.
const DefaultDateFormat = "YYYY-MM-DD"

// dateTokens maps user-friendly tokens to Go time format components.
// Ordered by length descending for greedy matching. Upper-case M is the
// month, lower-case mm the minute.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

// DatePresets provides named shortcuts for common key layouts.
var DatePresets = map[string]string{
	"iso":     "YYYY-MM-DD",
	"compact": "YYYYMMDD",
	"month":   "YYYY-MM",
	"stamp":   "YYYYMMDD-HHmmss",
}

// ParseDateFormat converts a format such as "YYYY/MM/DD" to Go's layout.
// Tokens: YYYY, YY, MMM, MM, DD, HH, mm, ss. Text in brackets is kept
// literally. Other characters are copied as-is.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String(), nil
}

// ExpandDates replaces every {date} or {date:FORMAT} placeholder in tmpl
// with t formatted accordingly. FORMAT is a token format or a preset name.
// Text outside placeholders is returned unchanged.
//
//	ExpandDates("reports/{date}", t)          // reports/2026-03-14
//	ExpandDates("{date:YYYY}/{date:stamp}", t) // 2026/20260314-092653
func ExpandDates(tmpl string, t time.Time) (string, error) {
	var b strings.Builder
	rest := tmpl
	for {
		start := strings.Index(rest, "{date")
		if start == -1 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[start:], '}')
		if end == -1 {
			return "", fmt.Errorf("%w: unclosed placeholder in %q", ErrInvalidDateFormat, tmpl)
		}
		end += start

		value, err := resolve(rest[start+1:end], t)
		if err != nil {
			return "", err
		}
		b.WriteString(rest[:start])
		b.WriteString(value)
		rest = rest[end+1:]
	}
}

// resolve formats t for the placeholder body "date" or "date:FORMAT".
func resolve(body string, t time.Time) (string, error) {
	format := DefaultDateFormat
	if body != "date" {
		f, ok := strings.CutPrefix(body, "date:")
		if !ok {
			return "", fmt.Errorf("%w: unknown placeholder {%s}, use {date} or {date:FORMAT}", ErrInvalidDateFormat, body)
		}
		format = f
		if preset, ok := DatePresets[strings.ToLower(f)]; ok {
			format = preset
		}
	}

	layout, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}
