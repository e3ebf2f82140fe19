package main

import (
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunHelp - Per-command help
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"no command", nil, ExitSuccess, "Usage: url2pdf [command]"},
		{"run", []string{"run"}, ExitSuccess, "--attempts"},
		{"doctor", []string{"doctor"}, ExitSuccess, "url2pdf doctor [--json]"},
		{"version", []string{"version"}, ExitSuccess, "url2pdf version"},
		{"help", []string{"help"}, ExitSuccess, "url2pdf help [command]"},
		{"completion", []string{"completion"}, ExitSuccess, "url2pdf completion <shell>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, nil)
			if code := runHelp(tt.args, h.env); code != tt.wantCode {
				t.Errorf("runHelp(%v) = %d, want %d", tt.args, code, tt.wantCode)
			}
			assertContains(t, h.stdout.String(), tt.wantOut)
		})
	}
}

func TestRunHelp_UnknownCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	if code := runHelp([]string{"capture"}, h.env); code != ExitUsage {
		t.Errorf("runHelp(capture) = %d, want %d", code, ExitUsage)
	}
	assertContains(t, h.stderr.String(), "Unknown command: capture")
	if h.stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", h.stdout.String())
	}
}

func TestPrintRunUsage_ListsEveryFlag(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	printRunUsage(h.stdout)
	out := h.stdout.String()

	for _, flag := range []string{
		"--input", "--screenshots", "--output", "--config",
		"--attempts", "--timeout", "--engine", "--viewport", "--browser", "--no-sandbox",
		"--dpi", "--missing", "--wm-color", "--wm-size",
		"--metrics-file", "--s3-bucket", "--s3-prefix", "--s3-endpoint", "--s3-path-style", "--s3-screenshots",
		"--quiet", "--verbose", "--log-format", "--no-summary", "--strict",
	} {
		assertContains(t, out, flag)
	}
}
