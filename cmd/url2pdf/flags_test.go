package main

import (
	"bytes"
	"errors"
	"testing"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestParseRunFlags - Parsing
// ---------------------------------------------------------------------------

func TestParseRunFlags(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	f, args, err := parseRunFlags([]string{
		"-i", "list.txt", "-d", "shots", "-o", "out.pdf",
		"-a", "3", "-t", "45s", "--engine", "chromedp",
		"--dpi", "144", "--missing", "placeholder",
		"-q", "--strict", "extra.txt",
	}, &out)
	if err != nil {
		t.Fatalf("parseRunFlags() error: %v", err)
	}

	if f.io.input != "list.txt" || f.io.screenshots != "shots" || f.io.output != "out.pdf" {
		t.Errorf("io flags = %+v", f.io)
	}
	if f.capture.attempts != 3 || f.capture.timeout != "45s" || f.capture.engine != "chromedp" {
		t.Errorf("capture flags = %+v", f.capture)
	}
	if f.document.dpi != 144 || f.document.missing != "placeholder" {
		t.Errorf("document flags = %+v", f.document)
	}
	if !f.common.quiet || !f.strict {
		t.Errorf("quiet = %v, strict = %v; want both true", f.common.quiet, f.strict)
	}
	if len(args) != 1 || args[0] != "extra.txt" {
		t.Errorf("positional = %v, want [extra.txt]", args)
	}
	if !f.set("attempts") || f.set("viewport") {
		t.Error("set() should report only flags given on the command line")
	}
}

func TestParseRunFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown flag", []string{"--nope"}, ErrUsage},
		{"non-numeric attempts", []string{"--attempts", "x"}, ErrUsage},
		{"help", []string{"-h"}, errHelpRequested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			_, _, err := parseRunFlags(tt.args, &out)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parseRunFlags() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI values win over config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	f, _, err := parseRunFlags([]string{
		"--viewport", "1440x900", "--wm-color", "#f00", "--no-sandbox",
		"--s3-bucket", "b", "--s3-path-style", "--log-format", "json",
	}, &out)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Capture.Attempts = 7
	if err := mergeFlags(f, cfg); err != nil {
		t.Fatalf("mergeFlags() error: %v", err)
	}

	if cfg.Capture.Viewport != "1440x900" || !cfg.Capture.NoSandbox {
		t.Errorf("capture = %+v", cfg.Capture)
	}
	if cfg.Capture.Attempts != 7 {
		t.Errorf("Attempts = %d, unset flag must keep config value 7", cfg.Capture.Attempts)
	}
	if cfg.Document.Watermark.Color != "#f00" {
		t.Errorf("watermark color = %q", cfg.Document.Watermark.Color)
	}
	if cfg.Publish.Bucket != "b" || !cfg.Publish.PathStyle {
		t.Errorf("publish = %+v", cfg.Publish)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q", cfg.Log.Format)
	}
}

func TestMergeFlags_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"attempts zero", []string{"--attempts", "0"}, url2pdf.ErrInvalidAttempts},
		{"attempts above limit", []string{"--attempts", "51"}, url2pdf.ErrInvalidAttempts},
		{"timeout unparsable", []string{"--timeout", "soon"}, url2pdf.ErrInvalidTimeout},
		{"timeout negative", []string{"--timeout", "-5s"}, url2pdf.ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			f, _, err := parseRunFlags(tt.args, &out)
			if err != nil {
				t.Fatal(err)
			}
			if err := mergeFlags(f, config.DefaultConfig()); !errors.Is(err, tt.wantErr) {
				t.Errorf("mergeFlags() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
