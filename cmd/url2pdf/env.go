package main

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/publish"
)

// Pipeline runs captures and assembly. Implemented by *url2pdf.Runner.
type Pipeline interface {
	Run(ctx context.Context, urls []string, screenshotDir, pdfPath string) (*url2pdf.RunReport, error)
}

// Publisher uploads run artifacts. Implemented by *publish.Publisher.
type Publisher interface {
	PublishRun(ctx context.Context, pdfPath string, screenshots []string) ([]string, error)
}

// Compile-time interface implementation checks.
var (
	_ Pipeline  = (*url2pdf.Runner)(nil)
	_ Publisher = (*publish.Publisher)(nil)
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, process environment and the pipeline factories.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string

	NewPipeline  func(opts ...url2pdf.Option) (Pipeline, error)
	NewPublisher func(ctx context.Context, cfg publish.Config, logger *zap.Logger) (Publisher, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		NewPipeline: func(opts ...url2pdf.Option) (Pipeline, error) {
			return url2pdf.NewRunner(opts...)
		},
		NewPublisher: func(ctx context.Context, cfg publish.Config, logger *zap.Logger) (Publisher, error) {
			return publish.New(ctx, cfg, logger)
		},
	}
}
