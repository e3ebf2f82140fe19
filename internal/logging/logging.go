// Package logging builds the zap logger shared by the CLI and the library.
package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output encodings.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ErrInvalidFormat is returned for an encoding other than console or json.
var ErrInvalidFormat = errors.New("invalid log format")

// ErrInvalidLevel is returned for a level zap does not know.
var ErrInvalidLevel = errors.New("invalid log level")

// Options configures New.
type Options struct {
	Level   string    // debug, info, warn, error (default: info)
	Format  string    // console or json (default: console)
	Quiet   bool      // forces warn, wins over Verbose
	Verbose bool      // forces debug
	Writer  io.Writer // destination, usually os.Stderr
}

// New returns a logger writing to opts.Writer.
// Console output is meant for people, so it drops caller and stack noise.
func New(opts Options) (*zap.Logger, error) {
	level, err := resolveLevel(opts)
	if err != nil {
		return nil, err
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(opts.Format) {
	case "", FormatConsole:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.CallerKey = zapcore.OmitKey
		cfg.StacktraceKey = zapcore.OmitKey
		encoder = zapcore.NewConsoleEncoder(cfg)
	case FormatJSON:
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	default:
		return nil, fmt.Errorf("%w: %q (must be console or json)", ErrInvalidFormat, opts.Format)
	}

	w := opts.Writer
	if w == nil {
		w = io.Discard
	}
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core), nil
}

func resolveLevel(opts Options) (zapcore.Level, error) {
	switch {
	case opts.Quiet:
		return zapcore.WarnLevel, nil
	case opts.Verbose:
		return zapcore.DebugLevel, nil
	case opts.Level == "":
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, opts.Level)
	}
	return level, nil
}
