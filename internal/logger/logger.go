package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls the logger built by NewWithOptions
type Options struct {
	Level  string // debug, info, warn, error
	File   string // optional; written in addition to stderr
	Format string // console (default) or json
}

// New builds a console logger at level that also writes to file when file
// is not empty
func New(level, file string) (*zap.Logger, error) {
	return NewWithOptions(Options{Level: level, File: file})
}

// NewWithOptions builds a zap logger from opts
func NewWithOptions(opts Options) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		lvl = parsed
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch strings.ToLower(opts.Format) {
	case "", "console":
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		cfg.Encoding = "json"
	default:
		return nil, fmt.Errorf("invalid log format %q", opts.Format)
	}

	cfg.OutputPaths = []string{"stderr"}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}

	return cfg.Build()
}

// RunLogPath names a per-run log file: {dir}/{SYMBOL}_{interval}_{date}.log
func RunLogPath(dir, symbol, interval string, now time.Time) string {
	name := fmt.Sprintf("%s_%s_%s.log", strings.ToUpper(symbol), interval, now.Format("2006-01-02"))
	return filepath.Join(dir, name)
}
