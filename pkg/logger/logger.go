// Package logger builds the process-wide logrus logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls level, format and the optional rotated log file.
type Options struct {
	Level  string // trace ... panic
	Format string // text or json
	File   string // empty logs to stdout only

	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// DefaultOptions logs text at info level to stdout.
func DefaultOptions() Options {
	return Options{
		Level:      "info",
		Format:     "text",
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}
}

// New creates a logger from opts. When File is set, output goes to stdout
// and to a lumberjack-rotated file.
func New(opts Options) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	log.SetLevel(level)

	switch opts.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	default:
		return nil, fmt.Errorf("invalid log format %q", opts.Format)
	}

	writers := []io.Writer{os.Stdout}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		})
	}
	log.SetOutput(io.MultiWriter(writers...))
	return log, nil
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
