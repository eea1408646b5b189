// Package logging builds the process logger. The terminal belongs to the
// board UI, so logs go to a file unless stderr is asked for.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jeryldev/sprintboard/internal/config"
)

// Stderr is the log.file value that sends logs to standard error.
const Stderr = "-"

// New returns a logger configured from cfg and a closer for its output.
func New(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: cfg.File != Stderr})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	if cfg.File == Stderr {
		logger.SetOutput(os.Stderr)
		return logger, io.NopCloser(nil), nil
	}

	path := cfg.File
	if path == "" {
		if path, err = DefaultPath(); err != nil {
			return nil, nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

// Discard returns a logger that writes nowhere.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "sprintboard", "sb.log"), nil
}
