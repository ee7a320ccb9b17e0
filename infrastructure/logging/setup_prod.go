//go:build prod

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs the file logger. Records go to LogPath(cfg), rotated by size
// and age, and are copied to cfg.Output when it is set. The returned close
// function closes the current log file.
func Setup(cfg *Config) (*slog.Logger, func() error, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	path := LogPath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file := newRotatingFile(path, cfg)

	var w io.Writer = file
	if cfg.Output != nil {
		w = io.MultiWriter(file, cfg.Output)
	}

	logger := install(newHandler(w, cfg))
	return logger, file.Close, nil
}

func newRotatingFile(path string, cfg *Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}
