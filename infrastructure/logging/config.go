// Package logging configures slog for the application. The default build logs
// to the console; building with -tags prod logs to a rotating file instead.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// DefaultFile is the log file name used when Config.File is empty.
const DefaultFile = "orderdesk.log"

// Config holds logging configuration options.
type Config struct {
	// Level is the minimum log level to emit.
	Level slog.Level
	// Dir is the directory for log files (prod only).
	// If empty, defaults to os.UserConfigDir()/orderdesk/logs.
	Dir string
	// File is the log file name inside Dir (prod only).
	File string
	// MaxSizeMB is the maximum size in megabytes of a single log file before rotation.
	MaxSizeMB int
	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int
	// MaxAgeDays is the maximum number of days to retain old log files.
	MaxAgeDays int
	// Compress determines if rotated log files should be compressed.
	Compress bool
	// AddSource adds source file:line to log entries.
	AddSource bool
	// JSON switches records from logfmt text to JSON lines.
	JSON bool
	// Output receives every record. In dev it replaces os.Stdout;
	// in prod it is written in addition to the log file.
	Output io.Writer
}

// DefaultConfig returns sensible defaults for production logging.
func DefaultConfig() *Config {
	return &Config{
		Level:      slog.LevelInfo,
		File:       DefaultFile,
		MaxSizeMB:  50,
		MaxBackups: 10,
		MaxAgeDays: 14,
		Compress:   true,
	}
}

// DefaultLogDir returns the default log directory path.
// Tries os.UserConfigDir, falls back to os.UserCacheDir, then os.TempDir.
func DefaultLogDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, err = os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
	}
	return filepath.Join(dir, "orderdesk", "logs")
}

// LogPath returns the file a prod build writes to for cfg.
func LogPath(cfg *Config) string {
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultLogDir()
	}
	file := cfg.File
	if file == "" {
		file = DefaultFile
	}
	return filepath.Join(dir, file)
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a slog.Level.
// An empty name yields slog.LevelInfo.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// newHandler builds the record handler both builds share.
func newHandler(w io.Writer, cfg *Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}
	if cfg.JSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

var global atomic.Pointer[slog.Logger]

// install makes a logger from handler the process-wide default.
func install(handler slog.Handler) *slog.Logger {
	logger := slog.New(handler)
	global.Store(logger)
	slog.SetDefault(logger)
	return logger
}

// L returns the logger installed by Setup, or slog.Default() before Setup runs.
func L() *slog.Logger {
	if logger := global.Load(); logger != nil {
		return logger
	}
	return slog.Default()
}

type ctxKey struct{}

// With returns a context carrying logger.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the logger carried by ctx, or L() when there is none.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, _ := ctx.Value(ctxKey{}).(*slog.Logger); logger != nil {
			return logger
		}
	}
	return L()
}

// WithAttrs returns a context whose logger carries args on every record.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	return With(ctx, From(ctx).With(args...))
}
