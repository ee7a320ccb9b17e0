//go:build !prod

package logging

import (
	"log/slog"
	"os"
)

// Setup installs the console logger. Records go to cfg.Output, or os.Stdout
// when it is nil. The returned close function does nothing.
func Setup(cfg *Config) (*slog.Logger, func() error, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	logger := install(newHandler(out, cfg))
	return logger, func() error { return nil }, nil
}
