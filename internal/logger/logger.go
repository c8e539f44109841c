package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"finance-tracker/internal/config"

	"github.com/rs/zerolog"
)

// New builds the application logger. Console output is human readable when
// cfg.Pretty is set; a log file, if configured, always receives JSON lines.
// The returned closer releases the log file and is safe to call when no file
// was opened.
func New(cfg config.LogConfig) (zerolog.Logger, func() error, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var console io.Writer = os.Stdout
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	closer := func() error { return nil }
	out := console
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(console, f)
		closer = f.Close
	}

	log := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return log, closer, nil
}
