// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"taskdeck/internal/config"
)

// New returns a logger for cfg and a closer for the log file (a no-op when
// logging to w). A "console" format uses zerolog's human-readable writer.
func New(cfg config.LogConfig, w io.Writer) (zerolog.Logger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	closer := func() error { return nil }
	out := w
	if path := strings.TrimSpace(cfg.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return zerolog.Nop(), nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		out = f
		closer = f.Close
	}

	if strings.EqualFold(strings.TrimSpace(cfg.Format), "console") {
		cw := zerolog.NewConsoleWriter()
		cw.TimeFormat = time.DateTime
		cw.Out = out
		cw.NoColor = cfg.File != ""
		out = cw
	}

	log := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
	return log, closer, nil
}

func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}
