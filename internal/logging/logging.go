// Package logging builds the application's zerolog logger from config.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pitch-sim/internal/config"
)

// ParseLevel maps a config level name to a zerolog level. Unknown names fall back to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup creates the logger: colored console output on stdout and, when
// cfg.File is set, JSON lines appended to that file. The returned closer
// closes the file and is never nil.
func Setup(cfg config.LogConfig) (zerolog.Logger, io.Closer, error) {
	return setup(cfg, os.Stdout)
}

func setup(cfg config.LogConfig, stdout io.Writer) (zerolog.Logger, io.Closer, error) {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        stdout,
			TimeFormat: time.RFC3339,
		})
	}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("opening log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}
	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().Timestamp().Logger()

	logger.Debug().Str("loglevel", logger.GetLevel().String()).Msg("logging set up")
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
