// Package logging builds the process logger.
package logging

import (
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// New builds the process logger. Human output uses zerolog's console writer;
// otherwise JSON lines are written.
func New(w io.Writer, level string, human bool) zerolog.Logger {
	out := w
	if human {
		out = zerolog.ConsoleWriter{Out: w}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	// Distinguishes log lines from different runs.
	logger = logger.With().Str("boot_id", uuid.NewString()[:4]).Logger()
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		logger.Error().Err(err).Str("level", level).Msg("failed to parse log level")
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}
