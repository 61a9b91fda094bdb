// Package logger provides structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the global logger instance
var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init replaces the global logger, writing JSON (or console output when
// pretty) to stdout at the given level
func Init(level string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLogLevel(level))
	Log = New(os.Stdout, pretty)
}

// New builds a logger writing to w
func New(w io.Writer, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Str("service", "playout").
		Logger()
}

// ForBuild returns a child logger carrying the correlation fields of one build pass
func ForBuild(playoutID uint, buildID string) zerolog.Logger {
	return Log.With().
		Uint("playout_id", playoutID).
		Str("build_id", buildID).
		Logger()
}

// parseLogLevel accepts zerolog level names and falls back to info
func parseLogLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
