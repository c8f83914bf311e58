// Package logging configures the zerolog logger the Runner, drivers, and
// store use for per-leaf and per-run events.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. verbose lowers the minimum level to debug;
// otherwise info and above are emitted. Output always goes through
// zerolog's ConsoleWriter, so it is human-readable (not JSON) whatever w
// is.
func New(verbose bool, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Default builds the root logger writing to stderr.
func Default(verbose bool) zerolog.Logger {
	return New(verbose, os.Stderr)
}
