// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability builds the zerolog loggers used by every command.
// Logs go to stderr so reports written to stdout stay machine readable.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/pdiddy/secpapers/pkg/types"
)

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatAuto    = "auto"
)

// DefaultLogConfig returns info-level logging with automatic format selection.
func DefaultLogConfig() types.LogConfig {
	return types.LogConfig{Level: "info", Format: FormatAuto}
}

// NewLogger creates a logger writing to out. With FormatAuto the console
// writer is used when out is a terminal and JSON otherwise.
func NewLogger(cfg types.LogConfig, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	tty := isTerminal(out)
	format := strings.ToLower(cfg.Format)
	if format == "" || format == FormatAuto {
		format = FormatJSON
		if tty {
			format = FormatConsole
		}
	}
	if format == FormatConsole || format == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: !tty}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel converts a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// WithRun tags a logger with the command name and a fresh run id.
func WithRun(logger zerolog.Logger, command string) (zerolog.Logger, string) {
	runID := uuid.NewString()
	return logger.With().
		Str("command", command).
		Str("run_id", runID).
		Logger(), runID
}

// WithPaper adds the identifying fields of a paper to a logger.
func WithPaper(logger zerolog.Logger, p types.Paper) zerolog.Logger {
	return logger.With().
		Str("title", p.Title).
		Str("venue", string(p.Venue)).
		Int("year", p.Year).
		Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
