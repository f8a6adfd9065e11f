// Package logging builds the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// TimeFormat is the timestamp layout of the text handler.
const TimeFormat = "2006-01-02 15:04:05.000"

// Options configures New.
type Options struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string

	// Format is "text" or "json". Empty means text.
	Format string

	// Color enables ANSI colours in text output.
	Color bool
}

// Stderr returns a writer for os.Stderr that renders ANSI colours on every
// platform, and whether stderr is a terminal.
func Stderr() (io.Writer, bool) {
	fd := os.Stderr.Fd()
	return colorable.NewColorable(os.Stderr), isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// New creates a logger writing to w. The returned LevelVar changes the level
// at runtime.
func New(w io.Writer, opts Options) (*slog.Logger, *slog.LevelVar, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	lvl := &slog.LevelVar{}
	lvl.Set(level)

	var h slog.Handler
	switch opts.Format {
	case "", "text":
		h = tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			NoColor:    !opts.Color,
			TimeFormat: TimeFormat,
		})
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	return slog.New(h), lvl, nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
