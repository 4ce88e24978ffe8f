// Package logging builds the process logger: a text handler teed to stderr,
// an append-only log file and any extra sinks such as the dashboard tail.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	DefaultFile = "log.txt"
	TimeLayout  = "15:04:05"
)

type Options struct {
	Level string
	// File is opened with O_APPEND. Empty disables the file sink.
	File string
	// Stderr defaults to os.Stderr; tests swap it out.
	Stderr io.Writer
	Extra  []io.Writer
	// Location renders timestamps in the server zone. Nil means time.Local.
	Location *time.Location
}

// ParseLevel converts debug|info|warn|error to a slog.Level. Unknown values
// map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns the logger and a closer for the log file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	writers := []io.Writer{stderr}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %s: %w", opts.File, err)
		}
		writers = append(writers, f)
		closer = f
	}
	writers = append(writers, opts.Extra...)

	h := NewHandler(io.MultiWriter(writers...), ParseLevel(opts.Level), opts.Location)
	return slog.New(h), closer, nil
}

// NewHandler is a text handler whose time attribute reads HH:MM:SS in loc.
func NewHandler(w io.Writer, level slog.Level, loc *time.Location) slog.Handler {
	if loc == nil {
		loc = time.Local
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				return slog.String(slog.TimeKey, a.Value.Time().In(loc).Format(TimeLayout))
			}
			return a
		},
	})
}

// Discard is handy for tests and for commands that only print reports.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
