package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewTeesToAllSinks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("earlier\n"), 0o644))

	var stderr, extra bytes.Buffer
	log, closer, err := New(Options{
		Level:  "info",
		File:   path,
		Stderr: &stderr,
		Extra:  []io.Writer{&extra},
	})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("bot started", "symbol", "XAUUSD")
	require.NoError(t, closer.Close())

	for _, out := range []string{stderr.String(), extra.String()} {
		assert.Contains(t, out, `msg="bot started" symbol=XAUUSD`)
		assert.NotContains(t, out, "hidden")
	}

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Regexp(t, `^earlier\n`, string(b))
	assert.Contains(t, string(b), "bot started")
}

func TestHandlerTimeFormat(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	var buf bytes.Buffer
	h := NewHandler(&buf, slog.LevelInfo, loc)

	r := slog.NewRecord(time.Date(2025, 3, 3, 6, 4, 5, 0, time.UTC), slog.LevelInfo, "tick", 0)
	require.NoError(t, h.Handle(context.Background(), r))

	assert.True(t, regexp.MustCompile(`^time=09:04:05 level=INFO msg=tick`).MatchString(buf.String()), buf.String())
}

func TestNewBadFile(t *testing.T) {
	_, _, err := New(Options{File: filepath.Join(t.TempDir(), "missing", "log.txt")})
	assert.Error(t, err)
}
