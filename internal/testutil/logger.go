// Package testutil provides shared helpers for the test suites.
package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// NewTestLogger returns a debug-level logger routed through t.Log, so
// analyzer and probe logging shows up attached to the failing test and is
// silent otherwise.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(&testWriter{t: t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}
