package core

import (
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.Default())
}

// SetLogger replaces the logger used by every package of the renderer.
// Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger.Store(l)
}

// Logger returns the current renderer logger.
func Logger() *slog.Logger {
	return logger.Load()
}
