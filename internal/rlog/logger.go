// Package rlog provides the package-level structured logger used to
// narrate attempt-driver decisions (admission, backoff, terminal
// outcome) without making logging part of any component's return value.
//
// Shaped after AgenticGoKit's internal/logging package: a single
// zerolog.Logger behind a settable level, safe for concurrent use.
package rlog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).
		With().Timestamp().Logger().
		Level(zerolog.WarnLevel)
)

// SetLevel adjusts the minimum level emitted. Defaults to WarnLevel so a
// library consumer sees nothing unless it opts in to Debug/Info while
// diagnosing retry behavior.
func SetLevel(level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = logger.Level(level)
}

// Logger returns the current package-level logger.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}
