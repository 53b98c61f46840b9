// Package logging provides the component loggers used throughout fsdump.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	root zerolog.Logger
	once sync.Once
)

// Returns the process-wide logger, creating it on first use.
// The initial level is read from the LOG_LEVEL environment variable.
func GetLogger() *zerolog.Logger {
	once.Do(func() {
		root = New(os.Stderr)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if level := os.Getenv("LOG_LEVEL"); level != "" {
			SetLevel(level)
		}
	})
	return &root
}

// Creates a console logger writing to the specified writer
func New(w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger()
}

// Returns a child logger tagged with the specified component name
func Component(name string) zerolog.Logger {
	return GetLogger().With().Str("component", name).Logger()
}

// Sets the global level by name (trace, debug, info, warn, error).
// Unknown names leave the level unchanged and return false.
func SetLevel(name string) bool {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return false
	}
	zerolog.SetGlobalLevel(level)
	return true
}
