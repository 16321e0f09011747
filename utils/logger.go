package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides leveled, printf-style logging throughout the application.
// It is a thin wrapper over a zerolog.Logger so structured callers (the
// HTTP middleware) can reach the underlying logger via Z.
type Logger struct {
	z zerolog.Logger
}

// NewLogger creates a new Logger writing human-readable lines to stderr.
func NewLogger() *Logger {
	return NewLoggerWithWriter(os.Stderr, "info")
}

// NewLoggerWithWriter creates a Logger at the given level writing to w.
// Unknown levels fall back to info.
func NewLoggerWithWriter(w io.Writer, level string) *Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime, NoColor: w != os.Stderr}
	z := zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
	return &Logger{z: z}
}

// NewNopLogger discards everything. Handy in tests.
func NewNopLogger() *Logger {
	return &Logger{z: zerolog.Nop()}
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	}
	return zerolog.InfoLevel
}

// Z exposes the underlying structured logger.
func (l *Logger) Z() *zerolog.Logger { return &l.z }

func (l *Logger) Info(format string, args ...any) {
	l.z.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.z.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.z.Error().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.z.Debug().Msgf(format, args...)
}
