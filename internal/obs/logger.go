// Package obs holds the logging and metrics seams the server emits
// into. Both default to no-ops so the protocol core never depends on
// an observability backend being configured.
package obs

import (
	"log"
	"os"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger receives leveled, formatted log lines.
type Logger interface {
	Logf(level Level, format string, args ...interface{})
}

// NopLogger discards all logs.
type NopLogger struct{}

func (NopLogger) Logf(level Level, format string, args ...interface{}) {}

// StdLogger adapts the standard library logger, dropping lines below Min.
type StdLogger struct {
	L   *log.Logger
	Min Level
}

// NewStdLogger returns a StdLogger writing to stderr with the given
// prefix and minimum level.
func NewStdLogger(prefix string, min Level) StdLogger {
	return StdLogger{L: log.New(os.Stderr, prefix, log.LstdFlags), Min: min}
}

func (s StdLogger) Logf(level Level, format string, args ...interface{}) {
	if s.L == nil || level < s.Min {
		return
	}
	s.L.Printf("[%s] "+format, append([]interface{}{level.String()}, args...)...)
}
