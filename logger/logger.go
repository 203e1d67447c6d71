package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog   *zerolog.Logger
	filter *SensitiveDataFilter
}

// Ensure ZeroLogger implements the interface
var _ Logger = (*ZeroLogger)(nil)

// New creates a new ZeroLogger writing to stderr with the specified log level.
// If pretty is true, output is formatted for human readability. An
// unparseable level falls back to info.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithOutput(level, pretty, os.Stderr)
}

// NewWithOutput creates a ZeroLogger writing to the given writer. Tests use
// this to capture output.
func NewWithOutput(level string, pretty bool, out io.Writer) *ZeroLogger {
	var l zerolog.Logger

	if pretty {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(out).With().Timestamp().Logger()
	}

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{
		zlog:   &l,
		filter: NewSensitiveDataFilter(DefaultFilterConfig()),
	}
}

// Debug creates a debug-level log event
func (z *ZeroLogger) Debug() LogEvent {
	return &LogEventAdapter{event: z.zlog.Debug(), filter: z.filter}
}

// Info creates an info-level log event
func (z *ZeroLogger) Info() LogEvent {
	return &LogEventAdapter{event: z.zlog.Info(), filter: z.filter}
}

// Warn creates a warn-level log event
func (z *ZeroLogger) Warn() LogEvent {
	return &LogEventAdapter{event: z.zlog.Warn(), filter: z.filter}
}

// Error creates an error-level log event
func (z *ZeroLogger) Error() LogEvent {
	return &LogEventAdapter{event: z.zlog.Error(), filter: z.filter}
}

// WithFields returns a logger with the given fields attached to every event.
// Field values pass through the sensitive-data filter.
func (z *ZeroLogger) WithFields(fields map[string]any) Logger {
	ctx := z.zlog.With()
	for k, v := range fields {
		if s, ok := v.(string); ok {
			ctx = ctx.Str(k, z.filter.FilterString(k, s))
			continue
		}
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &ZeroLogger{zlog: &l, filter: z.filter}
}
