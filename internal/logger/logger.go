// Package logger provides the zerolog loggers used by the SDK and the CLI.
package logger

import (
	"io"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

// New returns a JSON zerolog.Logger writing to stdout and tagged with component.
// Call sites should use .Stack() on error events to include stacks.
func New(component string) zerolog.Logger {
	return NewWithWriter(os.Stdout, component)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(w io.Writer, component string) zerolog.Logger {
	installErrorMarshalers()
	return zerolog.New(w).With().
		Str("component", component).
		Timestamp().
		Logger()
}

// NewConsole returns a human-readable logger for interactive use (the CLI).
func NewConsole(w io.Writer, component string) zerolog.Logger {
	installErrorMarshalers()
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}).With().Str("component", component).Timestamp().Logger()
}

// ParseLevel maps a configured level name onto a zerolog level, falling back to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func installErrorMarshalers() {
	// Render pkg/errors stacks, attaching one to plain errors when .Stack() is used.
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
		if _, ok := err.(stackTracer); ok {
			return err
		}
		return pkgerrors.WithStack(err)
	}
}
