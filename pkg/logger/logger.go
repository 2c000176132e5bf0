package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init initializes the structured zerolog logger. Console output in
// development, JSON everywhere else.
func Init(env string) {
	var w io.Writer
	if env == "development" || env == "dev" || env == "local" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	} else {
		w = os.Stdout
	}

	zlog = zerolog.New(w).With().
		Timestamp().
		Str("service", "corplearn-backend").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// Get returns the global zerolog logger
func Get() *zerolog.Logger {
	return &zlog
}

// WithRequestID returns a logger with request_id field
func WithRequestID(requestID string) zerolog.Logger {
	return zlog.With().Str("request_id", requestID).Logger()
}
