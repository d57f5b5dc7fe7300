// ABOUTME: Structured logging setup
// ABOUTME: Configures the global zerolog logger for file or console output
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// InitLogger replaces the global logger. A nil writer logs to stdout.
// Pretty output is meant for terminals; log files get JSON.
func InitLogger(level string, pretty bool, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}

	zerolog.SetGlobalLevel(ParseLevel(level))

	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    w != os.Stdout,
		}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(w).With().Timestamp().Logger()
	}

	log.Logger = logger
	return logger
}

// WithCorrelationID returns a logger tagged with id, generating one when empty
func WithCorrelationID(id string) zerolog.Logger {
	if id == "" {
		id = NewCorrelationID()
	}
	return log.Logger.With().Str("correlation_id", id).Logger()
}

// NewCorrelationID generates a new correlation ID
func NewCorrelationID() string {
	return uuid.New().String()
}
