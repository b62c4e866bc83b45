package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger: console output while developing, JSON lines
// everywhere else.
func New(environment string, level ...string) zerolog.Logger {
	var out io.Writer = os.Stdout
	lvl := zerolog.InfoLevel
	if environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		lvl = zerolog.DebugLevel
	}
	if len(level) > 0 && level[0] != "" {
		if parsed, err := zerolog.ParseLevel(level[0]); err == nil {
			lvl = parsed
		}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "maintenance-portal").Logger()
}
