package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger from LOG_LEVEL and LOG_FORMAT.
// Console output is used outside structured deployments.
func Init(environment string) {
	level, err := zerolog.ParseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	format := strings.ToLower(getenv("LOG_FORMAT", ""))
	if format == "" && environment == "local" {
		format = "console"
	}
	base := zerolog.New(os.Stderr)
	if format == "console" || format == "pretty" {
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = base.With().Timestamp().Str("service", "reception-agent").Logger()
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
