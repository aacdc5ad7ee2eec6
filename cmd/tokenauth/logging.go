package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// initLogging configures the global logger from the log.* keys.
func initLogging(v *viper.Viper, out io.Writer) error {
	level, err := zerolog.ParseLevel(v.GetString(LogLevelKey))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", v.GetString(LogLevelKey), err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if out == nil {
		out = os.Stderr
	}
	switch format := v.GetString(LogFormatKey); format {
	case "json":
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	case "console", "":
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    v.GetBool(LogNoColorKey),
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}
	return nil
}
