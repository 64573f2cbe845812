// Package logger provides a global logger for the application
package logger

import (
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	debug = flag.Bool("debug", false, "sets log level to debug")
	trace = flag.Bool("trace", false, "sets log level to trace")
	info  = flag.Bool("info", false, "sets log level to info (default)")
)

// Level picks the global log level for an environment. dev and test log
// everything, anything else logs info and above. The flags override the
// environment in the order debug, trace, info.
func Level(environment string, debug, trace, info bool) zerolog.Level {
	switch {
	case debug:
		return zerolog.DebugLevel
	case trace:
		return zerolog.TraceLevel
	case info:
		return zerolog.InfoLevel
	}

	switch strings.ToLower(environment) {
	case "dev", "test":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetEnvironment applies the level for environment to the global logger. The
// command line flags still take precedence.
func SetEnvironment(environment string) zerolog.Level {
	level := Level(environment, *debug, *trace, *info)
	zerolog.SetGlobalLevel(level)
	return level
}

func initLogger() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, using process environment")
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

	if !flag.Parsed() {
		flag.Parse()
	}

	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if environment == "" {
		environment = "prod"
	}

	logLevel := SetEnvironment(environment)

	log.Info().
		Str("environment", environment).
		Str("level", logLevel.String()).
		Msg("logger initialised")
}

// Init initializes the logger with the configuration from the environment
// and command line flags. Flags registered by the caller before Init are
// parsed together with the logger's own.
//
//	logger.Init() <- inside whichever main() function in your entrypoint
//
// Then, `go run ./cmd/yuma -snapshot epoch.json --debug`
func Init() {
	initLogger()
}
