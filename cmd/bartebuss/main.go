package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bartebuss/pkg/plugin"
	"github.com/urfave/cli/v2"
)

func main() {
	// stdout belongs to the status bar
	if os.Getenv("BARTEBUSS_LOG_FORMAT") == "JSON" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if os.Getenv("BARTEBUSS_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:           "bartebuss",
		Usage:          "Bus departures for the menu bar, picked by the wireless network you are on",
		DefaultCommand: "run",

		Commands: plugin.RegisterCLI(),
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
