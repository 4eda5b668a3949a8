package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transitrecon/pkg/linecatalog"
	"github.com/travigo/transitrecon/pkg/reconcile"
	"github.com/urfave/cli/v2"
)

func main() {
	if os.Getenv("TRANSITRECON_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TRANSITRECON_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:        "transitrecon",
		Description: "Reconcile simulator bus routes and stops with map road geometries",

		Commands: []*cli.Command{
			reconcile.RegisterCLI(),
			linecatalog.RegisterCLI(),
		},
	}

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
