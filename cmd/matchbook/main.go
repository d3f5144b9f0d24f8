package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"matchbook/internal/cli"
	"matchbook/internal/engine"
	"matchbook/internal/gateway"
)

func main() {
	verbose := flag.Bool("verbose", false, "Log gateway lifecycle events")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	// Wire the matching engine behind its serializing gateway.
	gw := gateway.New(engine.New())
	defer func() {
		if err := gw.Stop(); err != nil {
			log.Error().Err(err).Msg("gateway exited with error")
		}
	}()

	fmt.Println("WELCOME TO TRADE ORDER MATCHER")
	fmt.Println()

	loop := cli.NewLoop(gw, os.Stdout)
	if err := loop.Run(ctx, os.Stdin); err != nil {
		log.Error().Err(err).Msg("command loop exited")
	}
}
