package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/ideaboard/internal/buildinfo"
	"github.com/dmitrijs2005/ideaboard/internal/client/cli"
	"github.com/dmitrijs2005/ideaboard/internal/client/config"
	"github.com/dmitrijs2005/ideaboard/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig(os.Args[1:])
	logger := logging.NewTextLogger(os.Stderr, cfg.Debug)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
